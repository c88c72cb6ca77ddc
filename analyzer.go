package attsnoop

import (
	"github.com/XC-/attsnoop/att"
	"github.com/XC-/attsnoop/diag"
	"github.com/XC-/attsnoop/hci"
)

type pendingRead struct {
	seq    int
	handle uint16
}

type pendingWrite struct {
	seq     int
	handle  uint16
	request []byte
}

// An Analyzer pairs ATT requests with their responses.
//
// It keeps a single pending read and a single pending write for the whole
// capture, not one per connection: exchanges interleaved across connections
// may be paired wrongly.
type Analyzer struct {
	sink  diag.Sink
	names map[uint16]string

	read  *pendingRead
	write *pendingWrite
}

// NewAnalyzer returns an Analyzer reporting correlation anomalies to sink.
// A nil sink discards them.
func NewAnalyzer(sink diag.Sink) *Analyzer {
	return &Analyzer{sink: sink, names: map[uint16]string{}}
}

// Analyze makes two passes over pkts, which must be in capture order. The
// first collects the attribute UUIDs announced by discovery responses, the
// second pairs requests with responses.
func (a *Analyzer) Analyze(pkts []hci.Packet) []Transaction {
	a.names = map[uint16]string{}
	a.read, a.write = nil, nil

	for _, p := range pkts {
		a.learn(p)
	}

	var txs []Transaction
	for _, p := range pkts {
		if tx, ok := a.correlate(p); ok {
			txs = append(txs, tx)
		}
	}

	if a.read != nil {
		diag.Reportf(a.sink, a.read.seq, diag.CorrelationAnomaly, "unhandled read request")
	}
	if a.write != nil {
		diag.Reportf(a.sink, a.write.seq, diag.CorrelationAnomaly, "unhandled write request")
	}
	return txs
}

func (a *Analyzer) learn(p hci.Packet) {
	op, ok := p.Kind.(hci.AttOperation)
	if !ok {
		return
	}
	switch pdu := op.PDU.(type) {
	case att.ReadByGroupTypeResponse:
		for _, r := range pdu.Records {
			a.names[r.Handle] = r.UUID.String()
		}
	case att.ReadByTypeResponse:
		for _, r := range pdu.Records {
			a.names[r.Handle] = r.UUID.String()
		}
	}
}

func (a *Analyzer) correlate(p hci.Packet) (Transaction, bool) {
	op, ok := p.Kind.(hci.AttOperation)
	if !ok {
		return Transaction{}, false
	}
	switch pdu := op.PDU.(type) {
	case att.ReadRequest:
		a.read = &pendingRead{seq: p.Seq, handle: pdu.Handle}
	case att.ReadResponse:
		if a.read == nil {
			diag.Reportf(a.sink, p.Seq, diag.CorrelationAnomaly, "dangling read response")
			return Transaction{}, false
		}
		tx := Transaction{Seq: p.Seq, Op: Read{Name: a.name(a.read.handle), Response: pdu.Payload}}
		a.read = nil
		return tx, true
	case att.WriteRequest:
		a.write = &pendingWrite{seq: p.Seq, handle: pdu.Handle, request: pdu.Payload}
	case att.WriteResponse:
		if a.write == nil {
			diag.Reportf(a.sink, p.Seq, diag.CorrelationAnomaly, "dangling write response")
			return Transaction{}, false
		}
		tx := Transaction{Seq: p.Seq, Op: Write{
			Name:     a.name(a.write.handle),
			Request:  a.write.request,
			Response: pdu.Payload,
		}}
		a.write = nil
		return tx, true
	}
	return Transaction{}, false
}

func (a *Analyzer) name(h uint16) string {
	if s, ok := a.names[h]; ok {
		return s
	}
	return unknownName(h)
}

// Names returns a copy of the handle to UUID dictionary built by the last
// call to Analyze.
func (a *Analyzer) Names() map[uint16]string {
	m := make(map[uint16]string, len(a.names))
	for h, s := range a.names {
		m[h] = s
	}
	return m
}
