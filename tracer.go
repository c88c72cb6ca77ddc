package attsnoop

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/XC-/attsnoop/diag"
	"github.com/XC-/attsnoop/hci"
)

// An Option configures a Tracer.
type Option func(*Tracer)

// WithLogger sets the logger for decode traces. Defaults to the logrus
// standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Tracer) { t.log = l }
}

// WithDiagnostics sets the sink receiving diagnostics. If unset they are
// logged at warning level.
func WithDiagnostics(s diag.Sink) Option {
	return func(t *Tracer) { t.sink = s }
}

// A Tracer runs the whole pipeline over a capture: classification,
// reassembly and ATT decoding, then analysis.
//
// Each call to Decode or Run starts from empty state, so a Tracer may be
// reused for several captures. It must not be used by several goroutines
// at once.
type Tracer struct {
	log  logrus.FieldLogger
	sink diag.Sink

	names map[uint16]string
}

// New returns a Tracer configured by opts.
func New(opts ...Option) *Tracer {
	t := &Tracer{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(t)
	}
	if t.sink == nil {
		t.sink = diag.Log(t.log)
	}
	return t
}

// Decode classifies raws in order. It stops at the first structural
// violation.
func (t *Tracer) Decode(raws []hci.RawPacket) ([]hci.Packet, error) {
	cl := hci.NewClassifier(hci.WithLogger(t.log), hci.WithDiagnostics(t.sink))
	var pkts []hci.Packet
	for _, raw := range raws {
		p, ok, err := cl.Classify(raw)
		if err != nil {
			return nil, errors.Wrap(err, "decode")
		}
		if ok {
			pkts = append(pkts, p)
		}
	}
	for _, h := range cl.Pending() {
		t.log.Debugf("capture ends inside a pdu on handle 0x%03X", h)
	}
	return pkts, nil
}

// Run decodes raws and returns the transactions found in them.
func (t *Tracer) Run(raws []hci.RawPacket) ([]Transaction, error) {
	pkts, err := t.Decode(raws)
	if err != nil {
		return nil, err
	}
	a := NewAnalyzer(t.sink)
	txs := a.Analyze(pkts)
	t.names = a.Names()
	t.log.Debugf("%d records, %d packets, %d transactions, %d named attributes",
		len(raws), len(pkts), len(txs), len(t.names))
	return txs, nil
}

// Names returns a copy of the attribute dictionary built by the last Run.
func (t *Tracer) Names() map[uint16]string {
	m := make(map[uint16]string, len(t.names))
	for h, s := range t.names {
		m[h] = s
	}
	return m
}

// Run is a shorthand for New(opts...).Run(raws).
func Run(raws []hci.RawPacket, opts ...Option) ([]Transaction, error) {
	return New(opts...).Run(raws)
}
