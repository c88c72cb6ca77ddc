// Package hci classifies captured HCI traffic: LE Meta events are decoded,
// ACL data is reassembled per connection and handed to the ATT decoder,
// everything else is dropped.
package hci

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/XC-/attsnoop/att"
	"github.com/XC-/attsnoop/diag"
	"github.com/XC-/attsnoop/wire"
)

// An Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger receiving decode traces at debug level.
func WithLogger(l logrus.FieldLogger) Option {
	return func(cl *Classifier) { cl.log = l }
}

// WithDiagnostics sets the sink for unknown codes.
func WithDiagnostics(s diag.Sink) Option {
	return func(cl *Classifier) { cl.sink = s }
}

// A Classifier turns capture records into Packets. It owns the ACL
// reassembly state, so one Classifier serves exactly one capture.
type Classifier struct {
	acl  *Reassembler
	log  logrus.FieldLogger
	sink diag.Sink
}

// NewClassifier returns a Classifier with no reassembly in progress.
func NewClassifier(opts ...Option) *Classifier {
	cl := &Classifier{
		acl: NewReassembler(),
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(cl)
	}
	cl.acl.trace = cl.trace
	return cl
}

func (cl *Classifier) trace(format string, v ...interface{}) {
	cl.log.Debugf(format, v...)
}

// Classify decodes one record. ok is false when the record yields no packet:
// an ignored event, a fragment of a larger PDU, or a PDU of no interest.
// A non-nil error wraps wire.ErrStructural and ends the capture.
func (cl *Classifier) Classify(raw RawPacket) (p Packet, ok bool, err error) {
	k, ok, err := cl.classify(raw)
	if err != nil {
		return Packet{}, false, errors.Wrapf(err, "record #%d", raw.Seq)
	}
	if !ok {
		return Packet{}, false, nil
	}
	return Packet{Seq: raw.Seq, Kind: k}, true, nil
}

func (cl *Classifier) classify(raw RawPacket) (Kind, bool, error) {
	c := wire.NewCursor(raw.Data)
	b0 := c.Uint8()
	peek := c.Peek(1)
	if err := c.Err(); err != nil {
		return nil, false, err
	}
	b1 := peek[0]

	if ev := eventCode(b0); ignoredEvents[ev] {
		cl.trace("#%d > HCI Event: %s (0x%02X) ignored", raw.Seq, ev, b0)
		return nil, false, nil
	} else if ev == leMeta {
		ep, ok, err := cl.decodeLEMeta(c, raw.Seq)
		if err != nil || !ok {
			return nil, false, err
		}
		if _, unimportant := ep.(UnimportantSubEvent); unimportant {
			return nil, false, nil
		}
		return MetaEvent{Payload: ep}, true, nil
	}

	h := parseACLHeader(b0, b1)
	if !h.valid() {
		cl.trace("#%d unclassified record, first bytes %02X %02X", raw.Seq, b0, b1)
		return nil, false, nil
	}
	c.Skip(1)
	cl.trace("#%d > %s", raw.Seq, h)

	payload, cid, done, err := cl.acl.Push(c, h.handle, raw.Seq)
	if err != nil || !done {
		return nil, false, err
	}
	if cid == att.CID && len(payload) > 0 {
		cl.trace("#%d l2cap cid 0x%04X: %s", raw.Seq, cid, att.MethodName(payload[0]))
	}
	pdu, ok, err := att.Decode(payload, cid, raw.Seq, cl.sink)
	if err != nil || !ok {
		return nil, false, err
	}
	return AttOperation{PDU: pdu}, true, nil
}

// Pending returns the connection handles whose PDU is still incomplete.
func (cl *Classifier) Pending() []uint16 {
	return cl.acl.Pending()
}
