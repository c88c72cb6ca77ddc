// Package diag carries the recoverable anomalies met while decoding and
// correlating a capture. Diagnostics never stop processing.
package diag

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Kind classifies a Diagnostic.
type Kind int

const (
	// CorrelationAnomaly is a response without a pending request, or a
	// request still pending at the end of the capture.
	CorrelationAnomaly Kind = iota + 1
	// UnknownCode is a sub-event, advertising event type or opcode outside
	// the known set.
	UnknownCode
)

var kindName = map[Kind]string{
	CorrelationAnomaly: "correlation anomaly",
	UnknownCode:        "unknown code",
}

func (k Kind) String() string {
	if s, ok := kindName[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// A Diagnostic is one anomaly, tagged with the capture record it came from.
type Diagnostic struct {
	Seq     int
	Kind    Kind
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("#%d %s: %s", d.Seq, d.Kind, d.Message)
}

// A Sink receives diagnostics.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc is an adapter to allow the use of ordinary functions as Sinks.
type SinkFunc func(d Diagnostic)

// Report calls f(d).
func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Reportf formats a message and reports it to s. A nil s drops it.
func Reportf(s Sink, seq int, k Kind, format string, args ...interface{}) {
	if s == nil {
		return
	}
	s.Report(Diagnostic{Seq: seq, Kind: k, Message: fmt.Sprintf(format, args...)})
}

// Log returns a Sink writing each diagnostic to l at warning level.
func Log(l logrus.FieldLogger) Sink {
	return SinkFunc(func(d Diagnostic) {
		l.WithFields(logrus.Fields{
			"seq":  d.Seq,
			"kind": d.Kind.String(),
		}).Warn(d.Message)
	})
}

// Collector keeps every diagnostic it receives, in order.
type Collector struct {
	Diagnostics []Diagnostic
}

// Report appends d to c.Diagnostics.
func (c *Collector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// Tee returns a Sink reporting to each of ss in turn. Nil sinks are skipped.
func Tee(ss ...Sink) Sink {
	return SinkFunc(func(d Diagnostic) {
		for _, s := range ss {
			if s != nil {
				s.Report(d)
			}
		}
	})
}
