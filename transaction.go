package attsnoop

import (
	"fmt"
	"strings"
)

// A Transaction is an ATT request paired with its response. Seq is the
// capture record of the response.
type Transaction struct {
	Seq int
	Op  Operation
}

// Operation is either a Read or a Write.
type Operation interface {
	isOperation()
}

// Read is a completed Read Request / Read Response exchange.
type Read struct {
	Name     string
	Response []byte
}

// Write is a completed Write Request / Write Response exchange.
type Write struct {
	Name     string
	Request  []byte
	Response []byte
}

func (Read) isOperation()  {}
func (Write) isOperation() {}

// String renders t as one line of trace output. For a Write only the
// request value is shown.
func (t Transaction) String() string {
	switch op := t.Op.(type) {
	case Read:
		return fmt.Sprintf("#%d Read %s > %s", t.Seq, op.Name, Hex(op.Response))
	case Write:
		return fmt.Sprintf("#%d Write %s > %s", t.Seq, op.Name, Hex(op.Request))
	}
	return fmt.Sprintf("#%d %T", t.Seq, t.Op)
}

// Hex formats b as bracketed, space separated lowercase hex bytes.
func Hex(b []byte) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", c)
	}
	sb.WriteByte(']')
	return sb.String()
}

// unknownName is the name given to a handle absent from the dictionary.
func unknownName(h uint16) string {
	return fmt.Sprintf("(Unknown att(0x%04x))", h)
}
