// Package wire provides the bounds-checked byte reader shared by the HCI and
// ATT decoders.
package wire

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// ErrStructural is the error wrapped by every structural violation: a buffer
// underflow, an unexpected record stride, a fragment overflowing its declared
// length or a malformed UUID. Decoding cannot continue past one.
var ErrStructural = errors.New("structural violation")

// Violationf returns an error wrapping ErrStructural.
func Violationf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrStructural, format, args...)
}

// A Cursor consumes a byte slice front to back.
//
// Reading past the end records a sticky error, returns zero values and
// leaves the position untouched; every later read fails the same way.
// Callers check Err before acting on a value they read.
type Cursor struct {
	b   []byte
	off int
	err error
}

// NewCursor returns a Cursor positioned at the first byte of b.
func NewCursor(b []byte) *Cursor {
	return &Cursor{b: b}
}

// Len returns the number of unread bytes.
func (c *Cursor) Len() int { return len(c.b) - c.off }

// Err returns the first underflow met by c, if any.
func (c *Cursor) Err() error { return c.err }

// take returns the next n bytes without copying and advances past them.
func (c *Cursor) take(n int) ([]byte, bool) {
	if c.err != nil {
		return nil, false
	}
	if n < 0 || n > c.Len() {
		c.err = Violationf("read of %d bytes at offset %d with %d remaining", n, c.off, c.Len())
		return nil, false
	}
	b := c.b[c.off : c.off+n]
	c.off += n
	return b, true
}

// Uint8 consumes one byte.
func (c *Cursor) Uint8() uint8 {
	b, ok := c.take(1)
	if !ok {
		return 0
	}
	return b[0]
}

// Uint16LE consumes a little-endian uint16.
func (c *Cursor) Uint16LE() uint16 {
	b, ok := c.take(2)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// Uint32LE consumes a little-endian uint32.
func (c *Cursor) Uint32LE() uint32 {
	b, ok := c.take(4)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Uint32BE consumes a big-endian uint32.
func (c *Cursor) Uint32BE() uint32 {
	b, ok := c.take(4)
	if !ok {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Next consumes n bytes and returns a copy of them.
func (c *Cursor) Next(n int) []byte {
	b, ok := c.take(n)
	if !ok {
		return nil
	}
	return append([]byte{}, b...)
}

// Skip consumes n bytes.
func (c *Cursor) Skip(n int) { c.take(n) }

// Rest consumes and returns a copy of everything left. It never fails
// unless an earlier read already did.
func (c *Cursor) Rest() []byte { return c.Next(c.Len()) }

// Peek returns the next n bytes without consuming them.
func (c *Cursor) Peek(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || n > c.Len() {
		c.err = Violationf("peek of %d bytes at offset %d with %d remaining", n, c.off, c.Len())
		return nil
	}
	return c.b[c.off : c.off+n]
}
