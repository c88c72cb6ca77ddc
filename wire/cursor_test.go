package wire

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestCursorReads(t *testing.T) {
	c := NewCursor([]byte{
		0xAA,
		0x34, 0x12,
		0x78, 0x56, 0x34, 0x12,
		0x12, 0x34, 0x56, 0x78,
		0x01, 0x02, 0x03,
	})

	if got, want := c.Uint8(), uint8(0xAA); got != want {
		t.Errorf("Uint8: got 0x%02X want 0x%02X", got, want)
	}
	if got, want := c.Uint16LE(), uint16(0x1234); got != want {
		t.Errorf("Uint16LE: got 0x%04X want 0x%04X", got, want)
	}
	if got, want := c.Uint32LE(), uint32(0x12345678); got != want {
		t.Errorf("Uint32LE: got 0x%08X want 0x%08X", got, want)
	}
	if got, want := c.Uint32BE(), uint32(0x12345678); got != want {
		t.Errorf("Uint32BE: got 0x%08X want 0x%08X", got, want)
	}
	if got, want := c.Peek(2), []byte{0x01, 0x02}; !bytes.Equal(got, want) {
		t.Errorf("Peek(2): got %x want %x", got, want)
	}
	if got, want := c.Len(), 3; got != want {
		t.Errorf("Len after Peek: got %d want %d", got, want)
	}
	if got, want := c.Next(2), []byte{0x01, 0x02}; !bytes.Equal(got, want) {
		t.Errorf("Next(2): got %x want %x", got, want)
	}
	if got, want := c.Rest(), []byte{0x03}; !bytes.Equal(got, want) {
		t.Errorf("Rest: got %x want %x", got, want)
	}
	if c.Len() != 0 || c.Err() != nil {
		t.Errorf("drained cursor: Len %d Err %v", c.Len(), c.Err())
	}
	if got := c.Rest(); len(got) != 0 || c.Err() != nil {
		t.Errorf("Rest on empty cursor: got %x, err %v", got, c.Err())
	}
}

func TestCursorUnderflow(t *testing.T) {
	cases := []struct {
		name string
		read func(c *Cursor)
	}{
		{"Uint8", func(c *Cursor) { c.Uint8() }},
		{"Uint16LE", func(c *Cursor) { c.Uint16LE() }},
		{"Uint32LE", func(c *Cursor) { c.Uint32LE() }},
		{"Uint32BE", func(c *Cursor) { c.Uint32BE() }},
		{"Next", func(c *Cursor) { c.Next(5) }},
		{"NextNegative", func(c *Cursor) { c.Next(-1) }},
		{"Skip", func(c *Cursor) { c.Skip(9) }},
		{"Peek", func(c *Cursor) { c.Peek(2) }},
	}

	for _, tt := range cases {
		c := NewCursor([]byte{0x01})
		if tt.name != "Uint8" {
			c.Uint8()
		} else {
			c.Skip(1)
		}
		tt.read(c)
		if !errors.Is(c.Err(), ErrStructural) {
			t.Errorf("%s: got err %v want ErrStructural", tt.name, c.Err())
		}
	}
}

func TestCursorStickyError(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02, 0x03})
	c.Next(4)
	first := c.Err()
	if first == nil {
		t.Fatal("Next(4) on 3 bytes should fail")
	}
	if got := c.Uint8(); got != 0 {
		t.Errorf("Uint8 after failure: got %d want 0", got)
	}
	if c.Len() != 3 {
		t.Errorf("failed reads must not advance: Len %d want 3", c.Len())
	}
	if c.Err() != first {
		t.Errorf("error changed after failure: got %v want %v", c.Err(), first)
	}
}

func TestNextCopies(t *testing.T) {
	src := []byte{0x01, 0x02}
	got := NewCursor(src).Next(2)
	got[0] = 0xFF
	if src[0] != 0x01 {
		t.Errorf("Next aliases its input: src %x", src)
	}
}
