package att

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/XC-/attsnoop/wire"
)

// A UUID is an attribute type, either a ShortUUID or a FullUUID. Both hold
// their bytes in wire (little-endian) order.
type UUID interface {
	// Len returns the length of the UUID in bytes, 2 or 16.
	Len() int
	// String returns the canonical lowercase text form.
	String() string
	isUUID()
}

// ShortUUID is a 16-bit Bluetooth SIG assigned UUID.
type ShortUUID [2]byte

// FullUUID is a 128-bit UUID.
type FullUUID [16]byte

func (ShortUUID) isUUID() {}
func (FullUUID) isUUID()  {}

func (ShortUUID) Len() int { return 2 }
func (FullUUID) Len() int  { return 16 }

// String renders u as four hex digits, e.g. "1800".
func (u ShortUUID) String() string {
	return fmt.Sprintf("%02x%02x", u[1], u[0])
}

// String renders u in the 8-4-4-4-12 layout with the wire bytes reversed.
func (u FullUUID) String() string {
	var b uuid.UUID
	copy(b[:], reverse(u[:]))
	return b.String()
}

// UUID16 converts a uint16 (such as 0x1800) to a ShortUUID.
func UUID16(i uint16) ShortUUID {
	return ShortUUID{byte(i), byte(i >> 8)}
}

// ParseUUID reads a UUID in wire order. b must be 2 or 16 bytes long.
func ParseUUID(b []byte) (UUID, error) {
	switch len(b) {
	case 2:
		var u ShortUUID
		copy(u[:], b)
		return u, nil
	case 16:
		var u FullUUID
		copy(u[:], b)
		return u, nil
	}
	return nil, wire.Violationf("UUIDs must have length 2 or 16, got %d", len(b))
}

// reverse returns a reversed copy of b.
func reverse(b []byte) []byte {
	l := len(b)
	r := make([]byte, l)
	for i := 0; i < l; i++ {
		r[i] = b[l-1-i]
	}
	return r
}
