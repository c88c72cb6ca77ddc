package hci

import (
	"fmt"

	"github.com/XC-/attsnoop/att"
)

// RawPacket is one capture record: its 1-based position in the capture and
// its payload, starting with the HCI event code or ACL handle field.
type RawPacket struct {
	Seq  int
	Data []byte
}

// Packet is a successfully classified RawPacket.
type Packet struct {
	Seq  int
	Kind Kind
}

// Kind is either a MetaEvent or an AttOperation.
type Kind interface {
	isKind()
}

// MetaEvent is a decoded LE Meta event.
type MetaEvent struct {
	Payload EventPayload
}

// AttOperation is an attribute protocol PDU reassembled from ACL data.
type AttOperation struct {
	PDU att.PDU
}

func (MetaEvent) isKind()    {}
func (AttOperation) isKind() {}

// EventPayload is one of AdvertisingReport, EnhancedConnectionComplete,
// UnimportantSubEvent or UnknownSubEvent.
type EventPayload interface {
	isEventPayload()
}

// NameKind tells a shortened local name from a complete one.
type NameKind int

const (
	Shortened NameKind = iota + 1
	Complete
)

func (k NameKind) String() string {
	switch k {
	case Shortened:
		return "shortened"
	case Complete:
		return "complete"
	}
	return fmt.Sprintf("NameKind(%d)", int(k))
}

// LocalName is the advertised device name.
type LocalName struct {
	Kind NameKind
	Text string
}

// AdvertisingReport is an LE Advertising Report carrying a device name.
type AdvertisingReport struct {
	Address BDAddr
	Name    *LocalName
}

// EnhancedConnectionComplete is an LE Enhanced Connection Complete event.
type EnhancedConnectionComplete struct {
	Address          BDAddr
	ConnectionHandle uint32
}

// UnimportantSubEvent is a recognized sub-event without useful content.
// The classifier consumes it and never emits it.
type UnimportantSubEvent struct {
	Code uint8
}

// UnknownSubEvent is a sub-event code outside the known set.
type UnknownSubEvent struct {
	Code uint8
}

func (AdvertisingReport) isEventPayload()          {}
func (EnhancedConnectionComplete) isEventPayload() {}
func (UnimportantSubEvent) isEventPayload()        {}
func (UnknownSubEvent) isEventPayload()            {}

// BDAddr is a device address in wire (little-endian) order.
type BDAddr [6]byte

// String formats a as the usual colon separated, most significant byte
// first address.
func (a BDAddr) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[5], a[4], a[3], a[2], a[1], a[0])
}
