package hci

import (
	"fmt"
	"sort"

	"github.com/XC-/attsnoop/wire"
)

// aclHeader holds the flags carried in the MSB of an ACL handle field.
type aclHeader struct {
	handle uint16
	pb     uint8 // packet boundary flag
	bc     uint8 // broadcast flag
}

func parseACLHeader(b0, b1 byte) aclHeader {
	return aclHeader{
		handle: (uint16(b0) | uint16(b1)<<8) & handleMask,
		pb:     (b1 >> 4) & 0x3,
		bc:     (b1 >> 6) & 0x3,
	}
}

// valid reports whether the flags describe point-to-point data with a
// packet boundary value usable on LE-U.
func (h aclHeader) valid() bool {
	return h.bc == 0 && h.pb != pbComplete
}

func (h aclHeader) String() string {
	pb := map[uint8]string{
		pbFirstNonFlushable: "first non-flushable",
		pbContinuing:        "continuing",
		pbFirstFlushable:    "first flushable",
	}[h.pb]
	return fmt.Sprintf("ACL Data: handle 0x%03X pb %q", h.handle, pb)
}

// fragment is a partially received L2CAP PDU.
type fragment struct {
	total int    // declared L2CAP payload length
	cid   uint16 // L2CAP channel
	data  []byte // len(data) < total
}

// A Reassembler rebuilds L2CAP payloads split over several ACL data
// packets. It tracks at most one PDU in flight per connection handle.
type Reassembler struct {
	frags map[uint16]*fragment

	trace func(format string, v ...interface{})
}

// NewReassembler returns an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{
		frags: map[uint16]*fragment{},
		trace: func(string, ...interface{}) {},
	}
}

// Push consumes one ACL data packet for handle. c is positioned at the
// data total length field, right after the handle field.
//
// done reports whether a complete payload, received on channel cid, is
// returned. An error is always structural: a packet shorter than it claims,
// or a continuing fragment overflowing the length declared by the first.
func (r *Reassembler) Push(c *wire.Cursor, handle uint16, seq int) (payload []byte, cid uint16, done bool, err error) {
	n := int(c.Uint16LE())
	if err := c.Err(); err != nil {
		return nil, 0, false, err
	}

	if f, found := r.frags[handle]; found {
		b := c.Next(n)
		if err := c.Err(); err != nil {
			return nil, 0, false, err
		}
		if len(f.data)+len(b) > f.total {
			return nil, 0, false, wire.Violationf("continuing fragment on handle 0x%03X overflows: %d bytes of %d",
				handle, len(f.data)+len(b), f.total)
		}
		f.data = append(f.data, b...)
		if len(f.data) < f.total {
			r.trace("#%d l2cap: handle 0x%03X has %d of %d bytes", seq, handle, len(f.data), f.total)
			return nil, 0, false, nil
		}
		delete(r.frags, handle)
		r.trace("#%d l2cap: handle 0x%03X reassembled %d bytes", seq, handle, f.total)
		return f.data, f.cid, true, nil
	}

	total := int(c.Uint16LE())
	cid = c.Uint16LE()
	if err := c.Err(); err != nil {
		return nil, 0, false, err
	}
	if n < 4 {
		return nil, 0, false, wire.Violationf("acl data length %d shorter than the l2cap header", n)
	}
	b := c.Next(n - 4)
	if err := c.Err(); err != nil {
		return nil, 0, false, err
	}
	if len(b) < total {
		r.frags[handle] = &fragment{total: total, cid: cid, data: b}
		r.trace("#%d l2cap: handle 0x%03X starts a %d byte pdu on cid 0x%04X", seq, handle, total, cid)
		return nil, 0, false, nil
	}
	return b, cid, true, nil
}

// Pending returns the connection handles with an incomplete PDU, sorted.
func (r *Reassembler) Pending() []uint16 {
	hh := make([]uint16, 0, len(r.frags))
	for h := range r.frags {
		hh = append(hh, h)
	}
	sort.Slice(hh, func(i, j int) bool { return hh[i] < hh[j] })
	return hh
}
