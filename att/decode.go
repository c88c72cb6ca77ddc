package att

import (
	"github.com/XC-/attsnoop/diag"
	"github.com/XC-/attsnoop/wire"
)

// Decode decodes a reassembled L2CAP payload received on channel cid.
//
// It reports ok == false for payloads that carry nothing of interest: a
// channel other than ATT, or a method that is recognized but not modeled.
// Unrecognized methods are reported to sink. A non-nil error always wraps
// wire.ErrStructural.
func Decode(payload []byte, cid uint16, seq int, sink diag.Sink) (pdu PDU, ok bool, err error) {
	if cid != CID {
		return nil, false, nil
	}
	c := wire.NewCursor(payload)
	op := c.Uint8()
	if err := c.Err(); err != nil {
		return nil, false, err
	}

	method := op & methodMask
	switch method {
	case opReadByTypeResp:
		return decodeReadByType(c)
	case opReadByGroupResp:
		return decodeReadByGroupType(c)
	case opReadReq:
		if n := c.Len(); n != readRequestLength {
			return nil, false, wire.Violationf("read request with %d parameter bytes", n)
		}
		return ReadRequest{Handle: c.Uint16LE()}, true, c.Err()
	case opReadResp:
		return ReadResponse{Payload: c.Rest()}, true, c.Err()
	case opWriteReq:
		h := c.Uint16LE()
		if err := c.Err(); err != nil {
			return nil, false, err
		}
		return WriteRequest{Handle: h, Payload: c.Rest()}, true, c.Err()
	case opWriteResp:
		return WriteResponse{Payload: c.Rest()}, true, c.Err()
	}

	if !unmodeled[method] {
		diag.Reportf(sink, seq, diag.UnknownCode, "unknown opcode method 0x%02x", method)
	}
	return nil, false, nil
}

func decodeReadByType(c *wire.Cursor) (PDU, bool, error) {
	stride := int(c.Uint8())
	if err := c.Err(); err != nil {
		return nil, false, err
	}
	switch stride {
	case strideByTypeName:
		// Device name discovery; the records hold no UUID.
		return nil, false, nil
	case strideByType128:
	default:
		return nil, false, wire.Violationf("read by type response with record length %d", stride)
	}

	var rr []Record
	for c.Len() >= stride {
		rc := wire.NewCursor(c.Next(stride))
		r := Record{
			Handle:      rc.Uint16LE(),
			Properties:  rc.Uint8(),
			ValueHandle: rc.Uint16LE(),
		}
		u, err := ParseUUID(rc.Rest())
		if err != nil {
			return nil, false, err
		}
		r.UUID = u
		rr = append(rr, r)
	}
	return ReadByTypeResponse{Records: rr}, true, nil
}

func decodeReadByGroupType(c *wire.Cursor) (PDU, bool, error) {
	stride := int(c.Uint8())
	if err := c.Err(); err != nil {
		return nil, false, err
	}
	if stride != strideByGroup16 && stride != strideByGroup128 {
		return nil, false, wire.Violationf("read by group type response with record length %d", stride)
	}

	var rr []GroupRecord
	for c.Len() >= stride {
		rc := wire.NewCursor(c.Next(stride))
		r := GroupRecord{
			Handle:         rc.Uint16LE(),
			GroupEndHandle: rc.Uint16LE(),
		}
		u, err := ParseUUID(rc.Rest())
		if err != nil {
			return nil, false, err
		}
		r.UUID = u
		rr = append(rr, r)
	}
	return ReadByGroupTypeResponse{Records: rr}, true, nil
}

// MethodName returns the protocol name of an opcode's method, or "" if it
// is unknown.
func MethodName(op byte) string {
	return methodName[op&methodMask]
}
