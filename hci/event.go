package hci

import (
	"strings"

	"github.com/XC-/attsnoop/diag"
	"github.com/XC-/attsnoop/wire"
)

// decodeLEMeta decodes the parameters of an LE Meta event. c is positioned
// right after the event code.
func (cl *Classifier) decodeLEMeta(c *wire.Cursor, seq int) (EventPayload, bool, error) {
	c.Uint8() // parameter total length
	code := leEventCode(c.Uint8())
	if err := c.Err(); err != nil {
		return nil, false, err
	}
	cl.trace("#%d > HCI Event: LE Meta, %s (0x%02X)", seq, code, uint8(code))

	switch code {
	case leAdvertisingReport:
		return cl.decodeAdvertisingReport(c, seq)
	case leEnhancedConnectionComplete:
		return decodeEnhancedConnectionComplete(c)
	case leConnectionUpdateComplete, leReadRemoteUsedFeaturesComplete, leRemoteConnectionParameterRequest:
		return UnimportantSubEvent{Code: uint8(code)}, true, nil
	}
	diag.Reportf(cl.sink, seq, diag.UnknownCode, "unknown LE meta sub event 0x%02x", uint8(code))
	return UnknownSubEvent{Code: uint8(code)}, true, nil
}

func (cl *Classifier) decodeAdvertisingReport(c *wire.Cursor, seq int) (EventPayload, bool, error) {
	c.Uint8() // num reports
	et := c.Uint8()
	c.Uint8() // address type
	var r AdvertisingReport
	copy(r.Address[:], c.Next(6))
	dlen := c.Uint8()
	if err := c.Err(); err != nil {
		return nil, false, err
	}
	if dlen == 0 {
		return nil, false, nil
	}

	class, known := advEventClass[et]
	if !known {
		diag.Reportf(cl.sink, seq, diag.UnknownCode, "unknown advertising event type 0x%02x", et)
	}
	if !class.supported {
		return nil, false, nil
	}
	if class.hasFlags {
		c.Skip(int(c.Uint8()))
	}

	nlen := int(c.Uint8())
	ntyp := c.Uint8()
	text := c.Next(nlen - 1) // the length covers the type byte
	if err := c.Err(); err != nil {
		return nil, false, err
	}

	var kind NameKind
	switch ntyp {
	case typeShortName:
		kind = Shortened
	case typeCompleteName:
		kind = Complete
	default:
		return nil, false, nil
	}
	r.Name = &LocalName{Kind: kind, Text: strings.ToValidUTF8(string(text), "\uFFFD")}
	return r, true, nil
}

func decodeEnhancedConnectionComplete(c *wire.Cursor) (EventPayload, bool, error) {
	c.Skip(5) // status, connection handle, role, peer address type
	var ep EnhancedConnectionComplete
	copy(ep.Address[:], c.Next(6))
	ep.ConnectionHandle = c.Uint32LE()
	if err := c.Err(); err != nil {
		return nil, false, err
	}
	return ep, true, nil
}
