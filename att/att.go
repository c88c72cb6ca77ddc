// Package att decodes Bluetooth Attribute Protocol PDUs carried over the
// L2CAP fixed ATT channel.
package att

// CID is the L2CAP channel identifier of the attribute protocol.
const CID = 0x0004

// methodMask strips the command and authentication-signature flags from an
// opcode, leaving the method.
const methodMask = 0x3F

const (
	opError           = 0x01
	opMtuReq          = 0x02
	opMtuResp         = 0x03
	opFindInfoReq     = 0x04
	opFindInfoResp    = 0x05
	opFindByTypeReq   = 0x06
	opFindByTypeResp  = 0x07
	opReadByTypeReq   = 0x08
	opReadByTypeResp  = 0x09
	opReadReq         = 0x0a
	opReadResp        = 0x0b
	opReadBlobReq     = 0x0c
	opReadBlobResp    = 0x0d
	opReadMultiReq    = 0x0e
	opReadMultiResp   = 0x0f
	opReadByGroupReq  = 0x10
	opReadByGroupResp = 0x11
	opWriteReq        = 0x12
	opWriteResp       = 0x13
	opPrepWriteReq    = 0x16
	opPrepWriteResp   = 0x17
	opExecWriteReq    = 0x18
	opExecWriteResp   = 0x19
	opHandleNotify    = 0x1b
	opHandleInd       = 0x1d
	opHandleCnf       = 0x1e
)

var methodName = map[byte]string{
	opError:           "Error Response",
	opMtuReq:          "Exchange MTU Request",
	opMtuResp:         "Exchange MTU Response",
	opFindInfoReq:     "Find Information Request",
	opFindInfoResp:    "Find Information Response",
	opFindByTypeReq:   "Find By Type Value Request",
	opFindByTypeResp:  "Find By Type Value Response",
	opReadByTypeReq:   "Read By Type Request",
	opReadByTypeResp:  "Read By Type Response",
	opReadReq:         "Read Request",
	opReadResp:        "Read Response",
	opReadBlobReq:     "Read Blob Request",
	opReadBlobResp:    "Read Blob Response",
	opReadMultiReq:    "Read Multiple Request",
	opReadMultiResp:   "Read Multiple Response",
	opReadByGroupReq:  "Read By Group Type Request",
	opReadByGroupResp: "Read By Group Type Response",
	opWriteReq:        "Write Request",
	opWriteResp:       "Write Response",
	opPrepWriteReq:    "Prepare Write Request",
	opPrepWriteResp:   "Prepare Write Response",
	opExecWriteReq:    "Execute Write Request",
	opExecWriteResp:   "Execute Write Response",
	opHandleNotify:    "Handle Value Notification",
	opHandleInd:       "Handle Value Indication",
	opHandleCnf:       "Handle Value Confirmation",
}

// unmodeled holds the methods that are recognized but carry nothing the
// analyzer needs. They are dropped without a diagnostic.
var unmodeled = map[byte]bool{
	opError:          true,
	opMtuReq:         true,
	opMtuResp:        true,
	opFindInfoReq:    true,
	opFindInfoResp:   true,
	opReadByTypeReq:  true,
	opReadByGroupReq: true,
}

// Record strides the decoder understands.
const (
	strideByTypeName  = 18 // handle(2) props(1) value handle(2) + 13 bytes of device name, no UUID
	strideByType128   = 21 // handle(2) props(1) value handle(2) uuid(16)
	strideByGroup16   = 6  // handle(2) end(2) uuid(2)
	strideByGroup128  = 20 // handle(2) end(2) uuid(16)
	readRequestLength = 2
)
