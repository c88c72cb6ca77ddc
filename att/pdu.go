package att

// A PDU is one decoded attribute protocol PDU. The set of implementations is
// closed: ReadRequest, ReadResponse, WriteRequest, WriteResponse,
// ReadByGroupTypeResponse and ReadByTypeResponse.
type PDU interface {
	isPDU()
}

// ReadRequest asks for the value of the attribute at Handle.
type ReadRequest struct {
	Handle uint16
}

// ReadResponse carries the value of the last requested attribute.
type ReadResponse struct {
	Payload []byte
}

// WriteRequest writes Payload to the attribute at Handle.
type WriteRequest struct {
	Handle  uint16
	Payload []byte
}

// WriteResponse acknowledges a write. Its Payload is usually empty.
type WriteResponse struct {
	Payload []byte
}

// ReadByGroupTypeResponse lists service declarations.
type ReadByGroupTypeResponse struct {
	Records []GroupRecord
}

// ReadByTypeResponse lists characteristic declarations.
type ReadByTypeResponse struct {
	Records []Record
}

func (ReadRequest) isPDU()             {}
func (ReadResponse) isPDU()            {}
func (WriteRequest) isPDU()            {}
func (WriteResponse) isPDU()           {}
func (ReadByGroupTypeResponse) isPDU() {}
func (ReadByTypeResponse) isPDU()      {}

// GroupRecord is one attribute data entry of a Read By Group Type Response.
type GroupRecord struct {
	Handle         uint16
	GroupEndHandle uint16
	UUID           UUID
}

// Record is one attribute data entry of a Read By Type Response.
type Record struct {
	Handle      uint16
	Properties  uint8
	ValueHandle uint16
	UUID        UUID
}
