// Package snoop reads HCI captures from btsnoop, pcap and pcapng files and
// turns them into hci.RawPackets.
package snoop

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/XC-/attsnoop/hci"
	"github.com/XC-/attsnoop/wire"
)

var (
	ErrNotBTSnoop          = errors.New("not a btsnoop file")
	ErrUnsupportedVersion  = errors.New("unsupported btsnoop version")
	ErrUnsupportedDatalink = errors.New("unsupported datalink")
	ErrBadRecord           = errors.New("bad btsnoop record")
)

const btsnoopVersion = 1

var btsnoopMagic = []byte("btsnoop\x00")

// btsnoop datalink types
const (
	DatalinkH1   uint32 = 1001 // HCI packets without the UART indicator
	DatalinkH4   uint32 = 1002 // HCI UART, each packet led by its type
	DatalinkBCSP uint32 = 1003
	DatalinkH5   uint32 = 1004
)

var datalinkName = map[uint32]string{
	DatalinkH1:   "HCI Un-encapsulated (H1)",
	DatalinkH4:   "HCI UART (H4)",
	DatalinkBCSP: "HCI BCSP",
	DatalinkH5:   "HCI Serial (H5)",
	1005:         "Unassigned",
}

// DatalinkName returns the name of a btsnoop datalink type.
func DatalinkName(dl uint32) string {
	if s, ok := datalinkName[dl]; ok {
		return s
	}
	return fmt.Sprintf("Reserved / Unassigned (%d)", dl)
}

// PacketType is the HCI UART packet indicator.
type PacketType uint8

const (
	Command PacketType = 0x01
	ACLData PacketType = 0x02
	SCOData PacketType = 0x03
	Event   PacketType = 0x04
	ISOData PacketType = 0x05
)

var packetTypeName = map[PacketType]string{
	Command: "Command",
	ACLData: "ACL Data",
	SCOData: "SCO Data",
	Event:   "Event",
	ISOData: "ISO Data",
}

func (t PacketType) String() string {
	if s, ok := packetTypeName[t]; ok {
		return s
	}
	return fmt.Sprintf("PacketType(0x%02X)", uint8(t))
}

// record flags
const (
	flagReceived = 1 << 0
	flagControl  = 1 << 1 // command or event, as opposed to data
)

const recordHeaderLen = 24

// maxRecordLen bounds the included length of a record: an UART indicator,
// an ACL header and the largest ACL payload.
const maxRecordLen = 1 + 4 + 0xFFFF

// Microseconds from 0000-01-01 to 1970-01-01, the btsnoop epoch offset.
const btsnoopEpochDelta = 0x00dcddb30f2f8000

// A Record is one packet record of a btsnoop file.
type Record struct {
	Seq      int // 1-based position in the file, empty records included
	Time     time.Time
	Received bool   // controller to host
	Drops    uint32 // cumulative packets dropped by the logger
	OrigLen  int    // length of the packet as seen by the logger
	Type     PacketType
	Data     []byte // the HCI packet, without UART indicator
}

// Packet returns r as input for the classifier. ok is false for empty
// records and for packet types the classifier never handles.
func (r Record) Packet() (p hci.RawPacket, ok bool) {
	if len(r.Data) == 0 || (r.Type != Event && r.Type != ACLData) {
		return hci.RawPacket{}, false
	}
	return hci.RawPacket{Seq: r.Seq, Data: r.Data}, true
}

// A Reader reads the records of a btsnoop version 1 file.
type Reader struct {
	r        *bufio.Reader
	datalink uint32
	seq      int
}

// NewReader reads the file header from r.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	hdr := make([]byte, len(btsnoopMagic)+8)
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, errors.Wrap(ErrNotBTSnoop, "short file header")
	}
	if !bytes.Equal(hdr[:len(btsnoopMagic)], btsnoopMagic) {
		return nil, ErrNotBTSnoop
	}
	c := wire.NewCursor(hdr[len(btsnoopMagic):])
	if v := c.Uint32BE(); v != btsnoopVersion {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version %d", v)
	}
	dl := c.Uint32BE()
	if dl != DatalinkH1 && dl != DatalinkH4 {
		return nil, errors.Wrapf(ErrUnsupportedDatalink, "%s", DatalinkName(dl))
	}
	return &Reader{r: br, datalink: dl}, nil
}

// Datalink returns the datalink type announced by the file header.
func (r *Reader) Datalink() uint32 { return r.datalink }

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	hdr := make([]byte, recordHeaderLen)
	if _, err := io.ReadFull(r.r, hdr); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		return Record{}, errors.Wrapf(err, "record #%d header", r.seq+1)
	}
	r.seq++

	c := wire.NewCursor(hdr)
	orig := c.Uint32BE()
	incl := c.Uint32BE()
	flags := c.Uint32BE()
	drops := c.Uint32BE()
	ts := int64(c.Uint32BE())<<32 | int64(c.Uint32BE())

	if incl > orig {
		return Record{}, errors.Wrapf(ErrBadRecord, "record #%d includes %d of %d bytes", r.seq, incl, orig)
	}
	if incl > maxRecordLen {
		return Record{}, errors.Wrapf(ErrBadRecord, "record #%d length %d", r.seq, incl)
	}
	data := make([]byte, incl)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return Record{}, errors.Wrapf(err, "record #%d data", r.seq)
	}

	rec := Record{
		Seq:      r.seq,
		Time:     time.Unix(0, 0).Add(time.Duration(ts-btsnoopEpochDelta) * time.Microsecond).UTC(),
		Received: flags&flagReceived != 0,
		Drops:    drops,
		OrigLen:  int(orig),
	}
	switch r.datalink {
	case DatalinkH4:
		if len(data) > 0 {
			rec.Type, rec.Data = PacketType(data[0]), data[1:]
		}
	default:
		rec.Type, rec.Data = h1Type(flags), data
	}
	return rec, nil
}

// h1Type derives the packet type of an H1 record from its flags.
func h1Type(flags uint32) PacketType {
	switch {
	case flags&flagControl == 0:
		return ACLData
	case flags&flagReceived != 0:
		return Event
	}
	return Command
}

// ReadAll returns the classifier input held in all remaining records.
func (r *Reader) ReadAll() ([]hci.RawPacket, error) {
	var raws []hci.RawPacket
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return raws, nil
		}
		if err != nil {
			return nil, err
		}
		if p, ok := rec.Packet(); ok {
			raws = append(raws, p)
		}
	}
}
