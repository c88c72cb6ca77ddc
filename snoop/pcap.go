package snoop

import (
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/pkg/errors"

	"github.com/XC-/attsnoop/hci"
)

// pcap link types for Bluetooth HCI captures
const (
	LinkTypeBluetoothH4         layers.LinkType = 187
	LinkTypeBluetoothH4WithPHDR layers.LinkType = 201 // led by a 4-byte direction header
)

const phdrLen = 4

// packetDataReader is implemented by both pcapgo.Reader and pcapgo.NgReader.
type packetDataReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// ReadPcap returns the classifier input held in a pcap file.
func ReadPcap(r io.Reader) ([]hci.RawPacket, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "pcap")
	}
	return readPackets(pr)
}

// ReadPcapNG returns the classifier input held in a pcapng file. Only the
// link type of the first interface is considered.
func ReadPcapNG(r io.Reader) ([]hci.RawPacket, error) {
	pr, err := pcapgo.NewNgReader(r, pcapgo.DefaultNgReaderOptions)
	if err != nil {
		return nil, errors.Wrap(err, "pcapng")
	}
	return readPackets(pr)
}

func readPackets(pr packetDataReader) ([]hci.RawPacket, error) {
	lt := pr.LinkType()
	if lt != LinkTypeBluetoothH4 && lt != LinkTypeBluetoothH4WithPHDR {
		return nil, errors.Wrapf(ErrUnsupportedDatalink, "link type %d", int(lt))
	}

	var raws []hci.RawPacket
	for seq := 1; ; seq++ {
		data, _, err := pr.ReadPacketData()
		if err == io.EOF {
			return raws, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "packet #%d", seq)
		}
		if lt == LinkTypeBluetoothH4WithPHDR {
			if len(data) < phdrLen {
				continue
			}
			data = data[phdrLen:]
		}
		if len(data) == 0 {
			continue
		}
		if t := PacketType(data[0]); t == Event || t == ACLData {
			raws = append(raws, hci.RawPacket{Seq: seq, Data: append([]byte{}, data[1:]...)})
		}
	}
}
