package snoop

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/XC-/attsnoop/hci"
)

// Format names a capture file format.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatBTSnoop Format = "btsnoop"
	FormatPcap    Format = "pcap"
	FormatPcapNG  Format = "pcapng"
)

var ErrUnknownFormat = errors.New("unknown capture format")

// ParseFormat checks that s names a known format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatAuto, FormatBTSnoop, FormatPcap, FormatPcapNG:
		return f, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
}

var (
	pcapMagics = [][]byte{
		{0xa1, 0xb2, 0xc3, 0xd4},
		{0xd4, 0xc3, 0xb2, 0xa1},
		{0xa1, 0xb2, 0x3c, 0x4d},
		{0x4d, 0x3c, 0xb2, 0xa1},
	}
	pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}
)

// Sniff guesses the format of a capture from its first bytes.
func Sniff(head []byte) (Format, error) {
	if bytes.HasPrefix(head, btsnoopMagic) {
		return FormatBTSnoop, nil
	}
	if bytes.HasPrefix(head, pcapngMagic) {
		return FormatPcapNG, nil
	}
	for _, m := range pcapMagics {
		if bytes.HasPrefix(head, m) {
			return FormatPcap, nil
		}
	}
	return "", ErrUnknownFormat
}

// Read returns the classifier input held in the capture read from r.
func Read(r io.Reader, f Format) ([]hci.RawPacket, error) {
	br := bufio.NewReader(r)
	if f == FormatAuto {
		head, _ := br.Peek(len(btsnoopMagic))
		var err error
		if f, err = Sniff(head); err != nil {
			return nil, err
		}
	}

	switch f {
	case FormatBTSnoop:
		sr, err := NewReader(br)
		if err != nil {
			return nil, err
		}
		return sr.ReadAll()
	case FormatPcap:
		return ReadPcap(br)
	case FormatPcapNG:
		return ReadPcapNG(br)
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", string(f))
}

// Open reads the capture file at path.
func Open(path string, f Format) ([]hci.RawPacket, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	raws, err := Read(file, f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return raws, nil
}
