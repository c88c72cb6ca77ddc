package snoop

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XC-/attsnoop/hci"
)

type testRecord struct {
	flags uint32
	data  string
}

var testTime = time.Unix(1600000000, 250000000).UTC()

func unhex(s string) []byte {
	b, err := hex.DecodeString(strings.Replace(s, " ", "", -1))
	if err != nil {
		panic(err)
	}
	return b
}

func btsnoopFile(version, datalink uint32, recs ...testRecord) []byte {
	var buf bytes.Buffer
	buf.Write(btsnoopMagic)
	binary.Write(&buf, binary.BigEndian, version)
	binary.Write(&buf, binary.BigEndian, datalink)
	ts := uint64(testTime.UnixNano()/1000) + btsnoopEpochDelta
	for i, r := range recs {
		data := unhex(r.data)
		binary.Write(&buf, binary.BigEndian, []uint32{uint32(len(data)), uint32(len(data)), r.flags, uint32(i)})
		binary.Write(&buf, binary.BigEndian, ts)
		buf.Write(data)
	}
	return buf.Bytes()
}

func TestReaderH1(t *testing.T) {
	f := btsnoopFile(1, DatalinkH1,
		testRecord{flags: 3, data: "3e 02 0d 00"},
		testRecord{flags: 2, data: "0d 20 00"},
		testRecord{flags: 0, data: ""},
		testRecord{flags: 1, data: "40 20 0500 0100 0400 13"},
	)
	r, err := NewReader(bytes.NewReader(f))
	require.NoError(t, err)
	assert.Equal(t, DatalinkH1, r.Datalink())

	rec, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Seq)
	assert.Equal(t, Event, rec.Type)
	assert.True(t, rec.Received)
	assert.Equal(t, 4, rec.OrigLen)
	assert.Equal(t, uint32(0), rec.Drops)
	assert.True(t, testTime.Equal(rec.Time), "time %v want %v", rec.Time, testTime)

	rec, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, Command, rec.Type)
	assert.False(t, rec.Received)
	assert.Equal(t, uint32(1), rec.Drops)
	_, ok := rec.Packet()
	assert.False(t, ok, "commands are not classifier input")

	raws, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []hci.RawPacket{{Seq: 4, Data: unhex("40 20 0500 0100 0400 13")}}, raws)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderH4(t *testing.T) {
	f := btsnoopFile(1, DatalinkH4,
		testRecord{flags: 3, data: "04 3e 02 0d 00"},
		testRecord{flags: 2, data: "01 03 0c 00"},
		testRecord{flags: 1, data: "02 40 20 0500 0100 0400 13"},
		testRecord{flags: 1, data: ""},
		testRecord{flags: 0, data: "03 4000 00"},
	)
	r, err := NewReader(bytes.NewReader(f))
	require.NoError(t, err)
	raws, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []hci.RawPacket{
		{Seq: 1, Data: unhex("3e 02 0d 00")},
		{Seq: 3, Data: unhex("40 20 0500 0100 0400 13")},
	}, raws)
}

func TestReaderHeader(t *testing.T) {
	cases := []struct {
		name string
		file []byte
		err  error
		msg  string
	}{
		{name: "empty", file: nil, err: ErrNotBTSnoop},
		{name: "bad magic", file: append([]byte("btsnoopX"), make([]byte, 8)...), err: ErrNotBTSnoop},
		{name: "version 2", file: btsnoopFile(2, DatalinkH1), err: ErrUnsupportedVersion, msg: "version 2"},
		{name: "bcsp", file: btsnoopFile(1, DatalinkBCSP), err: ErrUnsupportedDatalink, msg: "HCI BCSP"},
		{name: "h5", file: btsnoopFile(1, DatalinkH5), err: ErrUnsupportedDatalink, msg: "HCI Serial (H5)"},
		{name: "unassigned", file: btsnoopFile(1, 1005), err: ErrUnsupportedDatalink, msg: "Unassigned"},
		{name: "reserved", file: btsnoopFile(1, 2000), err: ErrUnsupportedDatalink, msg: "Reserved / Unassigned (2000)"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(tt.file))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.err), "got %v want %v", err, tt.err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestReaderTruncated(t *testing.T) {
	f := btsnoopFile(1, DatalinkH1,
		testRecord{flags: 3, data: "3e 02 0d 00"},
		testRecord{flags: 1, data: "40 20 0500 0100 0400 13"},
	)
	r, err := NewReader(bytes.NewReader(f[:len(f)-3]))
	require.NoError(t, err)
	_, err = r.ReadAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record #2 data")
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestReaderRecordLength(t *testing.T) {
	header := func(orig, incl uint32) []byte {
		var buf bytes.Buffer
		buf.Write(btsnoopFile(1, DatalinkH1))
		binary.Write(&buf, binary.BigEndian, []uint32{orig, incl, 1, 0, 0, 0})
		buf.Write(unhex("40 20"))
		return buf.Bytes()
	}
	cases := []struct {
		name       string
		orig, incl uint32
		msg        string
	}{
		{name: "huge", orig: 0xFFFFFFF0, incl: 0xFFFFFFF0, msg: "record #1 length 4294967280"},
		{name: "longer than acl", orig: maxRecordLen + 1, incl: maxRecordLen + 1, msg: "record #1 length 65542"},
		{name: "more than original", orig: 2, incl: 5, msg: "record #1 includes 5 of 2 bytes"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewReader(header(tt.orig, tt.incl)))
			require.NoError(t, err)
			_, err = r.Next()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBadRecord), "got %v", err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDatalinkName(t *testing.T) {
	assert.Equal(t, "HCI UART (H4)", DatalinkName(DatalinkH4))
	assert.Equal(t, "Reserved / Unassigned (7)", DatalinkName(7))
}
