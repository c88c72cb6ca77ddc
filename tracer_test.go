package attsnoop

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XC-/attsnoop/diag"
	"github.com/XC-/attsnoop/hci"
	"github.com/XC-/attsnoop/wire"
)

func records(t *testing.T, ss ...string) []hci.RawPacket {
	t.Helper()
	raws := make([]hci.RawPacket, len(ss))
	for i, s := range ss {
		b, err := hex.DecodeString(strings.Replace(s, " ", "", -1))
		require.NoError(t, err, "record %d", i+1)
		raws[i] = hci.RawPacket{Seq: i + 1, Data: b}
	}
	return raws
}

// session is a short connection: primary service discovery, a write to the
// GAP service, a read from GATT and a read of a 128-bit characteristic
// whose declaration spans two ACL packets.
var session = []string{
	"3e 14 02 01 00 00 665544332211 0a 02 0106 06 09 4553332d78",
	"3e 1f 0a 00 4000 00 00 665544332211 40000000 000000000000 2400 0000 2a00 00",
	"40 20 1200 0e00 0400 1106 0100 0500 0018 0600 0900 0118",
	"0e 04 01 030c 00",
	"40 20 0800 0400 0400 120100aa",
	"40 20 0500 0100 0400 13",
	"13 05 01 4000 0100",
	"40 20 0700 0300 0400 0a0600",
	"40 20 0700 0300 0400 0b0102",
	"40 20 0e00 1700 0400 0915 0700 02 0800 2e8d8e",
	"40 10 0d00 4b8e8f5e9ae54f0adb0255cc6a",
	"40 20 0700 0300 0400 0a0700",
	"40 20 0700 0300 0400 0b4553",
}

func quiet() logrus.FieldLogger {
	l, _ := test.NewNullLogger()
	return l
}

func TestRun(t *testing.T) {
	var col diag.Collector
	tr := New(WithLogger(quiet()), WithDiagnostics(&col))
	txs, err := tr.Run(records(t, session...))
	require.NoError(t, err)

	want := []Transaction{
		{Seq: 6, Op: Write{Name: "1800", Request: []byte{0xaa}, Response: []byte{}}},
		{Seq: 9, Op: Read{Name: "1801", Response: []byte{0x01, 0x02}}},
		{Seq: 13, Op: Read{Name: "6acc5502-db0a-4fe5-9a5e-8f8e4b8e8d2e", Response: []byte{0x45, 0x53}}},
	}
	if diff := cmp.Diff(want, txs); diff != "" {
		t.Errorf("transactions mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, col.Diagnostics)
	assert.Equal(t, map[uint16]string{
		0x0001: "1800",
		0x0006: "1801",
		0x0007: "6acc5502-db0a-4fe5-9a5e-8f8e4b8e8d2e",
	}, tr.Names())

	names := tr.Names()
	names[0x0001] = "changed"
	assert.Equal(t, "1800", tr.Names()[0x0001], "Names must return a copy")

	var lines []string
	for _, tx := range txs {
		lines = append(lines, tx.String())
	}
	assert.Equal(t, []string{
		"#6 Write 1800 > [aa]",
		"#9 Read 1801 > [01 02]",
		"#13 Read 6acc5502-db0a-4fe5-9a5e-8f8e4b8e8d2e > [45 53]",
	}, lines)
}

func TestRunIdempotent(t *testing.T) {
	tr := New(WithLogger(quiet()), WithDiagnostics(diag.SinkFunc(func(diag.Diagnostic) {})))
	first, err := tr.Run(records(t, session...))
	require.NoError(t, err)
	second, err := tr.Run(records(t, session...))
	require.NoError(t, err)
	third, err := Run(records(t, session...), WithLogger(quiet()))
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first, third); diff != "" {
		t.Errorf("fresh tracer differs (-first +third):\n%s", diff)
	}
}

func TestRunStructural(t *testing.T) {
	raws := records(t,
		"40 20 0700 0300 0400 0a0300",
		"40 20 0700 0600 0400 0b0102",
		"40 10 0400 03040506",
		"40 20 0700 0300 0400 0b0102",
	)
	txs, err := Run(raws, WithLogger(quiet()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, wire.ErrStructural), "got %v", err)
	assert.Contains(t, err.Error(), "record #3")
	assert.Nil(t, txs)
}

func TestRunLogsDiagnostics(t *testing.T) {
	l, hook := test.NewNullLogger()
	_, err := Run(records(t,
		"40 20 0700 0300 0400 0b0102",
		"3e 02 0d 00",
		"40 20 0700 0300 0400 0a0300",
	), WithLogger(l))
	require.NoError(t, err)

	var got []string
	for _, e := range hook.AllEntries() {
		assert.Equal(t, logrus.WarnLevel, e.Level)
		got = append(got, e.Message)
	}
	assert.Equal(t, []string{
		"unknown LE meta sub event 0x0d",
		"dangling read response",
		"unhandled read request",
	}, got)
	assert.Equal(t, 3, hook.LastEntry().Data["seq"])
}

func TestDecodePendingFragment(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	pkts, err := New(WithLogger(l)).Decode(records(t,
		"40 20 0700 0300 0400 0a0300",
		"41 20 0700 0600 0400 0b0102",
	))
	require.NoError(t, err)
	require.Len(t, pkts, 1)

	var found bool
	for _, e := range hook.AllEntries() {
		if e.Message == "capture ends inside a pdu on handle 0x041" {
			found = true
		}
	}
	assert.True(t, found, "open fragment not logged")
}
