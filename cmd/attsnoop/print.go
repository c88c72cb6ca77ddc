package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/XC-/attsnoop"
	"github.com/XC-/attsnoop/att"
)

var (
	seqColor      = termenv.ANSIBrightBlack
	readColor     = termenv.ANSIBlue
	writeColor    = termenv.ANSIMagenta
	uuidColor     = termenv.ANSIBrightCyan
	unknownColor  = termenv.ANSIYellow
	payloadColor  = termenv.ANSIGreen
	responseColor = termenv.ANSIBrightBlack
)

// printer renders transactions, one per line.
type printer struct {
	w     io.Writer
	style *termenv.Output

	shortUUID bool // only the first group of 128-bit UUIDs
	names     bool // append assigned names
}

func newPrinter(w io.Writer, color bool) *printer {
	var opts []termenv.OutputOption
	if !color {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	return &printer{w: w, style: termenv.NewOutput(w, opts...)}
}

func (p *printer) println(tx attsnoop.Transaction) {
	fmt.Fprintln(p.w, p.format(tx))
}

func (p *printer) format(tx attsnoop.Transaction) string {
	seq := p.style.String(fmt.Sprintf("#%d", tx.Seq)).Foreground(seqColor).String()
	switch op := tx.Op.(type) {
	case attsnoop.Read:
		return fmt.Sprintf("%s %s %s > %s", seq,
			p.style.String("Read").Foreground(readColor), p.name(op.Name), p.hex(op.Response, payloadColor))
	case attsnoop.Write:
		s := fmt.Sprintf("%s %s %s > %s", seq,
			p.style.String("Write").Foreground(writeColor), p.name(op.Name), p.hex(op.Request, payloadColor))
		if len(op.Response) > 0 {
			s += " < " + p.hex(op.Response, responseColor)
		}
		return s
	}
	return tx.String()
}

func (p *printer) name(s string) string {
	if strings.HasPrefix(s, "(") {
		return p.style.String(s).Foreground(unknownColor).String()
	}
	hint := ""
	if p.names {
		if n := att.Name(s); n != "" {
			hint = " (" + n + ")"
		}
	}
	parts := strings.Split(s, "-")
	parts[0] = p.style.String(parts[0]).Foreground(uuidColor).String()
	if p.shortUUID {
		return parts[0] + hint
	}
	return strings.Join(parts, "-") + hint
}

func (p *printer) hex(b []byte, c termenv.Color) string {
	return p.style.String(attsnoop.Hex(b)).Foreground(c).String()
}
