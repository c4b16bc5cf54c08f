package receipt

import (
	"bytes"
	"encoding/base64"
	"strings"
)

// ESC/POS control bytes understood by the thermal printers.
const (
	esc = 0x1B
	gs  = 0x1D
	lf  = 0x0A
)

var (
	alignCenter = []byte{esc, 'a', 0x01}
	alignLeft   = []byte{esc, 'a', 0x00}
	boldOn      = []byte{esc, 'E', 0x01}
	boldOff     = []byte{esc, 'E', 0x00}
	sizeDouble  = []byte{esc, '!', 0x30}
	sizeMedium  = []byte{esc, '!', 0x10}
	sizeNormal  = []byte{esc, '!', 0x00}
	cutPaper    = []byte{gs, 'V', 0x00}
)

// separator is one full line at the printers' 32 column width.
var separator = strings.Repeat("=", 32)

// stream accumulates printer commands and UTF-8 text.
type stream struct {
	buf bytes.Buffer
}

func (s *stream) cmd(seqs ...[]byte) *stream {
	for _, b := range seqs {
		s.buf.Write(b)
	}
	return s
}

func (s *stream) text(t string) *stream {
	s.buf.WriteString(t)
	return s
}

func (s *stream) feed(n int) *stream {
	for i := 0; i < n; i++ {
		s.buf.WriteByte(lf)
	}
	return s
}

// line writes t followed by a line feed.
func (s *stream) line(t string) *stream {
	return s.text(t).feed(1)
}

func (s *stream) bold(t string) *stream {
	return s.cmd(boldOn).text(t).cmd(boldOff).feed(1)
}

func (s *stream) rule() *stream {
	return s.line(separator)
}

func (s *stream) bytes() []byte {
	return s.buf.Bytes()
}

// Encode returns the base64 form used to carry tickets inside JSON payloads.
func Encode(ticket []byte) string {
	return base64.StdEncoding.EncodeToString(ticket)
}
