package rpp

import (
	"io"
	"strings"
)

// RPP files are CRLF-terminated regardless of platform.
const lineEnding = "\r\n"

// Format renders the element tree back to chunk text. Formatting a parsed
// tree yields text that reparses to a structurally equal tree; parameter
// quoting is normalized in the process.
func (e *Element) Format() string {
	var b strings.Builder
	e.format(&b, 0)
	return b.String()
}

// Write renders the element tree to w
func (e *Element) Write(w io.Writer) error {
	_, err := io.WriteString(w, e.Format())
	return err
}

func (e *Element) format(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent)
	if e.Chunk {
		b.WriteByte('<')
	}
	b.WriteString(e.Name)
	for _, p := range e.Params {
		b.WriteByte(' ')
		b.WriteString(quoteParam(p))
	}
	b.WriteString(lineEnding)
	if !e.Chunk {
		return
	}
	for _, c := range e.Children {
		c.format(b, depth+1)
	}
	b.WriteString(indent)
	b.WriteByte('>')
	b.WriteString(lineEnding)
}
