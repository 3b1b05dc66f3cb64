package rpp

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RootTag is the chunk name opening every REAPER project file.
const RootTag = "REAPER_PROJECT"

// FormatError reports malformed chunk text. It is fatal: a project with a
// broken tree cannot be partially converted.
type FormatError struct {
	Line int // 1-based source line, 0 when unknown
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("rpp: line %d: %s", e.Line, e.Msg)
	}
	return "rpp: " + e.Msg
}

// Parse reads chunk text and returns the root chunk. The first non-blank
// line must open a chunk; every opened chunk must be closed by a line
// consisting of `>`.
func Parse(r io.Reader) (*Element, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("rpp: read failed: %w", err)
	}
	p := &parser{lines: lines}
	p.skipBlank()
	if p.pos >= len(p.lines) {
		return nil, &FormatError{Msg: "empty input"}
	}
	if !strings.HasPrefix(strings.TrimLeft(p.lines[p.pos], " \t"), "<") {
		return nil, &FormatError{Line: p.pos + 1, Msg: "expected chunk opening tag"}
	}
	root, err := p.parseChunk()
	if err != nil {
		return nil, err
	}
	p.skipBlank()
	if p.pos < len(p.lines) {
		return nil, &FormatError{Line: p.pos + 1, Msg: "content after closing root chunk"}
	}
	return root, nil
}

// ParseString is Parse over an in-memory string
func ParseString(text string) (*Element, error) {
	return Parse(strings.NewReader(text))
}

// ParseProject parses chunk text and verifies the root is a REAPER project
func ParseProject(r io.Reader) (*Element, error) {
	root, err := Parse(r)
	if err != nil {
		return nil, err
	}
	if root.Name != RootTag {
		return nil, &FormatError{Line: 1, Msg: fmt.Sprintf("root tag is %q, expected %q", root.Name, RootTag)}
	}
	return root, nil
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) skipBlank() {
	for p.pos < len(p.lines) && strings.TrimSpace(p.lines[p.pos]) == "" {
		p.pos++
	}
}

// parseChunk consumes the opening line at p.pos and all lines up to and
// including the matching `>`.
func (p *parser) parseChunk() (*Element, error) {
	openLine := p.pos + 1
	raw := p.lines[p.pos]
	trimmed := strings.TrimLeft(raw, " \t")
	tokens := Tokenize(trimmed[1:])
	if len(tokens) == 0 || tokens[0] == "" {
		return nil, &FormatError{Line: openLine, Msg: "chunk tag has no name"}
	}
	chunk := &Element{Name: tokens[0], Params: tokens[1:], Raw: raw, Chunk: true}
	p.pos++
	for p.pos < len(p.lines) {
		raw := p.lines[p.pos]
		trimmed := strings.TrimSpace(raw)
		switch {
		case trimmed == "":
			p.pos++
		case trimmed == ">":
			p.pos++
			return chunk, nil
		case trimmed[0] == '<':
			child, err := p.parseChunk()
			if err != nil {
				return nil, err
			}
			chunk.Children = append(chunk.Children, child)
		default:
			tokens := Tokenize(trimmed)
			chunk.Children = append(chunk.Children, &Element{Name: tokens[0], Params: tokens[1:], Raw: raw})
			p.pos++
		}
	}
	return nil, &FormatError{Line: openLine, Msg: fmt.Sprintf("chunk %q is never closed", chunk.Name)}
}
