// Package vstchunk translates embedded plugin state between a project
// chunk's Base64 lines and standalone preset files. All plugin kinds share
// one binary envelope around the state payload; the preset file shape and
// the device ID derivation differ per kind.
package vstchunk

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrUnsupportedFormat reports plugin data this codec cannot translate.
// Callers skip the offending device and continue with the rest.
var ErrUnsupportedFormat = errors.New("unsupported plugin data format")

// ErrMalformed reports plugin data that matches a known format but breaks
// its own rules.
var ErrMalformed = errors.New("malformed plugin data")

// Envelope constants
const (
	magicOpaque = 0xFEED5EEE // payload is the plugin's own chunk
	magicParams = 0xFEED5EEF // payload is a plain parameter list
	markerOne   = 0xDEADBEEF
	markerTwo   = 0xDEADF00D

	stereoChannels = 2
	base64LineLen  = 128
)

// stateTail terminates the trailing name line; an empty-names trailer is
// the familiar "AAAQAAAA".
var stateTail = []byte{0x10, 0x00, 0x00, 0x00}

// PresetBlob is a plugin's serialized state as carried inside a project
// chunk: the envelope fields plus the raw payload. The payload bytes are
// never reinterpreted, only moved.
type PresetBlob struct {
	VendorID    uint32
	Opaque      bool // plugin chunk rather than a parameter list
	Payload     []byte
	ProgramName string
	PresetName  string
}

// EncodeLines renders a blob as chunk state lines: one header line, the
// payload hard-wrapped at 128 characters, and the trailing name line.
// Routing is always written as stereo; fuller routing is not recoverable
// from the neutral schema.
func EncodeLines(blob *PresetBlob) []string {
	le := binary.LittleEndian

	header := make([]byte, 0, 56)
	header = le.AppendUint32(header, blob.VendorID)
	if blob.Opaque {
		header = le.AppendUint32(header, magicOpaque)
	} else {
		header = le.AppendUint32(header, magicParams)
	}
	header = le.AppendUint32(header, stereoChannels)
	header = le.AppendUint64(header, 1) // input 1 routing mask
	header = le.AppendUint64(header, 2) // input 2 routing mask
	header = le.AppendUint32(header, stereoChannels)
	header = le.AppendUint64(header, 1)
	header = le.AppendUint64(header, 2)
	header = le.AppendUint32(header, uint32(len(blob.Payload)))
	header = le.AppendUint32(header, markerOne)
	header = le.AppendUint32(header, markerTwo)

	lines := []string{base64.StdEncoding.EncodeToString(header)}
	lines = append(lines, wrapBase64(blob.Payload)...)

	trailer := make([]byte, 0, len(blob.ProgramName)+len(blob.PresetName)+6)
	trailer = append(trailer, blob.ProgramName...)
	trailer = append(trailer, 0)
	trailer = append(trailer, blob.PresetName...)
	trailer = append(trailer, 0)
	trailer = append(trailer, stateTail...)
	return append(lines, base64.StdEncoding.EncodeToString(trailer))
}

// DecodeLines parses a chunk's Base64 state lines back into a blob. All
// lines before the trailing name line are decoded and concatenated in
// declaration order, then read as one envelope stream.
func DecodeLines(lines []string) (*PresetBlob, error) {
	if len(lines) < 2 {
		return nil, fmt.Errorf("chunk state has %d lines: %w", len(lines), io.ErrUnexpectedEOF)
	}

	var stream []byte
	for i, line := range lines[:len(lines)-1] {
		raw, err := base64.StdEncoding.DecodeString(line)
		if err != nil {
			return nil, fmt.Errorf("chunk state line %d: %w", i+1, err)
		}
		stream = append(stream, raw...)
	}

	blob, err := parseEnvelope(stream)
	if err != nil {
		return nil, err
	}

	trailer, err := base64.StdEncoding.DecodeString(lines[len(lines)-1])
	if err != nil {
		return nil, fmt.Errorf("chunk name line: %w", err)
	}
	blob.ProgramName, blob.PresetName = parseNames(trailer)
	return blob, nil
}

func parseEnvelope(stream []byte) (*PresetBlob, error) {
	c := cursor{data: stream}
	blob := &PresetBlob{}

	vendor, err := c.uint32()
	if err != nil {
		return nil, fmt.Errorf("envelope vendor ID: %w", err)
	}
	blob.VendorID = vendor

	kind, err := c.uint32()
	if err != nil {
		return nil, fmt.Errorf("envelope data kind: %w", err)
	}
	switch kind {
	case magicOpaque:
		blob.Opaque = true
	case magicParams:
		blob.Opaque = false
	default:
		return nil, fmt.Errorf("envelope data kind %#08x: %w", kind, ErrUnsupportedFormat)
	}

	for _, direction := range []string{"input", "output"} {
		channels, err := c.uint32()
		if err != nil {
			return nil, fmt.Errorf("envelope %s channel count: %w", direction, err)
		}
		if err := c.skip(int(channels) * 8); err != nil {
			return nil, fmt.Errorf("envelope %s routing masks: %w", direction, err)
		}
	}

	size, err := c.uint32()
	if err != nil {
		return nil, fmt.Errorf("envelope payload size: %w", err)
	}
	// Two marker ints; their values are not load-bearing on read.
	if err := c.skip(8); err != nil {
		return nil, fmt.Errorf("envelope markers: %w", err)
	}

	// An optional sentinel repeats the two data-kind magics at the start of
	// the payload region and counts against the declared size.
	if sentinel := c.peek(8); len(sentinel) == 8 && size >= 8 &&
		binary.LittleEndian.Uint32(sentinel[0:4]) == magicOpaque &&
		binary.LittleEndian.Uint32(sentinel[4:8]) == magicParams {
		_ = c.skip(8)
		size -= 8
	}

	payload, err := c.bytes(int(size))
	if err != nil {
		return nil, fmt.Errorf("envelope payload (%d bytes declared): %w", size, err)
	}
	blob.Payload = payload
	return blob, nil
}

// parseNames splits the trailer into program and preset name; a short or
// absent trailer yields empty names.
func parseNames(trailer []byte) (program, preset string) {
	parts := bytes.SplitN(trailer, []byte{0}, 3)
	if len(parts) > 0 {
		program = string(parts[0])
	}
	if len(parts) > 1 {
		preset = string(parts[1])
	}
	return program, preset
}

// EncodeRawLines renders state bytes as Base64 chunk lines with no
// envelope around them. CLAP chunks store their state this way.
func EncodeRawLines(data []byte) []string {
	return wrapBase64(data)
}

// DecodeRawLines concatenates and decodes Base64 chunk lines that carry
// no envelope.
func DecodeRawLines(lines []string) ([]byte, error) {
	var out []byte
	for i, line := range lines {
		raw, err := base64.StdEncoding.DecodeString(line)
		if err != nil {
			return nil, fmt.Errorf("chunk state line %d: %w", i+1, err)
		}
		out = append(out, raw...)
	}
	return out, nil
}

// wrapBase64 encodes data and hard-wraps it at 128 characters per line.
// Line lengths stay multiples of four, so every line decodes on its own.
func wrapBase64(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := base64.StdEncoding.EncodeToString(data)
	lines := make([]string, 0, (len(s)+base64LineLen-1)/base64LineLen)
	for len(s) > base64LineLen {
		lines = append(lines, s[:base64LineLen])
		s = s[base64LineLen:]
	}
	return append(lines, s)
}

// cursor tracks a read offset over a byte stream; reads past the end
// report io.ErrUnexpectedEOF.
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) uint32() (uint32, error) {
	if len(c.data)-c.off < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(c.data[c.off:])
	c.off += 4
	return v, nil
}

func (c *cursor) skip(n int) error {
	if n < 0 || len(c.data)-c.off < n {
		return io.ErrUnexpectedEOF
	}
	c.off += n
	return nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if n < 0 || len(c.data)-c.off < n {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

// peek returns the next n bytes without consuming them, or nil when fewer
// remain.
func (c *cursor) peek(n int) []byte {
	if len(c.data)-c.off < n {
		return nil
	}
	return c.data[c.off : c.off+n]
}
