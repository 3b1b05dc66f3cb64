// Package presetfile reads and writes standalone plugin preset files:
// VST2 program files (.fxp), VST3 preset containers (.vstpreset) and raw
// CLAP state, independent of which project format embeds them.
package presetfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrBadMagic reports a preset file whose magic bytes are not recognized.
var ErrBadMagic = errors.New("unrecognized preset file magic")

// .fxp container constants
const (
	FxpChunkMagic    = "CcnK" // outer container magic
	FxpOpaqueMagic   = "FPCh" // sub-type: opaque plugin chunk
	FxpParamsMagic   = "FxCk" // sub-type: plain parameter list
	fxpFormatVersion = 1
	fxpNameLen       = 28
	fxpHeaderLen     = 56 // 8-byte preamble + 48-byte program header
)

// Vst2Preset is the content of a .fxp program file. Opaque presets carry
// the plugin's own chunk bytes; parameter presets carry big-endian float32
// values, four bytes per parameter.
type Vst2Preset struct {
	Opaque    bool
	FxID      uint32 // plugin four-char code packed big-endian
	FxVersion uint32
	Count     uint32 // program count (opaque) or parameter count
	Name      string // program name, truncated to 27 chars on write
	Data      []byte
}

// WriteVst2Preset renders a .fxp file image.
func WriteVst2Preset(p *Vst2Preset) []byte {
	extra := 0
	if p.Opaque {
		extra = 4 // chunk size field precedes opaque data
	}
	be := binary.BigEndian

	out := make([]byte, 0, fxpHeaderLen+extra+len(p.Data))
	out = append(out, FxpChunkMagic...)
	out = be.AppendUint32(out, uint32(fxpHeaderLen-8+extra+len(p.Data)))
	if p.Opaque {
		out = append(out, FxpOpaqueMagic...)
	} else {
		out = append(out, FxpParamsMagic...)
	}
	out = be.AppendUint32(out, fxpFormatVersion)
	out = be.AppendUint32(out, p.FxID)
	out = be.AppendUint32(out, p.FxVersion)
	out = be.AppendUint32(out, p.Count)

	var name [fxpNameLen]byte
	copy(name[:fxpNameLen-1], p.Name)
	out = append(out, name[:]...)

	if p.Opaque {
		out = be.AppendUint32(out, uint32(len(p.Data)))
	}
	return append(out, p.Data...)
}

// ReadVst2Preset parses a .fxp file image.
func ReadVst2Preset(data []byte) (*Vst2Preset, error) {
	if len(data) < fxpHeaderLen {
		return nil, fmt.Errorf("fxp preset (%d bytes): %w", len(data), io.ErrUnexpectedEOF)
	}
	if string(data[0:4]) != FxpChunkMagic {
		return nil, fmt.Errorf("fxp preset: %w", ErrBadMagic)
	}

	be := binary.BigEndian
	p := &Vst2Preset{
		FxID:      be.Uint32(data[16:20]),
		FxVersion: be.Uint32(data[20:24]),
		Count:     be.Uint32(data[24:28]),
		Name:      trimName(data[28:fxpHeaderLen]),
	}

	body := data[fxpHeaderLen:]
	switch string(data[8:12]) {
	case FxpOpaqueMagic:
		p.Opaque = true
		if len(body) < 4 {
			return nil, fmt.Errorf("fxp chunk size field: %w", io.ErrUnexpectedEOF)
		}
		size := int(be.Uint32(body[:4]))
		body = body[4:]
		if size > len(body) {
			return nil, fmt.Errorf("fxp chunk declares %d bytes, %d present: %w", size, len(body), io.ErrUnexpectedEOF)
		}
		p.Data = body[:size]
	case FxpParamsMagic:
		p.Data = body
	default:
		return nil, fmt.Errorf("fxp sub-type %q: %w", data[8:12], ErrBadMagic)
	}
	return p, nil
}

func trimName(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
