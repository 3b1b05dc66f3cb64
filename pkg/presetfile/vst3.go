package presetfile

import (
	"encoding/binary"
	"fmt"
	"io"
)

// .vstpreset container constants
const (
	vst3Magic      = "VST3"
	vst3ListMagic  = "List"
	vst3Version    = 1
	vst3HeaderLen  = 48 // magic + version + class ID + list offset
	vst3EntryLen   = 20 // id + offset + size
	Vst3ClassIDLen = 32

	// Chunk list entry IDs. Only the two state chunks carry plugin data;
	// Info and Prog entries hold host metadata and are skipped on read.
	Vst3ComponentState  = "Comp"
	Vst3ControllerState = "Cont"
)

// Vst3Preset is the content of a .vstpreset container: the 32-hex-char
// class ID plus the component and controller state chunks. Either chunk
// may be absent.
type Vst3Preset struct {
	ClassID    string
	Component  []byte
	Controller []byte
}

// WriteVst3Preset builds a .vstpreset image: header, chunk data, then the
// chunk list directory at the end.
func WriteVst3Preset(p *Vst3Preset) ([]byte, error) {
	if len(p.ClassID) != Vst3ClassIDLen {
		return nil, fmt.Errorf("vstpreset class ID %q: need %d characters", p.ClassID, Vst3ClassIDLen)
	}

	type entry struct {
		id   string
		data []byte
	}
	var entries []entry
	if p.Component != nil {
		entries = append(entries, entry{Vst3ComponentState, p.Component})
	}
	if p.Controller != nil {
		entries = append(entries, entry{Vst3ControllerState, p.Controller})
	}

	listOffset := vst3HeaderLen
	for _, e := range entries {
		listOffset += len(e.data)
	}

	le := binary.LittleEndian
	out := make([]byte, 0, listOffset+8+len(entries)*vst3EntryLen)
	out = append(out, vst3Magic...)
	out = le.AppendUint32(out, vst3Version)
	out = append(out, p.ClassID...)
	out = le.AppendUint64(out, uint64(listOffset))
	for _, e := range entries {
		out = append(out, e.data...)
	}

	out = append(out, vst3ListMagic...)
	out = le.AppendUint32(out, uint32(len(entries)))
	offset := vst3HeaderLen
	for _, e := range entries {
		out = append(out, e.id...)
		out = le.AppendUint64(out, uint64(offset))
		out = le.AppendUint64(out, uint64(len(e.data)))
		offset += len(e.data)
	}
	return out, nil
}

// ReadVst3Preset parses a .vstpreset image and extracts the state chunks.
func ReadVst3Preset(data []byte) (*Vst3Preset, error) {
	if len(data) < vst3HeaderLen {
		return nil, fmt.Errorf("vstpreset (%d bytes): %w", len(data), io.ErrUnexpectedEOF)
	}
	if string(data[0:4]) != vst3Magic {
		return nil, fmt.Errorf("vstpreset: %w", ErrBadMagic)
	}

	le := binary.LittleEndian
	p := &Vst3Preset{ClassID: string(data[8:40])}

	listOffset := le.Uint64(data[40:48])
	if listOffset > uint64(len(data)) || uint64(len(data))-listOffset < 8 {
		return nil, fmt.Errorf("vstpreset chunk list at %d: %w", listOffset, io.ErrUnexpectedEOF)
	}
	list := data[listOffset:]
	if string(list[0:4]) != vst3ListMagic {
		return nil, fmt.Errorf("vstpreset chunk list: %w", ErrBadMagic)
	}

	count := int(le.Uint32(list[4:8]))
	list = list[8:]
	for i := 0; i < count; i++ {
		if len(list) < vst3EntryLen {
			return nil, fmt.Errorf("vstpreset chunk list entry %d: %w", i, io.ErrUnexpectedEOF)
		}
		id := string(list[0:4])
		offset := le.Uint64(list[4:12])
		size := le.Uint64(list[12:20])
		list = list[vst3EntryLen:]

		if offset > uint64(len(data)) || size > uint64(len(data))-offset {
			return nil, fmt.Errorf("vstpreset chunk %s (%d+%d bytes): %w", id, offset, size, io.ErrUnexpectedEOF)
		}
		chunk := data[offset : offset+size]
		switch id {
		case Vst3ComponentState:
			p.Component = chunk
		case Vst3ControllerState:
			p.Controller = chunk
		}
	}
	return p, nil
}
