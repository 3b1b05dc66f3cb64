package vstchunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/git-moss/ProjectConverter-sub000/pkg/presetfile"
)

// Kind enumerates the plugin families this codec understands. The set is
// closed: each device is matched against exactly these values once, then
// handled through the kind's codec functions.
type Kind int

const (
	KindVst2 Kind = iota
	KindVst3
	KindClap
)

func (k Kind) String() string {
	switch k {
	case KindVst2:
		return "VST2"
	case KindVst3:
		return "VST3"
	case KindClap:
		return "CLAP"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Ext returns the preset file extension for the kind.
func (k Kind) Ext() string {
	switch k {
	case KindVst2:
		return ".fxp"
	case KindVst3:
		return ".vstpreset"
	case KindClap:
		return ".clap-preset"
	}
	return ""
}

// descPrefix is the kind's tag in FX-chain descriptions, without the
// instrument suffix.
func (k Kind) descPrefix() string {
	if k == KindVst2 {
		return "VST"
	}
	return k.String()
}

// Longest alternatives first; the matcher takes the first branch that fits.
var descPattern = regexp.MustCompile(`^(VST3i|VST3|VSTi|VST|CLAPi|CLAP)?: (.*) \(([^()]*)\)$`)

// Description identifies a device inside an FX chain.
type Description struct {
	Kind       Kind
	Name       string
	Vendor     string
	Instrument bool
}

// ParseDescription splits an FX-chain description like
// "VST3: Pro-Q 3 (FabFilter)". The prefix selects the plugin kind and its
// "i" suffix marks an instrument; unknown prefixes mean the device cannot
// be translated.
func ParseDescription(desc string) (*Description, error) {
	m := descPattern.FindStringSubmatch(desc)
	if m == nil || m[1] == "" {
		return nil, fmt.Errorf("device description %q: %w", desc, ErrUnsupportedFormat)
	}
	d := &Description{Name: m[2], Vendor: m[3]}
	switch m[1] {
	case "VST":
		d.Kind = KindVst2
	case "VSTi":
		d.Kind, d.Instrument = KindVst2, true
	case "VST3":
		d.Kind = KindVst3
	case "VST3i":
		d.Kind, d.Instrument = KindVst3, true
	case "CLAP":
		d.Kind = KindClap
	case "CLAPi":
		d.Kind, d.Instrument = KindClap, true
	}
	return d, nil
}

// String renders the FX-chain description for the device.
func (d *Description) String() string {
	prefix := d.Kind.descPrefix()
	if d.Instrument {
		prefix += "i"
	}
	return fmt.Sprintf("%s: %s (%s)", prefix, d.Name, d.Vendor)
}

// WriteFile renders a preset blob as a standalone preset file image for
// the kind. deviceID carries the plugin identifier in its native form:
// the VST3 class ID, unused for VST2 (the blob's vendor ID serves) and
// for CLAP (raw state only).
func (k Kind) WriteFile(blob *PresetBlob, deviceID string) ([]byte, error) {
	switch k {
	case KindVst2:
		return writeVst2File(blob), nil
	case KindVst3:
		return writeVst3File(blob, deviceID)
	case KindClap:
		return presetfile.WriteClapState(blob.Payload), nil
	}
	return nil, fmt.Errorf("plugin kind %s: %w", k, ErrUnsupportedFormat)
}

// ReadFile parses a standalone preset file image back into a blob. The
// second result is the plugin identifier recovered from the file in its
// native form: decimal ID for VST2, class ID for VST3, empty for CLAP.
func (k Kind) ReadFile(data []byte) (*PresetBlob, string, error) {
	switch k {
	case KindVst2:
		return readVst2File(data)
	case KindVst3:
		return readVst3File(data)
	case KindClap:
		return &PresetBlob{Opaque: true, Payload: presetfile.ReadClapState(data)}, "", nil
	}
	return nil, "", fmt.Errorf("plugin kind %s: %w", k, ErrUnsupportedFormat)
}

func writeVst2File(blob *PresetBlob) []byte {
	count := uint32(1)
	if !blob.Opaque {
		count = uint32(len(blob.Payload) / 4)
	}
	name := blob.ProgramName
	if name == "" {
		name = blob.PresetName
	}
	return presetfile.WriteVst2Preset(&presetfile.Vst2Preset{
		Opaque: blob.Opaque,
		FxID:   blob.VendorID,
		Count:  count,
		Name:   name,
		Data:   blob.Payload,
	})
}

func readVst2File(data []byte) (*PresetBlob, string, error) {
	p, err := presetfile.ReadVst2Preset(data)
	if err != nil {
		if errors.Is(err, presetfile.ErrBadMagic) {
			return nil, "", fmt.Errorf("%v: %w", err, ErrUnsupportedFormat)
		}
		return nil, "", err
	}
	blob := &PresetBlob{
		Opaque:      p.Opaque,
		VendorID:    p.FxID,
		Payload:     p.Data,
		ProgramName: p.Name,
	}
	return blob, strconv.FormatUint(uint64(p.FxID), 10), nil
}

func writeVst3File(blob *PresetBlob, classID string) ([]byte, error) {
	canonical, err := NormalizeClassID(classID)
	if err != nil {
		return nil, err
	}
	chunks, err := splitVst3Payload(blob.Payload)
	if err != nil {
		return nil, err
	}
	preset := &presetfile.Vst3Preset{ClassID: canonical}
	if len(chunks) > 0 {
		preset.Component = chunks[0]
	}
	if len(chunks) > 1 {
		preset.Controller = chunks[1]
	}
	return presetfile.WriteVst3Preset(preset)
}

func readVst3File(data []byte) (*PresetBlob, string, error) {
	p, err := presetfile.ReadVst3Preset(data)
	if err != nil {
		if errors.Is(err, presetfile.ErrBadMagic) {
			return nil, "", fmt.Errorf("%v: %w", err, ErrUnsupportedFormat)
		}
		return nil, "", err
	}
	var chunks [][]byte
	if p.Component != nil {
		chunks = append(chunks, p.Component)
	}
	if p.Controller != nil {
		chunks = append(chunks, p.Controller)
	}
	blob := &PresetBlob{Opaque: true, Payload: joinVst3Payload(chunks)}
	hash, err := Vst3IDHash(p.ClassID)
	if err != nil {
		return nil, "", err
	}
	blob.VendorID = hash
	return blob, p.ClassID, nil
}

// splitVst3Payload cuts the envelope payload into its length-prefixed
// sub-chunks: little-endian length, four reserved bytes, data. More than
// two sub-chunks means the input is corrupt.
func splitVst3Payload(payload []byte) ([][]byte, error) {
	var chunks [][]byte
	rest := payload
	for len(rest) > 0 {
		if len(chunks) == 2 {
			return nil, fmt.Errorf("VST3 state carries more than two sub-chunks: %w", ErrMalformed)
		}
		if len(rest) < 8 {
			return nil, fmt.Errorf("VST3 sub-chunk header: %w", io.ErrUnexpectedEOF)
		}
		size := int(binary.LittleEndian.Uint32(rest[0:4]))
		rest = rest[8:]
		if size > len(rest) {
			return nil, fmt.Errorf("VST3 sub-chunk of %d bytes, %d present: %w", size, len(rest), io.ErrUnexpectedEOF)
		}
		chunks = append(chunks, rest[:size])
		rest = rest[size:]
	}
	return chunks, nil
}

// joinVst3Payload renders sub-chunks back into the envelope's
// length-prefixed payload form.
func joinVst3Payload(chunks [][]byte) []byte {
	var out []byte
	for _, chunk := range chunks {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(chunk)))
		out = append(out, 0, 0, 0, 0)
		out = append(out, chunk...)
	}
	return out
}
