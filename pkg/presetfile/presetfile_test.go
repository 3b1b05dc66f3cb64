package presetfile

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVst2PresetRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		preset Vst2Preset
	}{
		{
			name: "opaque chunk",
			preset: Vst2Preset{
				Opaque:    true,
				FxID:      0x56697461, // "Vita"
				FxVersion: 2,
				Count:     1,
				Name:      "Init",
				Data:      []byte{1, 2, 3, 4, 5},
			},
		},
		{
			name: "parameter list",
			preset: Vst2Preset{
				FxID:      0x44697374, // "Dist"
				FxVersion: 1,
				Count:     2,
				Name:      "Crunch",
				Data:      []byte{0x3f, 0x80, 0x00, 0x00, 0x3f, 0x00, 0x00, 0x00},
			},
		},
		{
			name:   "empty payload",
			preset: Vst2Preset{Opaque: true, FxID: 1, Count: 1},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := WriteVst2Preset(&tc.preset)
			back, err := ReadVst2Preset(data)
			require.NoError(t, err)
			assert.Equal(t, tc.preset.Opaque, back.Opaque)
			assert.Equal(t, tc.preset.FxID, back.FxID)
			assert.Equal(t, tc.preset.FxVersion, back.FxVersion)
			assert.Equal(t, tc.preset.Count, back.Count)
			assert.Equal(t, tc.preset.Name, back.Name)
			if len(tc.preset.Data) > 0 {
				assert.Equal(t, tc.preset.Data, back.Data)
			} else {
				assert.Empty(t, back.Data)
			}
		})
	}
}

func TestVst2PresetLayout(t *testing.T) {
	data := WriteVst2Preset(&Vst2Preset{
		Opaque:    true,
		FxID:      0x56697461,
		FxVersion: 2,
		Count:     1,
		Name:      "Init",
		Data:      []byte{1, 2, 3, 4, 5},
	})

	require.Len(t, data, 65) // 56-byte header + size field + 5 payload bytes
	assert.Equal(t, "CcnK", string(data[0:4]))
	assert.Equal(t, uint32(57), binary.BigEndian.Uint32(data[4:8])) // total minus preamble
	assert.Equal(t, "FPCh", string(data[8:12]))
	assert.Equal(t, uint32(1), binary.BigEndian.Uint32(data[12:16]))
	assert.Equal(t, uint32(0x56697461), binary.BigEndian.Uint32(data[16:20]))
	assert.Equal(t, "Init", string(data[28:32]))
	assert.Equal(t, byte(0), data[32])
	assert.Equal(t, uint32(5), binary.BigEndian.Uint32(data[56:60]))
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, data[60:])

	params := WriteVst2Preset(&Vst2Preset{FxID: 1, Count: 2, Data: make([]byte, 8)})
	assert.Equal(t, "FxCk", string(params[8:12]))
	assert.Len(t, params, 64)
}

func TestVst2PresetNameTruncated(t *testing.T) {
	long := "a name far longer than the twenty-seven characters available"
	data := WriteVst2Preset(&Vst2Preset{FxID: 1, Name: long})
	back, err := ReadVst2Preset(data)
	require.NoError(t, err)
	assert.Equal(t, long[:27], back.Name)
}

func TestReadVst2PresetErrors(t *testing.T) {
	_, err := ReadVst2Preset([]byte("CcnK"))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	bad := WriteVst2Preset(&Vst2Preset{FxID: 1})
	copy(bad[0:4], "XXXX")
	_, err = ReadVst2Preset(bad)
	assert.ErrorIs(t, err, ErrBadMagic)

	bad = WriteVst2Preset(&Vst2Preset{FxID: 1})
	copy(bad[8:12], "FxBk")
	_, err = ReadVst2Preset(bad)
	assert.ErrorIs(t, err, ErrBadMagic)

	// Declared chunk size exceeding the data present.
	bad = WriteVst2Preset(&Vst2Preset{Opaque: true, FxID: 1, Data: []byte{1, 2}})
	binary.BigEndian.PutUint32(bad[56:60], 100)
	_, err = ReadVst2Preset(bad)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

const testClassID = "ABCDEF0123456789ABCDEF0123456789"

func TestVst3PresetRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		preset Vst3Preset
	}{
		{"component and controller", Vst3Preset{testClassID, []byte{1, 2, 3}, []byte{4, 5}}},
		{"component only", Vst3Preset{testClassID, []byte{9, 9, 9, 9}, nil}},
		{"no chunks", Vst3Preset{testClassID, nil, nil}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := WriteVst3Preset(&tc.preset)
			require.NoError(t, err)
			back, err := ReadVst3Preset(data)
			require.NoError(t, err)
			assert.Equal(t, tc.preset.ClassID, back.ClassID)
			assert.Equal(t, tc.preset.Component, back.Component)
			assert.Equal(t, tc.preset.Controller, back.Controller)
		})
	}
}

func TestVst3PresetLayout(t *testing.T) {
	data, err := WriteVst3Preset(&Vst3Preset{testClassID, []byte{1, 2, 3}, []byte{4, 5}})
	require.NoError(t, err)

	require.Len(t, data, 101)
	assert.Equal(t, "VST3", string(data[0:4]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, testClassID, string(data[8:40]))
	assert.Equal(t, uint64(53), binary.LittleEndian.Uint64(data[40:48]))
	assert.Equal(t, []byte{1, 2, 3}, data[48:51])
	assert.Equal(t, []byte{4, 5}, data[51:53])
	assert.Equal(t, "List", string(data[53:57]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[57:61]))
	assert.Equal(t, "Comp", string(data[61:65]))
	assert.Equal(t, uint64(48), binary.LittleEndian.Uint64(data[65:73]))
	assert.Equal(t, uint64(3), binary.LittleEndian.Uint64(data[73:81]))
	assert.Equal(t, "Cont", string(data[81:85]))
	assert.Equal(t, uint64(51), binary.LittleEndian.Uint64(data[85:93]))
	assert.Equal(t, uint64(2), binary.LittleEndian.Uint64(data[93:101]))
}

func TestWriteVst3PresetRejectsBadClassID(t *testing.T) {
	_, err := WriteVst3Preset(&Vst3Preset{ClassID: "short"})
	assert.Error(t, err)
}

func TestReadVst3PresetErrors(t *testing.T) {
	_, err := ReadVst3Preset([]byte("VST3"))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	good, err := WriteVst3Preset(&Vst3Preset{testClassID, []byte{1}, nil})
	require.NoError(t, err)

	bad := append([]byte(nil), good...)
	copy(bad[0:4], "3TSV")
	_, err = ReadVst3Preset(bad)
	assert.ErrorIs(t, err, ErrBadMagic)

	// List offset pointing past the end of the file.
	bad = append([]byte(nil), good...)
	binary.LittleEndian.PutUint64(bad[40:48], uint64(len(bad)+16))
	_, err = ReadVst3Preset(bad)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	// Chunk entry pointing past the end of the file.
	bad, err = WriteVst3Preset(&Vst3Preset{testClassID, []byte{1, 2}, nil})
	require.NoError(t, err)
	listOffset := binary.LittleEndian.Uint64(bad[40:48])
	entry := listOffset + 8
	binary.LittleEndian.PutUint64(bad[entry+12:entry+20], 4096)
	_, err = ReadVst3Preset(bad)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestClapStateCopies(t *testing.T) {
	state := []byte{1, 2, 3}

	file := WriteClapState(state)
	assert.Equal(t, state, file)
	file[0] = 99
	assert.Equal(t, byte(1), state[0])

	back := ReadClapState(file)
	assert.Equal(t, []byte{99, 2, 3}, back)
	back[1] = 88
	assert.Equal(t, byte(2), file[1])
}
