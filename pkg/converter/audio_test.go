package converter

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeWav(t *testing.T) {
	info, err := probeAudio(bytes.NewReader(wavFixture(48000, 2, 48000*2*2*3)))
	require.NoError(t, err)
	assert.Equal(t, 48000, info.sampleRate)
	assert.Equal(t, 2, info.channels)
	assert.InDelta(t, 3.0, info.duration, 1e-9)
}

func TestProbeWavSkipsUnknownChunks(t *testing.T) {
	le := binary.LittleEndian
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, le, uint32(0)) // overall size is not used by the probe
	b.WriteString("WAVE")
	b.WriteString("LIST")
	binary.Write(&b, le, uint32(5))
	b.Write([]byte("INFOx"))
	b.WriteByte(0) // chunk padding
	b.WriteString("fmt ")
	binary.Write(&b, le, uint32(16))
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, uint16(1))
	binary.Write(&b, le, uint32(8000))
	binary.Write(&b, le, uint32(16000))
	binary.Write(&b, le, uint16(2))
	binary.Write(&b, le, uint16(16))
	b.WriteString("data")
	binary.Write(&b, le, uint32(32000))

	info, err := probeAudio(bytes.NewReader(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 8000, info.sampleRate)
	assert.Equal(t, 1, info.channels)
	assert.InDelta(t, 2.0, info.duration, 1e-9)
}

func aiffFixture(channels int, frames uint32) []byte {
	be := binary.BigEndian
	var comm bytes.Buffer
	binary.Write(&comm, be, uint16(channels))
	binary.Write(&comm, be, frames)
	binary.Write(&comm, be, uint16(16))
	// 44100 Hz as an 80-bit extended float.
	comm.Write([]byte{0x40, 0x0E, 0xAC, 0x44, 0, 0, 0, 0, 0, 0})

	var b bytes.Buffer
	b.WriteString("FORM")
	binary.Write(&b, be, uint32(4+8+comm.Len()))
	b.WriteString("AIFF")
	b.WriteString("COMM")
	binary.Write(&b, be, uint32(comm.Len()))
	b.Write(comm.Bytes())
	return b.Bytes()
}

func TestProbeAiff(t *testing.T) {
	info, err := probeAudio(bytes.NewReader(aiffFixture(1, 44100)))
	require.NoError(t, err)
	assert.Equal(t, 44100, info.sampleRate)
	assert.Equal(t, 1, info.channels)
	assert.InDelta(t, 1.0, info.duration, 1e-9)
}

func TestProbeUnknownContainer(t *testing.T) {
	_, err := probeAudio(bytes.NewReader([]byte("ID3\x03\x00\x00\x00\x00\x00\x00 tag data")))
	require.Error(t, err)
}

func TestProbeShortInput(t *testing.T) {
	_, err := probeAudio(bytes.NewReader([]byte("RI")))
	require.Error(t, err)
}

func TestProbeWavMissingData(t *testing.T) {
	le := binary.LittleEndian
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, le, uint32(0))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, le, uint32(16))
	b.Write(make([]byte, 16))

	_, err := probeAudio(bytes.NewReader(b.Bytes()))
	require.Error(t, err)
}
