package midiseq

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMFRoundTrip(t *testing.T) {
	first := seqOf(960,
		Event{Delta: 0, Status: 0x90, Data1: 60, Data2: 100},
		Event{Delta: 960, Status: 0x80, Data1: 60, Data2: 0},
		Event{Delta: 0, Status: 0xB0, Data1: 7, Data2: 90},
		Event{Delta: 480, Status: 0xC0, Data1: 5},
	)
	second := seqOf(960,
		Event{Delta: 240, Status: 0x91, Data1: 72, Data2: 110},
		Event{Delta: 480, Status: 0x81, Data1: 72, Data2: 0},
	)

	// 60000000/128 is a whole microsecond count, so the tempo survives
	// the meta event exactly.
	var buf bytes.Buffer
	require.NoError(t, WriteSMF(&buf, []*Sequence{first, second}, 128))

	seqs, bpm, err := ReadSMF(&buf)
	require.NoError(t, err)
	assert.Equal(t, 128.0, bpm)
	require.Len(t, seqs, 2)
	assert.Equal(t, first.Events, seqs[0].Events)
	assert.Equal(t, second.Events, seqs[1].Events)
	assert.Equal(t, int64(960), seqs[0].PPQ)
}

func TestWriteSMFEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSMF(&buf, nil, 120))

	seqs, bpm, err := ReadSMF(&buf)
	require.NoError(t, err)
	assert.Empty(t, seqs)
	assert.Equal(t, 120.0, bpm)
}

func TestReadSMFBadData(t *testing.T) {
	_, _, err := ReadSMF(bytes.NewReader([]byte("not a midi file")))
	assert.Error(t, err)
}

func TestSMFKeepsResolution(t *testing.T) {
	seq := seqOf(480,
		Event{Delta: 0, Status: 0x90, Data1: 60, Data2: 100},
		Event{Delta: 480, Status: 0x80, Data1: 60, Data2: 0},
	)

	var buf bytes.Buffer
	require.NoError(t, WriteSMF(&buf, []*Sequence{seq}, 120))
	seqs, _, err := ReadSMF(&buf)
	require.NoError(t, err)
	require.Len(t, seqs, 1)
	assert.Equal(t, int64(480), seqs[0].PPQ)
	assert.Equal(t, seq.Events, seqs[0].Events)
}
