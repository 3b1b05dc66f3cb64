package midiseq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqOf(ppq int64, events ...Event) *Sequence {
	return &Sequence{PPQ: ppq, Events: events}
}

func TestDecodePairsNotes(t *testing.T) {
	seq := seqOf(960,
		Event{Delta: 0, Status: 0x90, Data1: 0x3C, Data2: 96},
		Event{Delta: 960, Status: 0x80, Data1: 0x3C, Data2: 64},
		Event{Delta: 0, Status: 0x91, Data1: 0x40, Data2: 127},
		Event{Delta: 480, Status: 0x81, Data1: 0x40, Data2: 0},
	)
	content, err := seq.Decode(false)
	require.NoError(t, err)
	require.Len(t, content.Notes, 2)

	n := content.Notes[0]
	assert.Equal(t, 0.0, n.Time)
	assert.Equal(t, 1.0, n.Duration)
	assert.Equal(t, uint8(0), n.Channel)
	assert.Equal(t, uint8(0x3C), n.Key)
	assert.InDelta(t, 96.0/127, n.Velocity, 1e-12)
	assert.InDelta(t, 64.0/127, n.Release, 1e-12)

	n = content.Notes[1]
	assert.Equal(t, uint8(1), n.Channel)
	assert.Equal(t, 1.0, n.Time)
	assert.Equal(t, 0.5, n.Duration)
	assert.Equal(t, 1.0, n.Velocity)
	assert.Equal(t, 0.0, n.Release)
}

func TestDecodeZeroVelocityNoteOn(t *testing.T) {
	seq := seqOf(480,
		Event{Delta: 0, Status: 0x90, Data1: 60, Data2: 100},
		Event{Delta: 480, Status: 0x90, Data1: 60, Data2: 0},
	)
	content, err := seq.Decode(false)
	require.NoError(t, err)
	require.Len(t, content.Notes, 1)
	assert.Equal(t, 1.0, content.Notes[0].Duration)
	assert.Equal(t, 0.0, content.Notes[0].Release)
}

// Overlapping notes on the same channel and key pair first-on with
// first-off. The pairing is ambiguous for a contained overlap; the
// earliest open note always wins.
func TestDecodeFirstMatchPairing(t *testing.T) {
	seq := seqOf(960,
		Event{Delta: 0, Status: 0x90, Data1: 60, Data2: 100},
		Event{Delta: 480, Status: 0x90, Data1: 60, Data2: 110},
		Event{Delta: 480, Status: 0x80, Data1: 60, Data2: 0},
		Event{Delta: 480, Status: 0x80, Data1: 60, Data2: 0},
	)
	content, err := seq.Decode(false)
	require.NoError(t, err)
	require.Len(t, content.Notes, 2)

	assert.Equal(t, 0.0, content.Notes[0].Time)
	assert.Equal(t, 1.0, content.Notes[0].Duration)
	assert.InDelta(t, 100.0/127, content.Notes[0].Velocity, 1e-12)

	assert.Equal(t, 0.5, content.Notes[1].Time)
	assert.Equal(t, 1.0, content.Notes[1].Duration)
	assert.InDelta(t, 110.0/127, content.Notes[1].Velocity, 1e-12)
}

func TestDecodeOrphanNoteOff(t *testing.T) {
	seq := seqOf(960, Event{Delta: 0, Status: 0x80, Data1: 60, Data2: 0})

	_, err := seq.Decode(false)
	var merr *MalformedMidiError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, int64(0), merr.Tick)

	content, err := seq.Decode(true)
	require.NoError(t, err)
	assert.Empty(t, content.Notes)
}

func TestDecodeDanglingNoteOn(t *testing.T) {
	seq := seqOf(960, Event{Delta: 120, Status: 0x90, Data1: 60, Data2: 100})

	_, err := seq.Decode(false)
	var merr *MalformedMidiError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, int64(120), merr.Tick)

	content, err := seq.Decode(true)
	require.NoError(t, err)
	assert.Empty(t, content.Notes)
}

func TestDecodeExpressionLanes(t *testing.T) {
	seq := seqOf(960,
		Event{Delta: 0, Status: 0xB0, Data1: 7, Data2: 100},    // CC 7 channel 0
		Event{Delta: 480, Status: 0xB1, Data1: 7, Data2: 50},   // CC 7 channel 1
		Event{Delta: 0, Status: 0xB0, Data1: 7, Data2: 0},      // CC 7 channel 0 again
		Event{Delta: 480, Status: 0xE0, Data1: 0x00, Data2: 0x40}, // pitch bend center
		Event{Delta: 0, Status: 0xC0, Data1: 5},                // program change
		Event{Delta: 0, Status: 0xD0, Data1: 64},               // channel pressure
		Event{Delta: 0, Status: 0xA0, Data1: 60, Data2: 90},    // poly pressure key 60
	)
	content, err := seq.Decode(false)
	require.NoError(t, err)
	require.Len(t, content.Lanes, 6)

	cc0 := content.Lanes[0]
	assert.Equal(t, LaneKey{ExprController, 0, 7}, cc0.LaneKey)
	require.Len(t, cc0.Points, 2)
	assert.Equal(t, 0.0, cc0.Points[0].Time)
	assert.InDelta(t, 100.0/127, cc0.Points[0].Value, 1e-12)
	assert.Equal(t, 0.5, cc0.Points[1].Time)
	assert.Equal(t, 0.0, cc0.Points[1].Value)

	cc1 := content.Lanes[1]
	assert.Equal(t, LaneKey{ExprController, 1, 7}, cc1.LaneKey)
	require.Len(t, cc1.Points, 1)

	bend := content.Lanes[2]
	assert.Equal(t, LaneKey{ExprPitchBend, 0, -1}, bend.LaneKey)
	assert.InDelta(t, 8192.0/16383, bend.Points[0].Value, 1e-12)
	assert.Equal(t, 1.0, bend.Points[0].Time)

	prog := content.Lanes[3]
	assert.Equal(t, LaneKey{ExprProgramChange, 0, -1}, prog.LaneKey)
	assert.Equal(t, 5.0, prog.Points[0].Value)

	pressure := content.Lanes[4]
	assert.Equal(t, LaneKey{ExprChannelPressure, 0, -1}, pressure.LaneKey)
	assert.InDelta(t, 64.0/127, pressure.Points[0].Value, 1e-12)

	poly := content.Lanes[5]
	assert.Equal(t, LaneKey{ExprPolyPressure, 0, 60}, poly.LaneKey)
	assert.InDelta(t, 90.0/127, poly.Points[0].Value, 1e-12)
}

func TestDecodePolyPressureKeyedByNote(t *testing.T) {
	seq := seqOf(960,
		Event{Delta: 0, Status: 0xA0, Data1: 60, Data2: 10},
		Event{Delta: 0, Status: 0xA0, Data1: 64, Data2: 20},
		Event{Delta: 480, Status: 0xA0, Data1: 60, Data2: 30},
	)
	content, err := seq.Decode(false)
	require.NoError(t, err)
	require.Len(t, content.Lanes, 2)
	assert.Equal(t, LaneKey{ExprPolyPressure, 0, 60}, content.Lanes[0].LaneKey)
	assert.Len(t, content.Lanes[0].Points, 2)
	assert.Equal(t, LaneKey{ExprPolyPressure, 0, 64}, content.Lanes[1].LaneKey)
	assert.Len(t, content.Lanes[1].Points, 1)
}

func TestEncodeTerminator(t *testing.T) {
	seq := (&Content{}).Encode(960, 2.0)
	require.Len(t, seq.Events, 1)
	assert.Equal(t, Event{Delta: 1920, Status: StatusController, Data1: CCAllNotesOff}, seq.Events[0])
}

func TestEncodeOrdering(t *testing.T) {
	content := &Content{
		Notes: []Note{
			{Time: 0, Duration: 1, Key: 60, Velocity: 100.0 / 127},
			{Time: 1, Duration: 1, Key: 62, Velocity: 100.0 / 127},
		},
	}
	seq := content.Encode(960, 2.0)
	require.Len(t, seq.Events, 5)

	// The first note's off lands on the second note's on tick and must
	// come first.
	assert.Equal(t, byte(StatusNoteOn), seq.Events[0].Kind())
	assert.Equal(t, byte(StatusNoteOff), seq.Events[1].Kind())
	assert.Equal(t, byte(0x3C), seq.Events[1].Data1)
	assert.Equal(t, byte(StatusNoteOn), seq.Events[2].Kind())
	assert.Equal(t, byte(0x3E), seq.Events[2].Data1)
	assert.Equal(t, int64(0), seq.Events[2].Delta)
	assert.Equal(t, byte(StatusNoteOff), seq.Events[3].Kind())

	// Terminator at the clip end, delta zero here.
	last := seq.Events[4]
	assert.Equal(t, byte(CCAllNotesOff), last.Data1)
	assert.Equal(t, int64(0), last.Delta)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	content := &Content{
		Notes: []Note{
			{Time: 0, Duration: 0.5, Channel: 0, Key: 60, Velocity: 96.0 / 127, Release: 64.0 / 127},
			{Time: 0.25, Duration: 1, Channel: 2, Key: 72, Velocity: 127.0 / 127},
			{Time: 2, Duration: 0.5, Channel: 0, Key: 60, Velocity: 10.0 / 127},
		},
		Lanes: []*Lane{
			{LaneKey: LaneKey{ExprController, 0, 1}, Points: []Point{{Time: 0, Value: 0.5}, {Time: 1.5, Value: 1}}},
			{LaneKey: LaneKey{ExprPitchBend, 2, -1}, Points: []Point{{Time: 0.5, Value: 8192.0 / 16383}}},
			{LaneKey: LaneKey{ExprProgramChange, 1, -1}, Points: []Point{{Time: 0, Value: 12}}},
		},
	}

	seq := content.Encode(960, 4.0)
	back, err := seq.Decode(false)
	require.NoError(t, err)

	require.Len(t, back.Notes, 3)
	for i, n := range back.Notes {
		assert.InDeltaf(t, content.Notes[i].Time, n.Time, 1e-9, "note %d time", i)
		assert.InDeltaf(t, content.Notes[i].Duration, n.Duration, 1e-9, "note %d duration", i)
		assert.Equal(t, content.Notes[i].Channel, n.Channel)
		assert.Equal(t, content.Notes[i].Key, n.Key)
		assert.InDeltaf(t, content.Notes[i].Velocity, n.Velocity, 1e-9, "note %d velocity", i)
		assert.InDeltaf(t, content.Notes[i].Release, n.Release, 1e-9, "note %d release", i)
	}

	// Lanes come back in first-appearance order: the program change fires
	// at tick zero, before the bend. The terminator becomes one extra
	// controller point on CC 123.
	require.Len(t, back.Lanes, 4)
	cc := back.Lanes[0]
	assert.Equal(t, LaneKey{ExprController, 0, 1}, cc.LaneKey)
	require.Len(t, cc.Points, 2)
	assert.InDelta(t, 0.5, cc.Points[0].Value, 0.01)
	assert.Equal(t, 1.0, cc.Points[1].Value)

	prog := back.Lanes[1]
	assert.Equal(t, LaneKey{ExprProgramChange, 1, -1}, prog.LaneKey)
	assert.Equal(t, 12.0, prog.Points[0].Value)

	bend := back.Lanes[2]
	assert.Equal(t, LaneKey{ExprPitchBend, 2, -1}, bend.LaneKey)
	assert.InDelta(t, 8192.0/16383, bend.Points[0].Value, 1e-9)

	term := back.Lanes[3]
	assert.Equal(t, LaneKey{ExprController, 0, CCAllNotesOff}, term.LaneKey)
	require.Len(t, term.Points, 1)
	assert.Equal(t, 4.0, term.Points[0].Time)
}
