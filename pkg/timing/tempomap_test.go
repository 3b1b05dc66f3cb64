package timing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantTempoClosedForm(t *testing.T) {
	tl := Constant(120)
	assert.True(t, tl.Constant())

	// beats = seconds * tempo / 60
	assert.InDelta(t, 4.0, tl.SecondsToBeats(2.0), 1e-9)
	assert.InDelta(t, 2.0, tl.BeatsToSeconds(4.0), 1e-9)
	assert.InDelta(t, 0.0, tl.SecondsToBeats(0), 1e-9)
	assert.InDelta(t, 120.0, tl.TempoAt(17.3), 1e-9)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)

	_, err = New([]TempoPoint{{Time: 0, BPM: 0}})
	require.Error(t, err)

	_, err = New([]TempoPoint{{Time: 1, BPM: 120}, {Time: 1, BPM: 140}})
	require.Error(t, err)
}

func TestImplicitLeadIn(t *testing.T) {
	// First explicit point at 10s; the region before it holds the same tempo.
	tl, err := New([]TempoPoint{{Time: 10, BPM: 60, Interp: Hold}, {Time: 20, BPM: 120, Interp: Hold}})
	require.NoError(t, err)

	assert.InDelta(t, 60.0, tl.TempoAt(5), 1e-9)
	assert.InDelta(t, 5.0, tl.SecondsToBeats(5), 1e-9)
	// 20s: 20 beats at 60 BPM, then 120 BPM afterwards
	assert.InDelta(t, 20.0, tl.SecondsToBeats(20), 1e-9)
	assert.InDelta(t, 22.0, tl.SecondsToBeats(21), 1e-9)
}

func TestHoldSegments(t *testing.T) {
	tl, err := New([]TempoPoint{
		{Time: 0, BPM: 120, Interp: Hold},
		{Time: 2, BPM: 60, Interp: Hold},
	})
	require.NoError(t, err)

	// 2s at 120 BPM = 4 beats, then 60 BPM = 1 beat/s.
	assert.InDelta(t, 4.0, tl.SecondsToBeats(2), 1e-9)
	assert.InDelta(t, 7.0, tl.SecondsToBeats(5), 1e-9)
	assert.InDelta(t, 5.0, tl.BeatsToSeconds(7), 1e-9)
	assert.InDelta(t, 120.0, tl.TempoAt(1.999), 1e-9)
	assert.InDelta(t, 60.0, tl.TempoAt(2), 1e-9)
}

func TestLinearRamp(t *testing.T) {
	tl, err := New([]TempoPoint{
		{Time: 0, BPM: 60, Interp: Linear},
		{Time: 10, BPM: 120, Interp: Hold},
	})
	require.NoError(t, err)

	// Instantaneous tempo halfway up the ramp.
	assert.InDelta(t, 90.0, tl.TempoAt(5), 1e-9)
	// Full ramp integrates to the trapezoid: 10s * (60+120)/2 / 60 = 15 beats.
	assert.InDelta(t, 15.0, tl.SecondsToBeats(10), 1e-9)
	// Partial ramp: 5s * (60+90)/2 / 60 = 6.25 beats.
	assert.InDelta(t, 6.25, tl.SecondsToBeats(5), 1e-9)
	// After the ramp the tempo holds at 120.
	assert.InDelta(t, 17.0, tl.SecondsToBeats(11), 1e-9)
}

func TestRoundTripIdentity(t *testing.T) {
	tl, err := New([]TempoPoint{
		{Time: 0, BPM: 120, Interp: Linear},
		{Time: 4, BPM: 90, Interp: Hold},
		{Time: 8, BPM: 90, Interp: Linear},
		{Time: 12, BPM: 180, Interp: Hold},
	})
	require.NoError(t, err)

	for _, seconds := range []float64{0, 0.1, 1, 3.9999, 4, 5.5, 8, 9.3, 12, 15, 100} {
		beats := tl.SecondsToBeats(seconds)
		back := tl.BeatsToSeconds(beats)
		assert.InDeltaf(t, seconds, back, 1e-6, "identity broken at %vs (beats=%v)", seconds, beats)
	}
	for _, beats := range []float64{0, 0.5, 2, 7.9, 8, 12.345, 60} {
		seconds := tl.BeatsToSeconds(beats)
		back := tl.SecondsToBeats(seconds)
		assert.InDeltaf(t, beats, back, 1e-6, "identity broken at beat %v", beats)
	}
}

func TestMonotonicBeats(t *testing.T) {
	tl, err := New([]TempoPoint{
		{Time: 0, BPM: 200, Interp: Linear},
		{Time: 3, BPM: 40, Interp: Linear},
		{Time: 6, BPM: 150, Interp: Hold},
	})
	require.NoError(t, err)

	prev := math.Inf(-1)
	for s := 0.0; s <= 8.0; s += 0.05 {
		b := tl.SecondsToBeats(s)
		assert.Greater(t, b, prev)
		prev = b
	}
}

func TestNewFromBeats(t *testing.T) {
	// Hold at 120 for 8 beats, then 60. Beat 8 lands at 4s.
	tl, err := NewFromBeats([]TempoPoint{
		{Time: 0, BPM: 120, Interp: Hold},
		{Time: 8, BPM: 60, Interp: Hold},
	})
	require.NoError(t, err)

	pts := tl.Points()
	require.Len(t, pts, 2)
	assert.InDelta(t, 0.0, pts[0].Time, 1e-9)
	assert.InDelta(t, 4.0, pts[1].Time, 1e-9)
	assert.InDelta(t, 8.0, tl.SecondsToBeats(4), 1e-9)
	assert.InDelta(t, 9.0, tl.SecondsToBeats(5), 1e-9)
}

func TestNewFromBeatsLinear(t *testing.T) {
	// A ramp from 60 to 120 covering 15 beats takes 10 seconds, since the
	// average tempo over it is 90 BPM.
	tl, err := NewFromBeats([]TempoPoint{
		{Time: 0, BPM: 60, Interp: Linear},
		{Time: 15, BPM: 120, Interp: Hold},
	})
	require.NoError(t, err)

	pts := tl.Points()
	require.Len(t, pts, 2)
	assert.InDelta(t, 10.0, pts[1].Time, 1e-9)
	assert.InDelta(t, 15.0, tl.SecondsToBeats(10), 1e-9)
}

func TestNewFromBeatsLeadIn(t *testing.T) {
	tl, err := NewFromBeats([]TempoPoint{
		{Time: 4, BPM: 120, Interp: Hold},
		{Time: 8, BPM: 60, Interp: Hold},
	})
	require.NoError(t, err)

	// The stretch before the first explicit point runs at its tempo.
	pts := tl.Points()
	require.Len(t, pts, 3)
	assert.InDelta(t, 2.0, pts[1].Time, 1e-9)
	assert.InDelta(t, 4.0, pts[2].Time, 1e-9)
}

func TestNewFromBeatsValidation(t *testing.T) {
	_, err := NewFromBeats(nil)
	require.Error(t, err)

	_, err = NewFromBeats([]TempoPoint{{Time: 0, BPM: -3}})
	require.Error(t, err)

	_, err = NewFromBeats([]TempoPoint{{Time: 2, BPM: 120}, {Time: 2, BPM: 140}})
	require.Error(t, err)
}

func TestTimeMap(t *testing.T) {
	m := NewTimeMap(Constant(120))
	assert.Equal(t, TimeBeats, m.Arrangement)

	assert.InDelta(t, 2.0, m.ToSeconds(TimeBeats, 4), 1e-9)
	assert.InDelta(t, 4.0, m.ToSeconds(TimeSeconds, 4), 1e-9)
	assert.InDelta(t, 4.0, m.FromSeconds(TimeBeats, 2), 1e-9)
	assert.InDelta(t, 2.0, m.FromSeconds(TimeSeconds, 2), 1e-9)
}
