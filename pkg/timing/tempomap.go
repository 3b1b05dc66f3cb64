// Package timing converts between musical beats and wall-clock seconds
// under a tempo map that may contain stepped and ramped tempo changes.
package timing

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Interpolation describes how tempo moves from a point to its successor.
type Interpolation int

const (
	// Hold keeps the tempo constant until the next point.
	Hold Interpolation = iota
	// Linear ramps the tempo linearly to the next point.
	Linear
)

// TempoPoint is one tempo automation point on the project timeline.
type TempoPoint struct {
	Time   float64 // seconds, monotonically increasing
	BPM    float64
	Interp Interpolation
}

// Timeline is an ordered, never-empty tempo point sequence. The tempo
// before the first point and after the last one is constant.
type Timeline struct {
	points []TempoPoint
	// beats[i] is the beat position of points[i], precomputed once
	beats []float64
}

// Constant builds a timeline with a single fixed tempo, the shape every
// project without tempo automation reduces to.
func Constant(bpm float64) *Timeline {
	t, _ := New([]TempoPoint{{Time: 0, BPM: bpm, Interp: Hold}})
	return t
}

// New builds a timeline from tempo points. Points must be non-empty with
// strictly increasing times and positive tempos; a first point after time
// zero is backed by an implicit hold at its tempo.
func New(points []TempoPoint) (*Timeline, error) {
	if len(points) == 0 {
		return nil, errors.New("timing: tempo timeline must have at least one point")
	}
	pts := make([]TempoPoint, len(points))
	copy(pts, points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time < pts[j].Time })
	for i, p := range pts {
		if p.BPM <= 0 {
			return nil, fmt.Errorf("timing: point %d has non-positive tempo %v", i, p.BPM)
		}
		if i > 0 && p.Time == pts[i-1].Time {
			return nil, fmt.Errorf("timing: duplicate tempo point at %vs", p.Time)
		}
	}
	if pts[0].Time > 0 {
		pts = append([]TempoPoint{{Time: 0, BPM: pts[0].BPM, Interp: Hold}}, pts...)
	}
	t := &Timeline{points: pts, beats: make([]float64, len(pts))}
	for i := 1; i < len(pts); i++ {
		t.beats[i] = t.beats[i-1] + segmentBeats(pts[i-1], pts[i], pts[i].Time)
	}
	return t, nil
}

// NewFromBeats builds a timeline from tempo points whose Time field is
// a beat position rather than seconds. Beat deltas convert to seconds
// segment by segment under the tempo in force, so the resulting
// timeline maps the given beats back onto the given positions.
func NewFromBeats(points []TempoPoint) (*Timeline, error) {
	if len(points) == 0 {
		return nil, errors.New("timing: tempo timeline must have at least one point")
	}
	pts := make([]TempoPoint, len(points))
	copy(pts, points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time < pts[j].Time })
	if pts[0].Time > 0 {
		pts = append([]TempoPoint{{Time: 0, BPM: pts[0].BPM, Interp: Hold}}, pts...)
	}
	out := make([]TempoPoint, len(pts))
	var sec float64
	for i, p := range pts {
		if p.BPM <= 0 {
			return nil, fmt.Errorf("timing: point %d has non-positive tempo %v", i, p.BPM)
		}
		if i > 0 {
			prev := pts[i-1]
			db := p.Time - prev.Time
			if db <= 0 {
				return nil, fmt.Errorf("timing: duplicate tempo point at beat %v", p.Time)
			}
			if prev.Interp == Hold {
				sec += db * 60 / prev.BPM
			} else {
				// Tempo linear in time: beats over the segment equal
				// dt times the average of the boundary tempos.
				sec += db * 120 / (prev.BPM + p.BPM)
			}
		}
		out[i] = TempoPoint{Time: sec, BPM: p.BPM, Interp: p.Interp}
	}
	return New(out)
}

// Points returns the normalized tempo points
func (t *Timeline) Points() []TempoPoint {
	return t.points
}

// Constant reports whether the timeline holds a single unchanging tempo
func (t *Timeline) Constant() bool {
	if len(t.points) == 1 {
		return true
	}
	for _, p := range t.points[1:] {
		if p.BPM != t.points[0].BPM {
			return false
		}
	}
	return true
}

// TempoAt returns the instantaneous tempo in BPM at the given time
func (t *Timeline) TempoAt(seconds float64) float64 {
	i := t.segmentAt(seconds)
	p := t.points[i]
	if i == len(t.points)-1 || p.Interp == Hold {
		return p.BPM
	}
	next := t.points[i+1]
	f := (seconds - p.Time) / (next.Time - p.Time)
	return p.BPM + (next.BPM-p.BPM)*f
}

// SecondsToBeats converts a project time to its beat position by
// integrating beats-per-second across the tempo segments.
func (t *Timeline) SecondsToBeats(seconds float64) float64 {
	if seconds <= 0 {
		return seconds * t.points[0].BPM / 60
	}
	i := t.segmentAt(seconds)
	return t.beats[i] + segmentBeats(t.points[i], t.nextOrSelf(i), seconds)
}

// BeatsToSeconds is the inverse of SecondsToBeats
func (t *Timeline) BeatsToSeconds(beats float64) float64 {
	if beats <= 0 {
		return beats * 60 / t.points[0].BPM
	}
	i := sort.Search(len(t.beats), func(k int) bool { return t.beats[k] > beats }) - 1
	p := t.points[i]
	remaining := beats - t.beats[i]
	if i == len(t.points)-1 || p.Interp == Hold {
		return p.Time + remaining*60/p.BPM
	}
	next := t.points[i+1]
	slope := (next.BPM - p.BPM) / (next.Time - p.Time)
	if math.Abs(slope) < 1e-12 {
		return p.Time + remaining*60/p.BPM
	}
	// Solve (slope/2)·dt² + bpm·dt − 60·remaining = 0 for dt ≥ 0.
	disc := p.BPM*p.BPM + 2*slope*60*remaining
	if disc < 0 {
		disc = 0
	}
	dt := (-p.BPM + math.Sqrt(disc)) / slope
	return p.Time + dt
}

// segmentAt returns the index of the point whose segment covers the time
func (t *Timeline) segmentAt(seconds float64) int {
	i := sort.Search(len(t.points), func(k int) bool { return t.points[k].Time > seconds }) - 1
	if i < 0 {
		return 0
	}
	return i
}

func (t *Timeline) nextOrSelf(i int) TempoPoint {
	if i+1 < len(t.points) {
		return t.points[i+1]
	}
	return t.points[i]
}

// segmentBeats integrates beats from p.Time to end (clamped to next.Time
// for ramped segments) under p's interpolation mode.
func segmentBeats(p, next TempoPoint, end float64) float64 {
	dt := end - p.Time
	if dt <= 0 {
		return 0
	}
	if p.Interp == Hold || next.Time <= p.Time || next.BPM == p.BPM {
		return dt * p.BPM / 60
	}
	// Ramp: average of the boundary tempos over the partial segment.
	f := dt / (next.Time - p.Time)
	if f > 1 {
		f = 1
	}
	endBPM := p.BPM + (next.BPM-p.BPM)*f
	return (next.Time - p.Time) * f * (p.BPM + endBPM) / 2 / 60
}
