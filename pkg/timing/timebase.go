package timing

// TimeBase declares whether a lane of the interchange project measures
// positions in wall-clock seconds or in musical beats. A project declares
// it twice: once for the arrangement and once for automation envelopes,
// and the two need not agree.
type TimeBase int

const (
	TimeSeconds TimeBase = iota
	TimeBeats
)

// TimeMap couples a tempo timeline with the time bases declared by a
// project. All conversions funnel through it so both interpretations read
// the same tempo map.
type TimeMap struct {
	Timeline    *Timeline
	Arrangement TimeBase
	Automation  TimeBase
}

// NewTimeMap builds a beat-based time map over the given timeline,
// matching the interchange default when a project declares no time unit.
func NewTimeMap(tl *Timeline) *TimeMap {
	return &TimeMap{Timeline: tl, Arrangement: TimeBeats, Automation: TimeBeats}
}

// ToSeconds converts a value in the given base to seconds
func (m *TimeMap) ToSeconds(base TimeBase, v float64) float64 {
	if base == TimeSeconds {
		return v
	}
	return m.Timeline.BeatsToSeconds(v)
}

// FromSeconds converts seconds to a value in the given base
func (m *TimeMap) FromSeconds(base TimeBase, seconds float64) float64 {
	if base == TimeSeconds {
		return seconds
	}
	return m.Timeline.SecondsToBeats(seconds)
}
