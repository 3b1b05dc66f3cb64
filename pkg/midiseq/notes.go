package midiseq

import (
	"fmt"
	"math"
	"sort"
)

// Note is one paired note-on/note-off. Time and Duration are in quarter
// notes; Velocity and Release are scaled from 0..127 to 0..1.
type Note struct {
	Time     float64
	Duration float64
	Channel  uint8
	Key      uint8
	Velocity float64
	Release  float64
}

// ExpressionType classifies the non-note channel events that become
// automation point sequences.
type ExpressionType int

const (
	ExprController ExpressionType = iota
	ExprPolyPressure
	ExprChannelPressure
	ExprPitchBend
	ExprProgramChange
)

func (t ExpressionType) String() string {
	switch t {
	case ExprController:
		return "controller"
	case ExprPolyPressure:
		return "polyPressure"
	case ExprChannelPressure:
		return "channelPressure"
	case ExprPitchBend:
		return "pitchBend"
	case ExprProgramChange:
		return "programChange"
	}
	return fmt.Sprintf("ExpressionType(%d)", int(t))
}

// LaneKey identifies one expression point sequence. Index is the
// controller number for ExprController and the note key for
// ExprPolyPressure; -1 for the per-channel kinds.
type LaneKey struct {
	Type    ExpressionType
	Channel uint8
	Index   int
}

// Point is a single timed expression value. Time is in quarter notes;
// Value is 0..1 except for program changes, which keep the raw program
// number.
type Point struct {
	Time  float64
	Value float64
}

// Lane is the point sequence of one expression target.
type Lane struct {
	LaneKey
	Points []Point
}

// Content is the decoded form of a sequence: notes in completion order
// plus one lane per distinct expression target in first-appearance
// order.
type Content struct {
	Notes []Note
	Lanes []*Lane
}

// Decode pairs note events and accumulates expression points. A note-off
// (or zero-velocity note-on) ends the earliest still-open note with the
// same channel and key; with overlapping equal-key notes this pairing is
// ambiguous and kept as is. Orphan note-offs and note-ons left open at
// the end of the stream are an error unless lenient is set, in which
// case they are dropped.
func (s *Sequence) Decode(lenient bool) (*Content, error) {
	type openNote struct {
		tick     int64
		velocity byte
	}
	type noteKey struct {
		channel uint8
		key     uint8
	}

	ppq := float64(s.PPQ)
	content := &Content{}
	lanes := make(map[LaneKey]*Lane)
	addPoint := func(key LaneKey, tick int64, value float64) {
		l := lanes[key]
		if l == nil {
			l = &Lane{LaneKey: key}
			lanes[key] = l
			content.Lanes = append(content.Lanes, l)
		}
		l.Points = append(l.Points, Point{Time: float64(tick) / ppq, Value: value})
	}
	open := make(map[noteKey][]openNote)

	var tick int64
	for _, ev := range s.Events {
		tick += ev.Delta
		ch := ev.Channel()
		switch ev.Kind() {
		case StatusNoteOn:
			if ev.Data2 > 0 {
				k := noteKey{ch, ev.Data1}
				open[k] = append(open[k], openNote{tick: tick, velocity: ev.Data2})
				continue
			}
			fallthrough // velocity zero ends a note, release zero
		case StatusNoteOff:
			k := noteKey{ch, ev.Data1}
			starts := open[k]
			if len(starts) == 0 {
				if lenient {
					continue
				}
				return nil, &MalformedMidiError{Tick: tick, Detail: fmt.Sprintf("note-off without open note (channel %d key %d)", ch, ev.Data1)}
			}
			start := starts[0]
			open[k] = starts[1:]
			release := 0.0
			if ev.Kind() == StatusNoteOff {
				release = float64(ev.Data2) / 127
			}
			content.Notes = append(content.Notes, Note{
				Time:     float64(start.tick) / ppq,
				Duration: float64(tick-start.tick) / ppq,
				Channel:  ch,
				Key:      ev.Data1,
				Velocity: float64(start.velocity) / 127,
				Release:  release,
			})
		case StatusController:
			addPoint(LaneKey{ExprController, ch, int(ev.Data1)}, tick, float64(ev.Data2)/127)
		case StatusPolyPressure:
			addPoint(LaneKey{ExprPolyPressure, ch, int(ev.Data1)}, tick, float64(ev.Data2)/127)
		case StatusChannelPressure:
			addPoint(LaneKey{ExprChannelPressure, ch, -1}, tick, float64(ev.Data1)/127)
		case StatusPitchBend:
			raw := int(ev.Data2)<<7 | int(ev.Data1)
			addPoint(LaneKey{ExprPitchBend, ch, -1}, tick, float64(raw)/16383)
		case StatusProgramChange:
			addPoint(LaneKey{ExprProgramChange, ch, -1}, tick, float64(ev.Data1))
		}
	}

	if !lenient {
		for k, starts := range open {
			if len(starts) > 0 {
				return nil, &MalformedMidiError{Tick: starts[0].tick, Detail: fmt.Sprintf("note-on never ended (channel %d key %d)", k.channel, k.key)}
			}
		}
	}
	return content, nil
}

// Encode renders the content back to a delta-tick sequence. Events are
// ordered by tick with ties kept in build order: each note-off directly
// after its note-on, all notes before the expression lanes. The stream
// is closed by the all-notes-off controller event REAPER writes at the
// clip's nominal end.
func (c *Content) Encode(ppq int64, duration float64) *Sequence {
	type timed struct {
		tick int64
		ev   Event
	}
	tickOf := func(beats float64) int64 {
		return int64(math.Round(beats * float64(ppq)))
	}

	events := make([]timed, 0, 2*len(c.Notes)+1)
	for _, n := range c.Notes {
		ch := n.Channel & 0x0F
		events = append(events,
			timed{tickOf(n.Time), Event{Status: StatusNoteOn | ch, Data1: n.Key, Data2: dataByte(n.Velocity)}},
			timed{tickOf(n.Time + n.Duration), Event{Status: StatusNoteOff | ch, Data1: n.Key, Data2: dataByte(n.Release)}},
		)
	}
	for _, l := range c.Lanes {
		ch := l.Channel & 0x0F
		for _, p := range l.Points {
			var ev Event
			switch l.Type {
			case ExprController:
				ev = Event{Status: StatusController | ch, Data1: byte(l.Index & 0x7F), Data2: dataByte(p.Value)}
			case ExprPolyPressure:
				ev = Event{Status: StatusPolyPressure | ch, Data1: byte(l.Index & 0x7F), Data2: dataByte(p.Value)}
			case ExprChannelPressure:
				ev = Event{Status: StatusChannelPressure | ch, Data1: dataByte(p.Value)}
			case ExprPitchBend:
				raw := int(math.Round(p.Value * 16383))
				if raw < 0 {
					raw = 0
				} else if raw > 16383 {
					raw = 16383
				}
				ev = Event{Status: StatusPitchBend | ch, Data1: byte(raw & 0x7F), Data2: byte(raw >> 7)}
			case ExprProgramChange:
				prog := int(math.Round(p.Value))
				if prog < 0 {
					prog = 0
				} else if prog > 127 {
					prog = 127
				}
				ev = Event{Status: StatusProgramChange | ch, Data1: byte(prog)}
			}
			events = append(events, timed{tickOf(p.Time), ev})
		}
	}

	sort.SliceStable(events, func(i, j int) bool { return events[i].tick < events[j].tick })

	seq := &Sequence{PPQ: ppq, Events: make([]Event, 0, len(events)+1)}
	var last int64
	for _, t := range events {
		ev := t.ev
		ev.Delta = t.tick - last
		last = t.tick
		seq.Events = append(seq.Events, ev)
	}
	end := tickOf(duration)
	if end < last {
		end = last
	}
	seq.Events = append(seq.Events, Event{Delta: end - last, Status: StatusController, Data1: CCAllNotesOff})
	return seq
}

// dataByte scales a 0..1 value to a 7-bit data byte, clamping out-of-range
// input.
func dataByte(v float64) byte {
	n := int(math.Round(v * 127))
	if n < 0 {
		n = 0
	} else if n > 127 {
		n = 127
	}
	return byte(n)
}
