// Package midiseq converts REAPER's in-project MIDI event lists between
// their delta-tick form and note/expression content, and bridges both to
// standard MIDI files.
package midiseq

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/git-moss/ProjectConverter-sub000/pkg/rpp"
)

// DefaultPPQ is REAPER's MIDI resolution when a source declares none.
const DefaultPPQ = 960

// Channel-message status nibbles.
const (
	StatusNoteOff         = 0x80
	StatusNoteOn          = 0x90
	StatusPolyPressure    = 0xA0
	StatusController      = 0xB0
	StatusProgramChange   = 0xC0
	StatusChannelPressure = 0xD0
	StatusPitchBend       = 0xE0
)

// CCAllNotesOff is the controller number REAPER writes as the final event
// of every in-project MIDI source.
const CCAllNotesOff = 0x7B

// MalformedMidiError reports event data that cannot be decoded, such as a
// note-off with no matching note-on.
type MalformedMidiError struct {
	Tick   int64 // absolute tick of the offending event, -1 when unknown
	Detail string
}

func (e *MalformedMidiError) Error() string {
	if e.Tick >= 0 {
		return fmt.Sprintf("midi: tick %d: %s", e.Tick, e.Detail)
	}
	return "midi: " + e.Detail
}

// Event is one delta-timed MIDI event of an in-project source. Status and
// both data bytes are stored raw; two-byte message kinds (program change,
// channel pressure) leave Data2 zero.
type Event struct {
	Delta    int64
	Status   byte
	Data1    byte
	Data2    byte
	Muted    bool
	Selected bool
}

// Kind returns the status high nibble, one of the Status constants.
func (ev Event) Kind() byte { return ev.Status & 0xF0 }

// Channel returns the status low nibble.
func (ev Event) Channel() uint8 { return ev.Status & 0x0F }

// Message returns the raw MIDI message bytes. Program change and channel
// pressure are two-byte messages; every other kind carries both data
// bytes.
func (ev Event) Message() []byte {
	switch ev.Kind() {
	case StatusProgramChange, StatusChannelPressure:
		return []byte{ev.Status, ev.Data1}
	}
	return []byte{ev.Status, ev.Data1, ev.Data2}
}

// ParseEventLeaf decodes one E/e/Em/em leaf. The leaf name carries the
// selected (lowercase) and muted (m suffix) flags; parameters are the
// delta tick count followed by two or three hex message bytes.
func ParseEventLeaf(el *rpp.Element) (Event, error) {
	ev := Event{
		Muted:    el.Name == rpp.TagMidiEventMuted || el.Name == rpp.TagMidiEventMutedSel,
		Selected: el.Name == rpp.TagMidiEventSel || el.Name == rpp.TagMidiEventMutedSel,
	}
	if len(el.Params) < 3 {
		return ev, &MalformedMidiError{Tick: -1, Detail: fmt.Sprintf("event leaf %q has %d parameters, need at least 3", el.Name, len(el.Params))}
	}
	delta, err := strconv.ParseInt(el.Param(0), 10, 64)
	if err != nil || delta < 0 {
		return ev, &MalformedMidiError{Tick: -1, Detail: fmt.Sprintf("bad event delta %q", el.Param(0))}
	}
	ev.Delta = delta
	for i := 1; i < len(el.Params) && i <= 3; i++ {
		v, err := strconv.ParseUint(el.Param(i), 16, 8)
		if err != nil {
			return ev, &MalformedMidiError{Tick: -1, Detail: fmt.Sprintf("bad event byte %q", el.Param(i))}
		}
		switch i {
		case 1:
			ev.Status = byte(v)
		case 2:
			ev.Data1 = byte(v)
		case 3:
			ev.Data2 = byte(v) // absent on two-byte messages, stays zero
		}
	}
	return ev, nil
}

// Leaf renders the event as an RPP leaf element, three hex bytes always.
func (ev Event) Leaf() *rpp.Element {
	name := rpp.TagMidiEvent
	switch {
	case ev.Muted && ev.Selected:
		name = rpp.TagMidiEventMutedSel
	case ev.Muted:
		name = rpp.TagMidiEventMuted
	case ev.Selected:
		name = rpp.TagMidiEventSel
	}
	return rpp.NewLeaf(name,
		strconv.FormatInt(ev.Delta, 10),
		fmt.Sprintf("%02x", ev.Status),
		fmt.Sprintf("%02x", ev.Data1),
		fmt.Sprintf("%02x", ev.Data2),
	)
}

// Sequence is the raw event list of one in-project MIDI source, in
// declaration order.
type Sequence struct {
	PPQ    int64
	Events []Event
}

// FromChunk extracts the sequence stored in a <SOURCE MIDI chunk. The
// resolution comes from the HASDATA leaf (REAPER's default when absent);
// event leaves are read in order, all other leaves are ignored.
func FromChunk(src *rpp.Element) (*Sequence, error) {
	seq := &Sequence{PPQ: DefaultPPQ}
	if hd := src.Find(rpp.TagHasData); hd != nil {
		ppq := hd.IntParam(1, DefaultPPQ)
		if ppq <= 0 {
			return nil, &MalformedMidiError{Tick: -1, Detail: fmt.Sprintf("bad resolution %q", hd.Param(1))}
		}
		seq.PPQ = int64(ppq)
	}
	for _, child := range src.Children {
		if child.Chunk || !rpp.IsMidiEvent(child.Name) {
			continue
		}
		ev, err := ParseEventLeaf(child)
		if err != nil {
			return nil, err
		}
		seq.Events = append(seq.Events, ev)
	}
	return seq, nil
}

// Chunk renders the sequence as a <SOURCE MIDI chunk: a HASDATA leaf
// followed by one event leaf per event.
func (s *Sequence) Chunk() *rpp.Element {
	chunk := rpp.NewChunk(rpp.TagSource, rpp.SourceMidi)
	chunk.AddLeaf(rpp.TagHasData, "1", strconv.FormatInt(s.PPQ, 10), "QN")
	for _, ev := range s.Events {
		chunk.Add(ev.Leaf())
	}
	return chunk
}

// LengthTicks returns the tick position of the last event
func (s *Sequence) LengthTicks() int64 {
	var t int64
	for _, ev := range s.Events {
		t += ev.Delta
	}
	return t
}

// Merge folds other's events into s at the given tick offset,
// rescaling ticks when the resolutions differ. Existing events sort
// before merged ones at equal ticks.
func (s *Sequence) Merge(other *Sequence, offset int64) {
	type timed struct {
		tick int64
		ev   Event
	}
	all := make([]timed, 0, len(s.Events)+len(other.Events))
	var tick int64
	for _, ev := range s.Events {
		tick += ev.Delta
		all = append(all, timed{tick, ev})
	}
	tick = 0
	for _, ev := range other.Events {
		tick += ev.Delta
		scaled := tick
		if other.PPQ != s.PPQ && other.PPQ > 0 {
			scaled = (tick*s.PPQ + other.PPQ/2) / other.PPQ
		}
		all = append(all, timed{offset + scaled, ev})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].tick < all[j].tick })

	s.Events = make([]Event, len(all))
	var last int64
	for i, t := range all {
		ev := t.ev
		ev.Delta = t.tick - last
		s.Events[i] = ev
		last = t.tick
	}
}
