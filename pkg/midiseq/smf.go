package midiseq

import (
	"fmt"
	"io"

	"gitlab.com/gomidi/midi/v2/smf"
)

// WriteSMF renders the sequences as one standard MIDI file, one track
// per sequence. The tempo meta event goes on the first track; all
// sequences share the first one's resolution.
func WriteSMF(w io.Writer, seqs []*Sequence, bpm float64) error {
	ppq := int64(DefaultPPQ)
	if len(seqs) > 0 {
		ppq = seqs[0].PPQ
	}

	doc := smf.New()
	doc.TimeFormat = smf.MetricTicks(uint16(ppq))

	if len(seqs) == 0 {
		var track smf.Track
		track.Add(0, smf.MetaTempo(bpm))
		track.Close(0)
		if err := doc.Add(track); err != nil {
			return fmt.Errorf("building MIDI track: %w", err)
		}
	}
	for i, seq := range seqs {
		var track smf.Track
		if i == 0 {
			track.Add(0, smf.MetaTempo(bpm))
		}
		for _, ev := range seq.Events {
			track.Add(uint32(ev.Delta), ev.Message())
		}
		track.Close(0)
		if err := doc.Add(track); err != nil {
			return fmt.Errorf("building MIDI track %d: %w", i, err)
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("writing MIDI file: %w", err)
	}
	return nil
}

// ReadSMF parses a standard MIDI file into one sequence per track that
// carries channel events. The second result is the file's first tempo,
// or 120 when it declares none.
func ReadSMF(r io.Reader) ([]*Sequence, float64, error) {
	doc, err := smf.ReadFrom(r)
	if err != nil {
		return nil, 0, fmt.Errorf("reading MIDI file: %w", err)
	}

	ppq := int64(DefaultPPQ)
	if mt, ok := doc.TimeFormat.(smf.MetricTicks); ok {
		ppq = int64(mt.Resolution())
	}

	bpm := 120.0
	haveTempo := false
	var seqs []*Sequence
	for _, track := range doc.Tracks {
		seq := &Sequence{PPQ: ppq}
		var tick, last int64
		for _, tev := range track {
			tick += int64(tev.Delta)
			msg := tev.Message

			var tempo float64
			if msg.GetMetaTempo(&tempo) {
				if !haveTempo {
					bpm = tempo
					haveTempo = true
				}
				continue
			}
			// Channel messages only; meta and system events carry no
			// note or expression data.
			if len(msg) < 2 || msg[0] < 0x80 || msg[0] >= 0xF0 {
				continue
			}
			ev := Event{Delta: tick - last, Status: msg[0], Data1: msg[1]}
			if len(msg) > 2 {
				ev.Data2 = msg[2]
			}
			seq.Events = append(seq.Events, ev)
			last = tick
		}
		if len(seq.Events) == 0 {
			continue
		}
		seqs = append(seqs, seq)
	}
	return seqs, bpm, nil
}
