package converter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options tune a conversion run. The zero value plus DefaultOptions'
// resolution is what the CLI uses without a settings file.
type Options struct {
	// LenientMidi drops orphan note-offs and never-ended notes instead
	// of failing the conversion.
	LenientMidi bool `yaml:"lenientMidi"`
	// ArrangementBeats declares arrangement positions (clips, markers)
	// in beats instead of seconds when writing a dawproject.
	ArrangementBeats bool `yaml:"arrangementBeats"`
	// AutomationBeats does the same for automation envelope positions.
	AutomationBeats bool `yaml:"automationBeats"`
	// TicksPerQuarter is the MIDI resolution for written REAPER sources.
	TicksPerQuarter int `yaml:"ticksPerQuarter"`
}

// DefaultOptions returns the options used when no settings file is given.
func DefaultOptions() Options {
	return Options{TicksPerQuarter: 960}
}

// LoadOptions reads a YAML settings file. An empty path or a missing
// file yields the defaults; a present but broken file is an error.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	if path == "" {
		return opts, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return opts, nil
	}
	if err != nil {
		return opts, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if opts.TicksPerQuarter <= 0 {
		opts.TicksPerQuarter = DefaultOptions().TicksPerQuarter
	}
	return opts, nil
}
