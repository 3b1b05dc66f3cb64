package converter

import (
	"fmt"
	"strconv"

	"github.com/git-moss/ProjectConverter-sub000/pkg/dawproject"
	"github.com/git-moss/ProjectConverter-sub000/pkg/timing"
)

// REAPER stores native colors as Windows COLORREF values, 0x00BBGGRR,
// with bit 24 set when a custom color is assigned.
const customColorBit = 0x1000000

// reaperColor converts a PEAKCOL or MARKER color value to a #rrggbb
// string, empty when the value carries no custom color.
func reaperColor(v int) string {
	if v&customColorBit == 0 {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", v&0xff, (v>>8)&0xff, (v>>16)&0xff)
}

// colorValue converts a #rrggbb string to REAPER's native form, zero
// when the string does not parse.
func colorValue(hex string) int {
	if len(hex) != 7 || hex[0] != '#' {
		return 0
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0
	}
	r, g, b := (v>>16)&0xff, (v>>8)&0xff, v&0xff
	return int(b<<16|g<<8|r) | customColorBit
}

// panValue maps REAPER's -1..+1 pan position onto the normalized 0..1
// parameter range.
func panValue(reaper float64) float64 { return (reaper + 1) / 2 }

// reaperPan is the inverse of panValue
func reaperPan(normalized float64) float64 { return normalized*2 - 1 }

// formatFloat renders a chunk parameter value in the shortest plain
// decimal form that parses back to the same number. RPP never uses
// exponent notation.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// timeUnitName renders a time base as the schema's timeUnit attribute
func timeUnitName(b timing.TimeBase) string {
	if b == timing.TimeBeats {
		return dawproject.TimeUnitBeats
	}
	return dawproject.TimeUnitSeconds
}

// timeBaseOf reads a timeUnit attribute, falling back when absent or
// unrecognized
func timeBaseOf(name string, def timing.TimeBase) timing.TimeBase {
	switch name {
	case dawproject.TimeUnitBeats:
		return timing.TimeBeats
	case dawproject.TimeUnitSeconds:
		return timing.TimeSeconds
	}
	return def
}
