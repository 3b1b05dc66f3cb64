package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/git-moss/ProjectConverter-sub000/pkg/timing"
)

func TestReaperColor(t *testing.T) {
	tests := []struct {
		name  string
		value int
		want  string
	}{
		{"red", customColorBit | 0x0000ff, "#ff0000"},
		{"green", customColorBit | 0x00ff00, "#00ff00"},
		{"blue", customColorBit | 0xff0000, "#0000ff"},
		{"mixed", customColorBit | 0x996633, "#336699"},
		{"default color", 0, ""},
		{"no custom bit", 0x336699, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reaperColor(tt.value))
		})
	}
}

func TestColorValue(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want int
	}{
		{"mixed", "#336699", customColorBit | 0x996633},
		{"white", "#ffffff", customColorBit | 0xffffff},
		{"black", "#000000", customColorBit},
		{"empty", "", 0},
		{"missing hash", "336699", 0},
		{"short", "#fff", 0},
		{"not hex", "#zzzzzz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, colorValue(tt.hex))
		})
	}
}

func TestColorRoundTrip(t *testing.T) {
	for _, v := range []int{customColorBit, customColorBit | 0x996633, customColorBit | 0xffffff} {
		assert.Equal(t, v, colorValue(reaperColor(v)))
	}
}

func TestPanValue(t *testing.T) {
	assert.Equal(t, 0.0, panValue(-1))
	assert.Equal(t, 0.5, panValue(0))
	assert.Equal(t, 1.0, panValue(1))

	for _, p := range []float64{-1, -0.25, 0, 0.5, 1} {
		assert.Equal(t, p, reaperPan(panValue(p)))
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{120, "120"},
		{0.5, "0.5"},
		{2.0, "2"},
		{-0.25, "-0.25"},
		{139.65, "139.65"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFloat(tt.value))
	}
}

func TestTimeBaseNames(t *testing.T) {
	assert.Equal(t, "beats", timeUnitName(timing.TimeBeats))
	assert.Equal(t, "seconds", timeUnitName(timing.TimeSeconds))

	assert.Equal(t, timing.TimeBeats, timeBaseOf("beats", timing.TimeSeconds))
	assert.Equal(t, timing.TimeSeconds, timeBaseOf("seconds", timing.TimeBeats))
	assert.Equal(t, timing.TimeBeats, timeBaseOf("", timing.TimeBeats))
	assert.Equal(t, timing.TimeSeconds, timeBaseOf("unknown", timing.TimeSeconds))
}
