package converter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.False(t, opts.LenientMidi)
	assert.False(t, opts.ArrangementBeats)
	assert.False(t, opts.AutomationBeats)
	assert.Equal(t, 960, opts.TicksPerQuarter)
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte("lenientMidi: true\narrangementBeats: true\nticksPerQuarter: 480\n"), 0644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.True(t, opts.LenientMidi)
	assert.True(t, opts.ArrangementBeats)
	assert.False(t, opts.AutomationBeats)
	assert.Equal(t, 480, opts.TicksPerQuarter)
}

func TestLoadOptionsEmptyPath(t *testing.T) {
	opts, err := LoadOptions("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}

func TestLoadOptionsMissingFile(t *testing.T) {
	opts, err := LoadOptions(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions(), opts)
}

func TestLoadOptionsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte("ticksPerQuarter: [broken"), 0644))

	_, err := LoadOptions(path)
	require.Error(t, err)
}

func TestLoadOptionsClampsResolution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(path, []byte("ticksPerQuarter: -10\n"), 0644))

	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.Equal(t, 960, opts.TicksPerQuarter)
}
