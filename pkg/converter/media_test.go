package converter

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirProviderStream(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "take.wav"), []byte("audio"), 0644))

	p := &DirProvider{Root: dir}
	rc, err := p.Stream("take.wav")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, []byte("audio"), data)

	// "./" prefixed and absolute references resolve too.
	rc, err = p.Stream("./take.wav")
	require.NoError(t, err)
	rc.Close()
	rc, err = p.Stream(filepath.Join(dir, "take.wav"))
	require.NoError(t, err)
	rc.Close()

	_, err = p.Stream("missing.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.wav")
}

func TestDirProviderAdd(t *testing.T) {
	dir := t.TempDir()
	p := &DirProvider{Root: dir}

	require.NoError(t, p.Add("audio/loop.wav", strings.NewReader("bytes")))

	data, err := os.ReadFile(filepath.Join(dir, "audio", "loop.wav"))
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))
}

func TestDirProviderAddRejectsEscapes(t *testing.T) {
	p := &DirProvider{Root: t.TempDir()}

	require.Error(t, p.Add("../evil.wav", strings.NewReader("x")))
	require.Error(t, p.Add("/abs/evil.wav", strings.NewReader("x")))
	require.Error(t, p.Add("audio/../../evil.wav", strings.NewReader("x")))
}
