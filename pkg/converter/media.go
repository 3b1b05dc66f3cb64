package converter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// MediaSource streams referenced media (audio files, embedded presets)
// out of the side being read. The dawproject container reader satisfies
// it directly.
type MediaSource interface {
	Stream(id string) (io.ReadCloser, error)
}

// MediaSink receives media produced while converting. The dawproject
// container writer satisfies it directly.
type MediaSink interface {
	Add(id string, src io.Reader) error
}

// DirProvider resolves media against a directory, for the REAPER side of
// a conversion: Stream opens project-relative or absolute paths, Add
// writes relative paths below the root.
type DirProvider struct {
	Root string
}

// Stream opens the file behind id. Absolute paths are opened as is,
// everything else is resolved against the root, the way REAPER resolves
// FILE references against the project directory.
func (p *DirProvider) Stream(id string) (io.ReadCloser, error) {
	path := filepath.FromSlash(strings.TrimPrefix(id, "./"))
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Root, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("media file %s: %w", id, err)
	}
	return f, nil
}

// Add writes src below the root, creating sub-directories as needed. The
// id must stay inside the root.
func (p *DirProvider) Add(id string, src io.Reader) error {
	rel := filepath.FromSlash(strings.TrimPrefix(id, "./"))
	if filepath.IsAbs(rel) {
		return fmt.Errorf("media path %q must be relative", id)
	}
	clean := filepath.Clean(rel)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("media path %q leaves the output directory", id)
	}
	path := filepath.Join(p.Root, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create media file %s: %w", id, err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return fmt.Errorf("failed to write media file %s: %w", id, err)
	}
	return f.Close()
}
