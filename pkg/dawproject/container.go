package dawproject

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strings"
	"time"
)

// Fixed entry names inside a .dawproject container.
const (
	ProjectFile  = "project.xml"
	MetadataFile = "metadata.xml"
)

// Writer assembles a .dawproject container. Media and preset entries are
// streamed in while the conversion runs; the XML documents are written once
// the object graph is complete, then the writer is closed.
type Writer struct {
	zw    *zip.Writer
	names map[string]bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{zw: zip.NewWriter(w), names: make(map[string]bool)}
}

// Add copies src into the container under the given path. Adding the same
// path twice is a no-op, so several clips may reference one file. Add is
// the sink half of the media provider contract.
func (w *Writer) Add(id string, src io.Reader) error {
	if w.names[id] {
		return nil
	}
	entry, err := w.newEntry(id)
	if err != nil {
		return err
	}
	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("failed to embed %s: %w", id, err)
	}
	w.names[id] = true
	return nil
}

// WriteProject marshals project.xml into the container.
func (w *Writer) WriteProject(project *Project) error {
	if project.Version == "" {
		project.Version = Version
	}
	entry, err := w.newEntry(ProjectFile)
	if err != nil {
		return err
	}
	return writeXML(entry, project)
}

// WriteMetadata marshals metadata.xml into the container.
func (w *Writer) WriteMetadata(meta *MetaData) error {
	entry, err := w.newEntry(MetadataFile)
	if err != nil {
		return err
	}
	return writeXML(entry, meta)
}

// Close flushes the ZIP directory. The underlying writer is not closed.
func (w *Writer) Close() error {
	return w.zw.Close()
}

func (w *Writer) newEntry(name string) (io.Writer, error) {
	header := &zip.FileHeader{
		Name:     name,
		Modified: time.Now(),
		Method:   zip.Deflate,
	}
	entry, err := w.zw.CreateHeader(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create container entry %s: %w", name, err)
	}
	return entry, nil
}

var emptyElementRegex = regexp.MustCompile(`<(\w+)([^>]*?)></(\w+)>`)

// writeXML renders a document the way DAW exports look: XML header, two
// space indent, empty elements collapsed to the self-closing form.
func writeXML(w io.Writer, doc any) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	encoder := xml.NewEncoder(&buf)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode XML: %w", err)
	}
	buf.WriteByte('\n')

	out := emptyElementRegex.ReplaceAllStringFunc(buf.String(), func(match string) string {
		sub := emptyElementRegex.FindStringSubmatch(match)
		if len(sub) < 4 || sub[1] != sub[3] {
			return match
		}
		return "<" + sub[1] + sub[2] + "/>"
	})

	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// Reader reads a .dawproject container.
type Reader struct {
	zr     *zip.Reader
	closer io.Closer
}

// Open opens the container file at path. Close releases it.
func Open(path string) (*Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %s: %w", path, err)
	}
	return &Reader{zr: &rc.Reader, closer: rc}, nil
}

// NewReader reads a container from an in-memory or seekable source.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read container: %w", err)
	}
	return &Reader{zr: zr}, nil
}

func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Project unmarshals project.xml.
func (r *Reader) Project() (*Project, error) {
	data, err := r.readEntry(ProjectFile)
	if err != nil {
		return nil, err
	}
	var project Project
	if err := xml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
	}
	return &project, nil
}

// Metadata unmarshals metadata.xml. A container without one yields nil,
// since the entry is optional.
func (r *Reader) Metadata() (*MetaData, error) {
	data, err := r.readEntry(MetadataFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta MetaData
	if err := xml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", MetadataFile, err)
	}
	return &meta, nil
}

// Stream opens an embedded file by container path. Stream is the source
// half of the media provider contract.
func (r *Reader) Stream(id string) (io.ReadCloser, error) {
	f, err := r.zr.Open(strings.TrimPrefix(id, "./"))
	if err != nil {
		return nil, fmt.Errorf("embedded file %s: %w", id, err)
	}
	return f, nil
}

func (r *Reader) readEntry(name string) ([]byte, error) {
	f, err := r.zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("container entry %s: %w", name, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}
