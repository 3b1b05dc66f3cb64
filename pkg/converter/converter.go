// Package converter translates DAW projects between REAPER's chunk text
// format and the DAWproject container format, with standard MIDI files
// as an import and export convenience.
package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/git-moss/ProjectConverter-sub000/pkg/dawproject"
	"github.com/git-moss/ProjectConverter-sub000/pkg/midiseq"
	"github.com/git-moss/ProjectConverter-sub000/pkg/rpp"
	"github.com/git-moss/ProjectConverter-sub000/pkg/timing"
)

// Format represents a project file format
type Format string

const (
	FormatReaper     Format = "reaper"
	FormatDawProject Format = "dawproject"
	FormatMIDI       Format = "midi"
	FormatUnknown    Format = "unknown"
)

// DetectFormat detects the format of a file based on its extension
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".rpp":
		return FormatReaper
	case ".dawproject":
		return FormatDawProject
	case ".mid", ".midi":
		return FormatMIDI
	default:
		return FormatUnknown
	}
}

// DetectFormatFromContent detects format from file content
func DetectFormatFromContent(data []byte) Format {
	if len(data) < 4 {
		return FormatUnknown
	}

	// Standard MIDI file signature
	if bytes.HasPrefix(data, []byte("MThd")) {
		return FormatMIDI
	}

	// A dawproject container is a ZIP archive
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return FormatDawProject
	}

	head := data
	if len(head) > 256 {
		head = head[:256]
	}
	if strings.HasPrefix(strings.TrimSpace(string(head)), "<"+rpp.RootTag) {
		return FormatReaper
	}
	return FormatUnknown
}

// Converter runs project file conversions. It carries only immutable
// configuration; every conversion gets a fresh run context, so one
// Converter serves any number of calls.
type Converter struct {
	opts Options
	log  *log.Logger
}

// New creates a Converter with the given options. A zero MIDI
// resolution falls back to the default.
func New(opts Options) *Converter {
	if opts.TicksPerQuarter <= 0 {
		opts.TicksPerQuarter = DefaultOptions().TicksPerQuarter
	}
	return &Converter{opts: opts}
}

// SetLogger redirects conversion notes, which default to stderr
func (c *Converter) SetLogger(l *log.Logger) {
	c.log = l
}

// ConvertFile converts a project file from one format to another. Both
// formats are detected from the file names, with a content sniff as
// fallback for the input.
func (c *Converter) ConvertFile(ctx context.Context, inputPath, outputPath string) error {
	inputFormat := DetectFormat(inputPath)
	outputFormat := DetectFormat(outputPath)

	if inputFormat == FormatUnknown {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		inputFormat = DetectFormatFromContent(data)
	}

	if outputFormat == FormatUnknown {
		return errors.New("cannot determine output format from filename")
	}

	switch {
	case inputFormat == FormatReaper && outputFormat == FormatDawProject:
		return c.ReaperToDawProject(ctx, inputPath, outputPath)
	case inputFormat == FormatDawProject && outputFormat == FormatReaper:
		return c.DawProjectToReaper(ctx, inputPath, outputPath)
	case inputFormat == FormatMIDI && outputFormat == FormatReaper:
		return c.MIDIToReaper(ctx, inputPath, outputPath)
	case inputFormat == FormatReaper && outputFormat == FormatMIDI:
		return c.ReaperToMIDI(ctx, inputPath, outputPath)
	default:
		return fmt.Errorf("unsupported conversion: %s to %s", inputFormat, outputFormat)
	}
}

// ReaperToDawProject converts a .rpp project into a dawproject
// container. Referenced audio and plugin states are embedded; media
// references resolve against the project directory.
func (c *Converter) ReaperToDawProject(ctx context.Context, inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	root, err := rpp.ParseProject(in)
	in.Close()
	if err != nil {
		return err
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	out := dawproject.NewWriter(outFile)

	cctx := newRunContext(ctx, c.opts, c.log)
	cctx.Source = &DirProvider{Root: filepath.Dir(inputPath)}
	cctx.Sink = out

	project, meta, err := ReadReaperProject(cctx, root)
	if err == nil {
		if meta.Title == "" {
			meta.Title = projectTitle(inputPath)
		}
		err = out.WriteProject(project)
	}
	if err == nil {
		err = out.WriteMetadata(meta)
	}
	if err == nil {
		err = out.Close()
	}
	if err == nil {
		return outFile.Close()
	}
	outFile.Close()
	os.Remove(outputPath)
	return err
}

// DawProjectToReaper converts a dawproject container into a .rpp
// project. Embedded audio lands next to the output file so the written
// references resolve.
func (c *Converter) DawProjectToReaper(ctx context.Context, inputPath, outputPath string) error {
	in, err := dawproject.Open(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()
	project, err := in.Project()
	if err != nil {
		return err
	}
	meta, err := in.Metadata()
	if err != nil {
		return err
	}

	cctx := newRunContext(ctx, c.opts, c.log)
	cctx.Source = in
	cctx.Sink = &DirProvider{Root: filepath.Dir(outputPath)}

	root, err := WriteReaperProject(cctx, project, meta)
	if err != nil {
		return err
	}
	return writeProjectFile(root, outputPath)
}

// MIDIToReaper imports a standard MIDI file as a .rpp project with one
// track per SMF track, each holding a single item starting at zero.
func (c *Converter) MIDIToReaper(ctx context.Context, inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	seqs, bpm, err := midiseq.ReadSMF(in)
	in.Close()
	if err != nil {
		return err
	}

	cctx := newRunContext(ctx, c.opts, c.log)
	root := rpp.NewChunk(rpp.RootTag, "0.1", "7.0", "0")
	root.AddLeaf(rpp.TagTempo, formatFloat(bpm), "4", "4")
	root.AddLeaf(rpp.TagMasterVol, "1", "0")

	for i, seq := range seqs {
		if err := cctx.Cancelled(); err != nil {
			return err
		}
		track := root.AddChunk(rpp.TagTrack, reaperGUID())
		track.AddLeaf(rpp.TagName, fmt.Sprintf("MIDI %d", i+1))
		track.AddLeaf(rpp.TagVolPan, "1", "0", "-1", "-1", "1")

		beats := float64(seq.LengthTicks()) / float64(seq.PPQ)
		item := track.AddChunk(rpp.TagItem)
		item.AddLeaf(rpp.TagPosition, "0")
		item.AddLeaf(rpp.TagLength, formatFloat(beats*60/bpm))
		item.AddLeaf(rpp.TagItemGUID, reaperGUID())
		item.Add(seq.Chunk())
	}
	return writeProjectFile(root, outputPath)
}

// ReaperToMIDI exports the MIDI items of a project as a standard MIDI
// file, one SMF track per project track. Items merge at their timeline
// position; a tempo envelope flattens to the starting tempo.
func (c *Converter) ReaperToMIDI(ctx context.Context, inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	root, err := rpp.ParseProject(in)
	in.Close()
	if err != nil {
		return err
	}

	cctx := newRunContext(ctx, c.opts, c.log)
	timeline := timing.Constant(floatLeaf(root, rpp.TagTempo, 0, 120))
	if env := root.Find(rpp.TagTempoEnv); env != nil && env.Chunk {
		if pts := tempoPoints(env); len(pts) > 0 {
			if tl, err := timing.New(pts); err == nil {
				timeline = tl
			}
		}
	}
	if !timeline.Constant() {
		cctx.Logf("tempo envelope flattened to the starting tempo")
	}
	bpm := timeline.TempoAt(0)

	ppq := int64(c.opts.TicksPerQuarter)
	var seqs []*midiseq.Sequence
	for _, track := range root.FindAll(rpp.TagTrack) {
		if err := cctx.Cancelled(); err != nil {
			return err
		}
		seq := &midiseq.Sequence{PPQ: ppq}
		for _, item := range track.FindAll(rpp.TagItem) {
			source := item.Find(rpp.TagSource)
			if source == nil || !source.Chunk || source.Param(0) != rpp.SourceMidi {
				continue
			}
			itemSeq, err := midiseq.FromChunk(source)
			if err != nil {
				return err
			}
			beats := timeline.SecondsToBeats(floatLeaf(item, rpp.TagPosition, 0, 0))
			seq.Merge(itemSeq, int64(beats*float64(ppq)+0.5))
		}
		if len(seq.Events) > 0 {
			seqs = append(seqs, seq)
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := midiseq.WriteSMF(out, seqs, bpm); err != nil {
		out.Close()
		os.Remove(outputPath)
		return err
	}
	return out.Close()
}

// GetSupportedConversions returns a list of supported conversion paths
func GetSupportedConversions() []string {
	return []string{
		"reaper -> dawproject",
		"dawproject -> reaper",
		"midi -> reaper",
		"reaper -> midi",
	}
}

// projectTitle derives a metadata title from the project file name
func projectTitle(inputPath string) string {
	return strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
}

// writeProjectFile renders a chunk tree to disk as CRLF project text
func writeProjectFile(root *rpp.Element, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := root.Write(f); err != nil {
		f.Close()
		os.Remove(outputPath)
		return err
	}
	return f.Close()
}
