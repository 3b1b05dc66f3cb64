package converter

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/git-moss/ProjectConverter-sub000/pkg/dawproject"
	"github.com/git-moss/ProjectConverter-sub000/pkg/midiseq"
	"github.com/git-moss/ProjectConverter-sub000/pkg/rpp"
	"github.com/git-moss/ProjectConverter-sub000/pkg/rpp/vstchunk"
	"github.com/git-moss/ProjectConverter-sub000/pkg/timing"
)

// ReadReaperProject converts a parsed REAPER project tree into the
// interchange model. Audio files and plugin states referenced by the
// project are streamed from cctx.Source and embedded through cctx.Sink;
// devices and clips the converter cannot translate are logged and
// skipped, structural defects fail the run.
func ReadReaperProject(cctx *Context, root *rpp.Element) (*dawproject.Project, *dawproject.MetaData, error) {
	r := &reaperReader{
		cctx:  cctx,
		media: map[string]string{},
		taken: map[string]bool{},
	}
	return r.read(root)
}

// reaperReader holds the indexes of one REAPER to dawproject run.
type reaperReader struct {
	cctx    *Context
	project *dawproject.Project
	arr     *dawproject.Arrangement

	// masterID is the master channel every regular track routes to
	masterID string

	// media maps source file references to container paths, taken
	// guards against base-name collisions between distinct files
	media map[string]string
	taken map[string]bool
}

func (r *reaperReader) read(root *rpp.Element) (*dawproject.Project, *dawproject.MetaData, error) {
	if root.Name != rpp.RootTag {
		return nil, nil, &rpp.FormatError{Msg: fmt.Sprintf("root tag is %q, expected %q", root.Name, rpp.RootTag)}
	}
	r.arr = &dawproject.Arrangement{ID: r.cctx.NextID()}
	r.project = &dawproject.Project{
		Version:     dawproject.Version,
		Application: readApplication(root),
		Arrangement: r.arr,
	}
	r.readTempo(root)
	r.readMarkers(root)

	master, err := r.readMaster(root)
	if err != nil {
		return nil, nil, err
	}

	var infos []*TrackInfo
	for _, chunk := range root.FindAll(rpp.TagTrack) {
		if err := r.cctx.Cancelled(); err != nil {
			return nil, nil, err
		}
		info, err := r.readTrack(chunk)
		if err != nil {
			return nil, nil, err
		}
		infos = append(infos, info)
	}
	tracks, err := Unflatten(infos)
	if err != nil {
		return nil, nil, err
	}
	r.project.Structure.Tracks = append(tracks, master)
	fillTrackIDs(r.cctx, r.project.Structure.Tracks)

	meta := &dawproject.MetaData{Artist: stringLeaf(root, rpp.TagAuthor, 0)}
	return r.project, meta, nil
}

// readApplication names the producing DAW from the project header. The
// second root parameter is REAPER's version string, like
// "7.22/linux-x86_64".
func readApplication(root *rpp.Element) dawproject.Application {
	version := root.Param(1)
	if i := strings.IndexByte(version, '/'); i >= 0 {
		version = version[:i]
	}
	return dawproject.Application{Name: "REAPER", Version: version}
}

// readTempo builds the transport and the run's tempo timeline from the
// TEMPO leaf and, when present, the TEMPOENVEX envelope. The timeline
// drives every later seconds-to-beats conversion, so it is installed on
// the context before any position is read.
func (r *reaperReader) readTempo(root *rpp.Element) {
	bpm, num, denom := 120.0, 4, 4
	if leaf := root.Find(rpp.TagTempo); leaf != nil {
		bpm = leaf.FloatParam(0, 120)
		num = leaf.IntParam(1, 4)
		denom = leaf.IntParam(2, 4)
	}
	tempo := &dawproject.RealParameter{
		ID:    r.cctx.NextID(),
		Name:  "Tempo",
		Value: bpm,
		Unit:  dawproject.UnitBPM,
	}
	r.project.Transport = &dawproject.Transport{
		Tempo: tempo,
		TimeSignature: &dawproject.TimeSignatureParameter{
			ID:          r.cctx.NextID(),
			Numerator:   num,
			Denominator: denom,
		},
	}

	timeline := timing.Constant(bpm)
	automated := false
	if env := root.Find(rpp.TagTempoEnv); env != nil && env.Chunk {
		if pts := tempoPoints(env); len(pts) > 0 {
			tl, err := timing.New(pts)
			if err != nil {
				r.cctx.Logf("ignoring tempo envelope: %v", err)
			} else {
				timeline = tl
				automated = true
			}
		}
	}
	r.cctx.Times = &timing.TimeMap{
		Timeline:    timeline,
		Arrangement: timeBaseFor(r.cctx.opts.ArrangementBeats),
		Automation:  timeBaseFor(r.cctx.opts.AutomationBeats),
	}
	if automated {
		r.arr.TempoAutomation = r.tempoAutomation(timeline.Points(), tempo.ID)
	}
}

func timeBaseFor(beats bool) timing.TimeBase {
	if beats {
		return timing.TimeBeats
	}
	return timing.TimeSeconds
}

// tempoPoints reads a TEMPOENVEX envelope. Point times are seconds;
// shape 1 is a square step, every other shape degrades to a linear
// ramp.
func tempoPoints(env *rpp.Element) []timing.TempoPoint {
	var pts []timing.TempoPoint
	for _, pt := range env.FindAll(rpp.TagPoint) {
		interp := timing.Linear
		if pt.IntParam(2, 0) == 1 {
			interp = timing.Hold
		}
		pts = append(pts, timing.TempoPoint{
			Time:   pt.FloatParam(0, 0),
			BPM:    pt.FloatParam(1, 120),
			Interp: interp,
		})
	}
	return pts
}

// tempoAutomation renders the timeline as an automation lane aimed at
// the transport tempo parameter.
func (r *reaperReader) tempoAutomation(pts []timing.TempoPoint, tempoID string) *dawproject.Points {
	out := &dawproject.Points{
		ID:       r.cctx.NextID(),
		TimeUnit: timeUnitName(r.cctx.Times.Automation),
		Unit:     dawproject.UnitBPM,
		Target:   &dawproject.AutomationTarget{Parameter: tempoID},
	}
	for _, p := range pts {
		interp := dawproject.InterpolationLinear
		if p.Interp == timing.Hold {
			interp = dawproject.InterpolationHold
		}
		out.Points = append(out.Points, &dawproject.RealPoint{
			Time:          r.autoTime(p.Time),
			Value:         p.BPM,
			Interpolation: interp,
		})
	}
	return out
}

func (r *reaperReader) readMarkers(root *rpp.Element) {
	leaves := root.FindAll(rpp.TagMarker)
	if len(leaves) == 0 {
		return
	}
	markers := &dawproject.Markers{
		ID:       r.cctx.NextID(),
		TimeUnit: timeUnitName(r.cctx.Times.Arrangement),
	}
	for _, m := range leaves {
		markers.Markers = append(markers.Markers, &dawproject.Marker{
			Time:  r.arrTime(m.FloatParam(1, 0)),
			Name:  m.Param(2),
			Color: reaperColor(m.IntParam(4, 0)),
		})
	}
	r.arr.Markers = markers
}

// readMaster builds the master track from the project-level mixer
// leaves. It runs before the track loop so regular channels can route
// to its channel.
func (r *reaperReader) readMaster(root *rpp.Element) (*dawproject.Track, error) {
	channel := r.mixerChannel(dawproject.RoleMaster,
		floatLeaf(root, rpp.TagMasterVol, 0, 1),
		floatLeaf(root, rpp.TagMasterVol, 1, 0),
		intLeaf(root, rpp.TagMasterMute, 0, 0) != 0,
		intLeaf(root, rpp.TagMasterMute, 1, 0) != 0)
	r.masterID = channel.ID
	if fx := root.Find(rpp.TagMasterFx); fx != nil && fx.Chunk {
		if err := r.readFxChain(fx, channel); err != nil {
			return nil, err
		}
	}
	return &dawproject.Track{
		ID:      r.cctx.NextID(),
		Name:    "Master",
		Channel: channel,
	}, nil
}

// mixerChannel builds a channel with the parameter set every REAPER
// mixer strip carries. Pan arrives in REAPER's -1..+1 form.
func (r *reaperReader) mixerChannel(role string, vol, pan float64, mute, solo bool) *dawproject.Channel {
	ch := &dawproject.Channel{
		ID:            r.cctx.NextID(),
		Role:          role,
		AudioChannels: 2,
		Volume: &dawproject.RealParameter{
			ID:    r.cctx.NextID(),
			Name:  "Volume",
			Value: vol,
			Unit:  dawproject.UnitLinear,
		},
		Pan: &dawproject.RealParameter{
			ID:    r.cctx.NextID(),
			Name:  "Pan",
			Value: panValue(pan),
			Unit:  dawproject.UnitNormalized,
		},
		Mute: &dawproject.BoolParameter{
			ID:    r.cctx.NextID(),
			Name:  "Mute",
			Value: mute,
		},
	}
	if solo {
		ch.Solo = dawproject.Bool(true)
	}
	return ch
}

// readTrack converts one TRACK chunk into a flat hierarchy entry plus
// its arrangement lane.
func (r *reaperReader) readTrack(chunk *rpp.Element) (*TrackInfo, error) {
	channel := r.mixerChannel(dawproject.RoleRegular,
		floatLeaf(chunk, rpp.TagVolPan, 0, 1),
		floatLeaf(chunk, rpp.TagVolPan, 1, 0),
		intLeaf(chunk, rpp.TagMuteSolo, 0, 0) != 0,
		intLeaf(chunk, rpp.TagMuteSolo, 1, 0) != 0)
	channel.Destination = r.masterID
	channel.AudioChannels = intLeaf(chunk, rpp.TagChannels, 0, 2)

	track := &dawproject.Track{
		ID:      r.cctx.NextID(),
		Name:    stringLeaf(chunk, rpp.TagName, 0),
		Color:   reaperColor(intLeaf(chunk, rpp.TagPeakColor, 0, 0)),
		Channel: channel,
	}
	info := &TrackInfo{
		Track:     track,
		Type:      intLeaf(chunk, rpp.TagFolder, 0, 0),
		Direction: intLeaf(chunk, rpp.TagFolder, 1, 0),
	}

	if fx := chunk.Find(rpp.TagFXChain); fx != nil && fx.Chunk {
		if err := r.readFxChain(fx, channel); err != nil {
			return nil, err
		}
	}

	lanes := &dawproject.Lanes{ID: r.cctx.NextID(), Track: track.ID}
	var hasNotes, hasAudio bool
	for _, item := range chunk.FindAll(rpp.TagItem) {
		switch kind, err := r.readItem(item, lanes); {
		case err != nil:
			return nil, err
		case kind == dawproject.ContentNotes:
			hasNotes = true
		case kind == dawproject.ContentAudio:
			hasAudio = true
		}
	}
	for _, env := range chunk.FindAll(rpp.TagVolEnv) {
		r.readEnvelope(env, channel.Volume.ID, dawproject.UnitLinear, nil, lanes)
	}
	for _, env := range chunk.FindAll(rpp.TagPanEnv) {
		r.readEnvelope(env, channel.Pan.ID, dawproject.UnitNormalized, panValue, lanes)
	}
	if len(lanes.Clips) > 0 || len(lanes.Points) > 0 {
		r.attachLanes(lanes)
	}

	switch {
	case hasNotes && hasAudio:
		track.ContentType = dawproject.ContentNotes + " " + dawproject.ContentAudio
	case hasNotes:
		track.ContentType = dawproject.ContentNotes
	case hasAudio:
		track.ContentType = dawproject.ContentAudio
	case len(lanes.Points) > 0:
		track.ContentType = dawproject.ContentAutomation
	}
	return info, nil
}

// attachLanes hangs a track's lane under the arrangement root lane
func (r *reaperReader) attachLanes(lanes *dawproject.Lanes) {
	if r.arr.Lanes == nil {
		r.arr.Lanes = &dawproject.Lanes{
			ID:       r.cctx.NextID(),
			TimeUnit: timeUnitName(r.cctx.Times.Arrangement),
		}
	}
	r.arr.Lanes.Lanes = append(r.arr.Lanes.Lanes, lanes)
}

// readFxChain converts a device chain. A BYPASS leaf precedes each
// plugin chunk and carries its enabled and offline state; devices that
// cannot be translated are logged and skipped without breaking the
// chain.
func (r *reaperReader) readFxChain(chain *rpp.Element, channel *dawproject.Channel) error {
	var devices []*dawproject.Device
	bypassed, offline := false, false
	for _, child := range chain.Children {
		switch {
		case !child.Chunk && child.Name == rpp.TagBypass:
			bypassed = child.IntParam(0, 0) != 0
			offline = child.IntParam(1, 0) != 0
		case child.Chunk && (child.Name == rpp.TagVst || child.Name == rpp.TagClap):
			if err := r.cctx.Cancelled(); err != nil {
				return err
			}
			dev, err := r.readDevice(child, bypassed, offline)
			bypassed, offline = false, false
			if errors.Is(err, vstchunk.ErrUnsupportedFormat) {
				r.cctx.Logf("skipping device %q: %v", child.Param(0), err)
				continue
			}
			if err != nil {
				return err
			}
			devices = append(devices, dev)
		}
	}
	if len(devices) > 0 {
		channel.Devices = &dawproject.Devices{Devices: devices}
	}
	return nil
}

// readDevice converts one VST or CLAP chunk. The chunk state becomes a
// preset file embedded under plugins/ and referenced as the device
// state.
func (r *reaperReader) readDevice(chunk *rpp.Element, bypassed, offline bool) (*dawproject.Device, error) {
	desc, err := vstchunk.ParseDescription(chunk.Param(0))
	if err != nil {
		return nil, err
	}

	var blob *vstchunk.PresetBlob
	var deviceID string
	lines := stateLines(chunk)
	switch desc.Kind {
	case vstchunk.KindClap:
		deviceID = chunk.Param(1)
		state, err := vstchunk.DecodeRawLines(lines)
		if err != nil {
			return nil, fmt.Errorf("CLAP state: %w", err)
		}
		blob = &vstchunk.PresetBlob{Opaque: true, Payload: state}
	case vstchunk.KindVst3:
		if deviceID, err = vstchunk.ParseVst3IDToken(chunk.Param(4)); err != nil {
			return nil, err
		}
		if blob, err = vstchunk.DecodeLines(lines); err != nil {
			return nil, err
		}
	default:
		fxID, err := vstchunk.ParseVst2IDToken(chunk.Param(4))
		if err != nil {
			return nil, err
		}
		deviceID = strconv.FormatUint(uint64(fxID), 10)
		if blob, err = vstchunk.DecodeLines(lines); err != nil {
			return nil, err
		}
	}

	dev := &dawproject.Device{
		XMLName:      xml.Name{Local: deviceElem(desc.Kind)},
		ID:           r.cctx.NextID(),
		Name:         desc.Name,
		DeviceID:     deviceID,
		DeviceName:   desc.Name,
		DeviceVendor: desc.Vendor,
		DeviceRole:   deviceRole(desc),
		Loaded:       dawproject.Bool(!offline),
		Enabled: &dawproject.BoolParameter{
			ID:    r.cctx.NextID(),
			Name:  "On/Off",
			Value: !bypassed,
		},
	}

	file, err := desc.Kind.WriteFile(blob, deviceID)
	if err != nil {
		return nil, err
	}
	statePath := path.Join("plugins", dev.ID+desc.Kind.Ext())
	if err := r.embed(statePath, bytes.NewReader(file)); err != nil {
		return nil, err
	}
	dev.State = &dawproject.FileReference{Path: statePath}
	return dev, nil
}

// deviceElem maps a plugin kind to its schema element name
func deviceElem(k vstchunk.Kind) string {
	switch k {
	case vstchunk.KindVst3:
		return dawproject.ElemVst3Plugin
	case vstchunk.KindClap:
		return dawproject.ElemClapPlugin
	}
	return dawproject.ElemVst2Plugin
}

func deviceRole(d *vstchunk.Description) string {
	if d.Instrument {
		return dawproject.DeviceRoleInstrument
	}
	return dawproject.DeviceRoleAudioFX
}

// stateLines collects the Base64 state of a plugin chunk: its children
// that are bare leaves without parameters.
func stateLines(chunk *rpp.Element) []string {
	var lines []string
	for _, c := range chunk.Children {
		if !c.Chunk && len(c.Params) == 0 {
			lines = append(lines, c.Name)
		}
	}
	return lines
}

// readItem converts one media item into a clip on the track's lane.
// The SOURCE chunk decides the item kind; the returned content type is
// empty for skipped items.
func (r *reaperReader) readItem(item *rpp.Element, lanes *dawproject.Lanes) (string, error) {
	source := item.Find(rpp.TagSource)
	if source == nil || !source.Chunk {
		return "", nil
	}
	position := floatLeaf(item, rpp.TagPosition, 0, 0)
	length := floatLeaf(item, rpp.TagLength, 0, 0)
	clip := &dawproject.Clip{
		Name: stringLeaf(item, rpp.TagName, 0),
		Time: r.arrTime(position),
	}
	clip.Duration = dawproject.Float(r.arrTime(position+length) - clip.Time)

	switch source.Param(0) {
	case rpp.SourceMidi:
		if err := r.readMidiSource(source, clip); err != nil {
			return "", err
		}
		r.addClip(lanes, clip)
		return dawproject.ContentNotes, nil
	case rpp.SourceWave, rpp.SourceFlac, rpp.SourceMp3, rpp.SourceOgg:
		ok, err := r.readAudioSource(source, length, clip)
		if err != nil || !ok {
			return "", err
		}
		r.addClip(lanes, clip)
		return dawproject.ContentAudio, nil
	default:
		r.cctx.Logf("skipping item %q: unsupported source type %q", clip.Name, source.Param(0))
		return "", nil
	}
}

func (r *reaperReader) addClip(lanes *dawproject.Lanes, clip *dawproject.Clip) {
	if len(lanes.Clips) == 0 {
		lanes.Clips = []*dawproject.Clips{{ID: r.cctx.NextID()}}
	}
	holder := lanes.Clips[0]
	holder.Clips = append(holder.Clips, clip)
}

// readMidiSource decodes an embedded MIDI source into note and
// expression content. Event times count from the item start, so the
// clip content is self-contained and measured in beats.
func (r *reaperReader) readMidiSource(source *rpp.Element, clip *dawproject.Clip) error {
	seq, err := midiseq.FromChunk(source)
	if err != nil {
		return err
	}
	content, err := seq.Decode(r.cctx.opts.LenientMidi)
	if err != nil {
		return err
	}
	clip.ContentTimeUnit = dawproject.TimeUnitBeats

	notes := &dawproject.Notes{ID: r.cctx.NextID()}
	for _, n := range content.Notes {
		notes.Notes = append(notes.Notes, &dawproject.Note{
			Time:     n.Time,
			Duration: n.Duration,
			Channel:  int(n.Channel),
			Key:      int(n.Key),
			Velocity: dawproject.Float(n.Velocity),
			Release:  dawproject.Float(n.Release),
		})
	}

	// The trailing all-notes-off controller is sequencer bookkeeping,
	// not automation; writing sources adds it back.
	var points []*dawproject.Points
	for _, lane := range content.Lanes {
		if lane.Type == midiseq.ExprController && lane.Index == int(midiseq.CCAllNotesOff) {
			continue
		}
		points = append(points, r.expressionPoints(lane))
	}
	if len(points) == 0 {
		clip.Notes = notes
		return nil
	}
	clip.Lanes = &dawproject.Lanes{
		ID:     r.cctx.NextID(),
		Notes:  []*dawproject.Notes{notes},
		Points: points,
	}
	return nil
}

// expressionPoints renders one expression lane. Point times stay in
// beats like the notes around them; the discrete events become hold
// points.
func (r *reaperReader) expressionPoints(lane *midiseq.Lane) *dawproject.Points {
	target := &dawproject.AutomationTarget{Channel: dawproject.Int(int(lane.Channel))}
	unit := dawproject.UnitNormalized
	switch lane.Type {
	case midiseq.ExprController:
		target.Expression = dawproject.ExpressionChannelController
		target.Controller = dawproject.Int(lane.Index)
	case midiseq.ExprPolyPressure:
		target.Expression = dawproject.ExpressionPolyPressure
		target.Key = dawproject.Int(lane.Index)
	case midiseq.ExprChannelPressure:
		target.Expression = dawproject.ExpressionChannelPressure
	case midiseq.ExprPitchBend:
		target.Expression = dawproject.ExpressionPitchBend
	case midiseq.ExprProgramChange:
		// Program numbers stay raw, there is no natural unit.
		target.Expression = dawproject.ExpressionProgramChange
		unit = ""
	}
	out := &dawproject.Points{
		ID:       r.cctx.NextID(),
		TimeUnit: dawproject.TimeUnitBeats,
		Unit:     unit,
		Target:   target,
	}
	for _, p := range lane.Points {
		out.Points = append(out.Points, &dawproject.RealPoint{
			Time:          p.Time,
			Value:         p.Value,
			Interpolation: dawproject.InterpolationHold,
		})
	}
	return out
}

// readAudioSource copies the referenced audio file into the container
// and probes it for sample format and duration where the codec allows.
// A missing file drops the clip with a log line instead of failing the
// run.
func (r *reaperReader) readAudioSource(source *rpp.Element, length float64, clip *dawproject.Clip) (bool, error) {
	file := stringLeaf(source, rpp.TagFile, 0)
	if file == "" {
		r.cctx.Logf("skipping audio item %q: no file reference", clip.Name)
		return false, nil
	}
	if r.cctx.Source == nil {
		r.cctx.Logf("skipping audio item %q: no media source", clip.Name)
		return false, nil
	}
	stream, err := r.cctx.Source.Stream(file)
	if err != nil {
		r.cctx.Logf("skipping audio item %q: %v", clip.Name, err)
		return false, nil
	}
	data, err := io.ReadAll(stream)
	stream.Close()
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", file, err)
	}

	audio := &dawproject.Audio{
		ID:       r.cctx.NextID(),
		TimeUnit: dawproject.TimeUnitSeconds,
		Duration: length,
	}
	if info, err := probeAudio(bytes.NewReader(data)); err == nil {
		audio.SampleRate = info.sampleRate
		audio.Channels = info.channels
		audio.Duration = info.duration
	} else {
		r.cctx.Logf("could not probe %s: %v", file, err)
	}

	embedded, fresh := r.mediaPath(file)
	if fresh {
		if err := r.embed(embedded, bytes.NewReader(data)); err != nil {
			return false, err
		}
	}
	audio.File = dawproject.FileReference{Path: embedded}
	clip.Audio = audio
	return true, nil
}

// readEnvelope converts a track envelope into an automation lane aimed
// at the given channel parameter. convert rescales point values and may
// be nil for parameters stored in their native range.
func (r *reaperReader) readEnvelope(env *rpp.Element, paramID, unit string, convert func(float64) float64, lanes *dawproject.Lanes) {
	pts := env.FindAll(rpp.TagPoint)
	if len(pts) == 0 {
		return
	}
	out := &dawproject.Points{
		ID:       r.cctx.NextID(),
		TimeUnit: timeUnitName(r.cctx.Times.Automation),
		Unit:     unit,
		Target:   &dawproject.AutomationTarget{Parameter: paramID},
	}
	for _, pt := range pts {
		interp := dawproject.InterpolationLinear
		if pt.IntParam(2, 0) == 1 {
			interp = dawproject.InterpolationHold
		}
		value := pt.FloatParam(1, 0)
		if convert != nil {
			value = convert(value)
		}
		out.Points = append(out.Points, &dawproject.RealPoint{
			Time:          r.autoTime(pt.FloatParam(0, 0)),
			Value:         value,
			Interpolation: interp,
		})
	}
	lanes.Points = append(lanes.Points, out)
}

// mediaPath returns the container path of a referenced file plus
// whether it still needs embedding. The same reference reuses its
// entry; distinct references colliding on their base name are
// disambiguated with a counter prefix.
func (r *reaperReader) mediaPath(ref string) (string, bool) {
	if p, ok := r.media[ref]; ok {
		return p, false
	}
	base := baseName(ref)
	p := path.Join("audio", base)
	for n := 1; r.taken[p]; n++ {
		p = path.Join("audio", fmt.Sprintf("%d-%s", n, base))
	}
	r.media[ref] = p
	r.taken[p] = true
	return p, true
}

// embed streams data into the output container, a no-op without a sink
func (r *reaperReader) embed(id string, src io.Reader) error {
	if r.cctx.Sink == nil {
		return nil
	}
	if err := r.cctx.Sink.Add(id, src); err != nil {
		return fmt.Errorf("failed to embed %s: %w", id, err)
	}
	return nil
}

func (r *reaperReader) arrTime(seconds float64) float64 {
	return r.cctx.Times.FromSeconds(r.cctx.Times.Arrangement, seconds)
}

func (r *reaperReader) autoTime(seconds float64) float64 {
	return r.cctx.Times.FromSeconds(r.cctx.Times.Automation, seconds)
}

// fillTrackIDs assigns IDs to tracks and channels synthesized while
// rebuilding the folder structure.
func fillTrackIDs(cctx *Context, tracks []*dawproject.Track) {
	for _, t := range tracks {
		if t.ID == "" {
			t.ID = cctx.NextID()
		}
		if t.Channel != nil && t.Channel.ID == "" {
			t.Channel.ID = cctx.NextID()
		}
		fillTrackIDs(cctx, t.Tracks)
	}
}

// baseName strips directories from a media reference, tolerating both
// path separators. Projects written on Windows keep backslashes.
func baseName(ref string) string {
	return path.Base(strings.ReplaceAll(ref, "\\", "/"))
}

// stringLeaf returns parameter i of the named child leaf, empty when
// the leaf is missing
func stringLeaf(parent *rpp.Element, tag string, i int) string {
	if leaf := parent.Find(tag); leaf != nil {
		return leaf.Param(i)
	}
	return ""
}

func floatLeaf(parent *rpp.Element, tag string, i int, def float64) float64 {
	if leaf := parent.Find(tag); leaf != nil {
		return leaf.FloatParam(i, def)
	}
	return def
}

func intLeaf(parent *rpp.Element, tag string, i int, def int) int {
	if leaf := parent.Find(tag); leaf != nil {
		return leaf.IntParam(i, def)
	}
	return def
}
