package converter

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/git-moss/ProjectConverter-sub000/pkg/dawproject"
	"github.com/git-moss/ProjectConverter-sub000/pkg/midiseq"
	"github.com/git-moss/ProjectConverter-sub000/pkg/rpp"
	"github.com/git-moss/ProjectConverter-sub000/pkg/rpp/vstchunk"
	"github.com/git-moss/ProjectConverter-sub000/pkg/timing"
)

// WriteReaperProject renders the interchange model as a REAPER project
// tree. Embedded audio is extracted through cctx.Sink so the written
// project can reference it; plugin states are re-packed into chunk form
// from their preset files.
func WriteReaperProject(cctx *Context, project *dawproject.Project, meta *dawproject.MetaData) (*rpp.Element, error) {
	if project == nil {
		return nil, errors.New("converter: no project to write")
	}
	w := &reaperWriter{
		cctx:      cctx,
		project:   project,
		lanes:     map[string][]*dawproject.Lanes{},
		extracted: map[string]bool{},
	}
	return w.write(meta)
}

// reaperWriter holds the indexes of one dawproject to REAPER run.
type reaperWriter struct {
	cctx    *Context
	project *dawproject.Project

	// arrBase is the time base of arrangement positions, declared on
	// the arrangement's root lane
	arrBase timing.TimeBase

	// lanes maps track IDs to their arrangement lanes
	lanes map[string][]*dawproject.Lanes

	// extracted guards against copying the same media file twice
	extracted map[string]bool
}

func (w *reaperWriter) write(meta *dawproject.MetaData) (*rpp.Element, error) {
	w.buildTimeline()
	w.indexLanes()

	root := rpp.NewChunk(rpp.RootTag, "0.1", "7.0", "0")
	if meta != nil && meta.Artist != "" {
		root.AddLeaf(rpp.TagAuthor, meta.Artist)
	}
	w.writeTempo(root)
	w.writeMarkers(root)
	if err := w.writeMaster(root); err != nil {
		return nil, err
	}

	master := masterTrack(w.project)
	var regular []*dawproject.Track
	for _, t := range w.project.Structure.Tracks {
		if t != master {
			regular = append(regular, t)
		}
	}
	for _, info := range Flatten(regular) {
		if err := w.cctx.Cancelled(); err != nil {
			return nil, err
		}
		if err := w.writeTrack(root, info); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// buildTimeline derives the run's tempo map from the transport tempo
// and the arrangement's tempo automation, which may be positioned in
// beats or seconds. The map is installed on the context before any
// position conversion.
func (w *reaperWriter) buildTimeline() {
	bpm := 120.0
	if t := w.project.Transport; t != nil && t.Tempo != nil && t.Tempo.Value > 0 {
		bpm = t.Tempo.Value
	}
	timeline := timing.Constant(bpm)

	arrUnit := ""
	arr := w.project.Arrangement
	if arr != nil && arr.Lanes != nil {
		arrUnit = arr.Lanes.TimeUnit
	}
	w.arrBase = timeBaseOf(arrUnit, timing.TimeBeats)

	if arr != nil && arr.TempoAutomation != nil && len(arr.TempoAutomation.Points) > 0 {
		auto := arr.TempoAutomation
		pts := make([]timing.TempoPoint, 0, len(auto.Points))
		for _, p := range auto.Points {
			interp := timing.Linear
			if p.Interpolation == dawproject.InterpolationHold {
				interp = timing.Hold
			}
			pts = append(pts, timing.TempoPoint{Time: p.Time, BPM: p.Value, Interp: interp})
		}
		var tl *timing.Timeline
		var err error
		if timeBaseOf(auto.TimeUnit, timing.TimeBeats) == timing.TimeBeats {
			tl, err = timing.NewFromBeats(pts)
		} else {
			tl, err = timing.New(pts)
		}
		if err != nil {
			w.cctx.Logf("ignoring tempo automation: %v", err)
		} else {
			timeline = tl
		}
	}
	w.cctx.Times = &timing.TimeMap{
		Timeline:    timeline,
		Arrangement: w.arrBase,
		Automation:  w.arrBase,
	}
}

// indexLanes maps track IDs to their arrangement lanes, flattening
// nested lane groups.
func (w *reaperWriter) indexLanes() {
	arr := w.project.Arrangement
	if arr == nil || arr.Lanes == nil {
		return
	}
	var walk func(l *dawproject.Lanes)
	walk = func(l *dawproject.Lanes) {
		if l.Track != "" {
			w.lanes[l.Track] = append(w.lanes[l.Track], l)
		}
		for _, c := range l.Lanes {
			walk(c)
		}
	}
	walk(arr.Lanes)
}

// writeTempo emits the TEMPO leaf and, for a changing tempo, the
// TEMPOENVEX envelope. The timeline's points are already in seconds.
func (w *reaperWriter) writeTempo(root *rpp.Element) {
	bpm, num, denom := 120.0, 4, 4
	if t := w.project.Transport; t != nil {
		if t.Tempo != nil && t.Tempo.Value > 0 {
			bpm = t.Tempo.Value
		}
		if ts := t.TimeSignature; ts != nil {
			if ts.Numerator > 0 {
				num = ts.Numerator
			}
			if ts.Denominator > 0 {
				denom = ts.Denominator
			}
		}
	}
	root.AddLeaf(rpp.TagTempo, formatFloat(bpm), strconv.Itoa(num), strconv.Itoa(denom))

	tl := w.cctx.Times.Timeline
	if tl.Constant() {
		return
	}
	env := root.AddChunk(rpp.TagTempoEnv)
	env.AddLeaf(rpp.TagEnvAct, "1", "-1")
	env.AddLeaf(rpp.TagEnvVis, "1", "0", "1")
	env.AddLeaf(rpp.TagEnvArm, "0")
	for _, p := range tl.Points() {
		env.AddLeaf(rpp.TagPoint, formatFloat(p.Time), formatFloat(p.BPM), envShape(p.Interp))
	}
}

func envShape(interp timing.Interpolation) string {
	if interp == timing.Hold {
		return "1"
	}
	return "0"
}

func (w *reaperWriter) writeMarkers(root *rpp.Element) {
	arr := w.project.Arrangement
	if arr == nil || arr.Markers == nil {
		return
	}
	base := timeBaseOf(arr.Markers.TimeUnit, w.arrBase)
	for i, m := range arr.Markers.Markers {
		root.AddLeaf(rpp.TagMarker,
			strconv.Itoa(i+1),
			formatFloat(w.cctx.Times.ToSeconds(base, m.Time)),
			m.Name,
			"0",
			strconv.Itoa(colorValue(m.Color)),
			"1")
	}
}

// writeMaster emits the project-level mixer leaves from the master
// track, the top-level track carrying the master mixer role.
func (w *reaperWriter) writeMaster(root *rpp.Element) error {
	master := masterTrack(w.project)
	if master == nil || master.Channel == nil {
		root.AddLeaf(rpp.TagMasterVol, "1", "0")
		return nil
	}
	ch := master.Channel
	vol, pan := 1.0, 0.0
	if ch.Volume != nil {
		vol = ch.Volume.Value
	}
	if ch.Pan != nil {
		pan = reaperPan(ch.Pan.Value)
	}
	root.AddLeaf(rpp.TagMasterVol, formatFloat(vol), formatFloat(pan))
	root.AddLeaf(rpp.TagMasterMute, boolFlag(ch.Mute != nil && ch.Mute.Value), boolFlag(ch.Solo != nil && *ch.Solo))
	if ch.Devices != nil && len(ch.Devices.Devices) > 0 {
		fx := root.AddChunk(rpp.TagMasterFx)
		if err := w.writeDevices(fx, ch.Devices.Devices); err != nil {
			return err
		}
	}
	return nil
}

// masterTrack returns the top-level track carrying the master role
func masterTrack(project *dawproject.Project) *dawproject.Track {
	for _, t := range project.Structure.Tracks {
		if t.Channel != nil && t.Channel.Role == dawproject.RoleMaster {
			return t
		}
	}
	return nil
}

func boolFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// writeTrack emits one flat hierarchy entry as a TRACK chunk
func (w *reaperWriter) writeTrack(root *rpp.Element, info *TrackInfo) error {
	track := info.Track
	guid := reaperGUID()
	chunk := root.AddChunk(rpp.TagTrack, guid)
	chunk.AddLeaf(rpp.TagName, track.Name)
	if track.Color != "" {
		chunk.AddLeaf(rpp.TagPeakColor, strconv.Itoa(colorValue(track.Color)))
	}
	chunk.AddLeaf(rpp.TagFolder, strconv.Itoa(info.Type), strconv.Itoa(info.Direction))

	ch := info.Channel()
	vol, pan := 1.0, 0.0
	var mute, solo bool
	channels := 2
	if ch != nil {
		if ch.Volume != nil {
			vol = ch.Volume.Value
		}
		if ch.Pan != nil {
			pan = reaperPan(ch.Pan.Value)
		}
		mute = ch.Mute != nil && ch.Mute.Value
		solo = ch.Solo != nil && *ch.Solo
		if ch.AudioChannels > 0 {
			channels = ch.AudioChannels
		}
	}
	chunk.AddLeaf(rpp.TagMuteSolo, boolFlag(mute), boolFlag(solo), "0")
	chunk.AddLeaf(rpp.TagVolPan, formatFloat(vol), formatFloat(pan), "-1", "-1", "1")
	chunk.AddLeaf(rpp.TagChannels, strconv.Itoa(channels))
	chunk.AddLeaf(rpp.TagTrackID, guid)

	if ch != nil && ch.Devices != nil && len(ch.Devices.Devices) > 0 {
		fx := chunk.AddChunk(rpp.TagFXChain)
		if err := w.writeDevices(fx, ch.Devices.Devices); err != nil {
			return err
		}
	}
	for _, lane := range w.lanes[track.ID] {
		w.writeEnvelopes(chunk, lane, ch)
	}
	for _, lane := range w.lanes[track.ID] {
		if err := w.writeItems(chunk, lane); err != nil {
			return err
		}
	}
	return nil
}

// writeEnvelopes emits VOLENV2 and PANENV2 chunks for automation lanes
// aimed at the channel's volume and pan parameters. Lanes aimed at
// anything else have no REAPER envelope and are logged.
func (w *reaperWriter) writeEnvelopes(chunk *rpp.Element, lane *dawproject.Lanes, ch *dawproject.Channel) {
	for _, pts := range lane.Points {
		if pts.Target == nil || pts.Target.Parameter == "" || len(pts.Points) == 0 {
			continue
		}
		var tag string
		var convert func(float64) float64
		switch {
		case ch != nil && ch.Volume != nil && pts.Target.Parameter == ch.Volume.ID:
			tag = rpp.TagVolEnv
		case ch != nil && ch.Pan != nil && pts.Target.Parameter == ch.Pan.ID:
			tag, convert = rpp.TagPanEnv, reaperPan
		default:
			w.cctx.Logf("dropping automation for parameter %q: no matching envelope", pts.Target.Parameter)
			continue
		}
		env := chunk.AddChunk(tag)
		env.AddLeaf(rpp.TagEnvAct, "1", "-1")
		env.AddLeaf(rpp.TagEnvVis, "1", "1", "1")
		env.AddLeaf(rpp.TagEnvArm, "0")
		base := timeBaseOf(pts.TimeUnit, w.cctx.Times.Automation)
		for _, p := range pts.Points {
			v := p.Value
			if convert != nil {
				v = convert(v)
			}
			shape := "0"
			if p.Interpolation == dawproject.InterpolationHold {
				shape = "1"
			}
			env.AddLeaf(rpp.TagPoint,
				formatFloat(w.cctx.Times.ToSeconds(base, p.Time)),
				formatFloat(v),
				shape)
		}
	}
}

// writeItems emits the lane's clips as ITEM chunks
func (w *reaperWriter) writeItems(chunk *rpp.Element, lane *dawproject.Lanes) error {
	base := timeBaseOf(lane.TimeUnit, w.arrBase)
	for _, holder := range lane.Clips {
		for _, clip := range holder.Clips {
			if err := w.writeItem(chunk, clip, base); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *reaperWriter) writeItem(parent *rpp.Element, clip *dawproject.Clip, base timing.TimeBase) error {
	pos := w.cctx.Times.ToSeconds(base, clip.Time)
	length := 0.0
	if clip.Duration != nil {
		length = w.cctx.Times.ToSeconds(base, clip.Time+*clip.Duration) - pos
	}
	item := parent.AddChunk(rpp.TagItem)
	item.AddLeaf(rpp.TagPosition, formatFloat(pos))
	item.AddLeaf(rpp.TagLength, formatFloat(length))
	if clip.Name != "" {
		item.AddLeaf(rpp.TagName, clip.Name)
	}
	soffs := 0.0
	if clip.PlayStart != nil && clip.Audio != nil {
		soffs = *clip.PlayStart
	}
	item.AddLeaf(rpp.TagStartOffset, formatFloat(soffs))
	item.AddLeaf(rpp.TagPlayRate, "1", "1", "0", "-1", "0", "0.25")
	item.AddLeaf(rpp.TagItemGUID, reaperGUID())

	switch {
	case clip.Notes != nil || clip.Lanes != nil:
		return w.writeMidiSource(item, clip, pos, length)
	case clip.Audio != nil:
		return w.writeAudioSource(item, clip.Audio)
	case clip.Warps != nil && clip.Warps.Audio != nil:
		return w.writeAudioSource(item, clip.Warps.Audio)
	default:
		w.cctx.Logf("clip %q has no convertible content", clip.Name)
		return nil
	}
}

// writeMidiSource packs note and expression content back into an
// embedded MIDI source. Clip content is in beats; the source spans the
// whole clip so the trailing all-notes-off lands at its end.
func (w *reaperWriter) writeMidiSource(item *rpp.Element, clip *dawproject.Clip, pos, length float64) error {
	content := &midiseq.Content{}
	collect := func(notes *dawproject.Notes) {
		for _, n := range notes.Notes {
			vel, rel := 100.0/127, 0.0
			if n.Velocity != nil {
				vel = *n.Velocity
			}
			if n.Release != nil {
				rel = *n.Release
			}
			content.Notes = append(content.Notes, midiseq.Note{
				Time:     n.Time,
				Duration: n.Duration,
				Channel:  uint8(n.Channel),
				Key:      uint8(n.Key),
				Velocity: vel,
				Release:  rel,
			})
		}
	}
	if clip.Notes != nil {
		collect(clip.Notes)
	}
	if clip.Lanes != nil {
		for _, notes := range clip.Lanes.Notes {
			collect(notes)
		}
		for _, pts := range clip.Lanes.Points {
			lane := expressionLane(pts)
			if lane == nil {
				w.cctx.Logf("dropping clip automation in %q: not a note expression", clip.Name)
				continue
			}
			content.Lanes = append(content.Lanes, lane)
		}
	}

	tl := w.cctx.Times.Timeline
	beats := tl.SecondsToBeats(pos+length) - tl.SecondsToBeats(pos)
	seq := content.Encode(int64(w.cctx.opts.TicksPerQuarter), beats)
	item.Add(seq.Chunk())
	return nil
}

// expressionLane maps a clip automation lane back onto a MIDI
// expression lane, nil when the target is no MIDI expression.
func expressionLane(pts *dawproject.Points) *midiseq.Lane {
	t := pts.Target
	if t == nil || t.Expression == "" {
		return nil
	}
	key := midiseq.LaneKey{Index: -1}
	if t.Channel != nil {
		key.Channel = uint8(*t.Channel)
	}
	switch t.Expression {
	case dawproject.ExpressionChannelController:
		if t.Controller == nil {
			return nil
		}
		key.Type = midiseq.ExprController
		key.Index = *t.Controller
	case dawproject.ExpressionPolyPressure:
		if t.Key == nil {
			return nil
		}
		key.Type = midiseq.ExprPolyPressure
		key.Index = *t.Key
	case dawproject.ExpressionChannelPressure:
		key.Type = midiseq.ExprChannelPressure
	case dawproject.ExpressionPitchBend:
		key.Type = midiseq.ExprPitchBend
	case dawproject.ExpressionProgramChange:
		key.Type = midiseq.ExprProgramChange
	default:
		return nil
	}
	lane := &midiseq.Lane{LaneKey: key}
	for _, p := range pts.Points {
		lane.Points = append(lane.Points, midiseq.Point{Time: p.Time, Value: p.Value})
	}
	return lane
}

// writeAudioSource extracts the referenced audio next to the project
// and emits a SOURCE chunk pointing at it. A missing container entry
// drops the source with a log line; a failing extraction is fatal.
func (w *reaperWriter) writeAudioSource(item *rpp.Element, audio *dawproject.Audio) error {
	ref := audio.File.Path
	if ref == "" {
		w.cctx.Logf("audio clip has no file reference")
		return nil
	}
	external := audio.File.External != nil && *audio.File.External
	if !external && w.cctx.Source != nil && w.cctx.Sink != nil && !w.extracted[ref] {
		stream, err := w.cctx.Source.Stream(ref)
		if err != nil {
			w.cctx.Logf("skipping audio file %s: %v", ref, err)
			return nil
		}
		err = w.cctx.Sink.Add(ref, stream)
		stream.Close()
		if err != nil {
			return err
		}
		w.extracted[ref] = true
	}
	src := item.AddChunk(rpp.TagSource, sourceTypeOf(ref))
	src.AddLeaf(rpp.TagFile, ref)
	return nil
}

// sourceTypeOf picks the SOURCE chunk type from the file extension,
// defaulting to WAVE
func sourceTypeOf(ref string) string {
	switch strings.ToLower(path.Ext(baseName(ref))) {
	case ".flac":
		return rpp.SourceFlac
	case ".mp3":
		return rpp.SourceMp3
	case ".ogg":
		return rpp.SourceOgg
	default:
		return rpp.SourceWave
	}
}

// writeDevices emits the BYPASS leaf plus plugin chunk pairs of a
// device chain. Devices whose state cannot be rebuilt are logged and
// skipped.
func (w *reaperWriter) writeDevices(fx *rpp.Element, devices []*dawproject.Device) error {
	for _, dev := range devices {
		if err := w.cctx.Cancelled(); err != nil {
			return err
		}
		chunk, err := w.deviceChunk(dev)
		if errors.Is(err, vstchunk.ErrUnsupportedFormat) {
			w.cctx.Logf("skipping device %q: %v", dev.Name, err)
			continue
		}
		if err != nil {
			return err
		}
		bypassed := dev.Enabled != nil && !dev.Enabled.Value
		offline := dev.Loaded != nil && !*dev.Loaded
		fx.AddLeaf(rpp.TagBypass, boolFlag(bypassed), boolFlag(offline), "0")
		fx.Add(chunk)
	}
	return nil
}

// deviceChunk rebuilds a plugin chunk from a device's preset state.
// The native plugin ID comes from the deviceID attribute, with the ID
// recovered from the preset file as fallback.
func (w *reaperWriter) deviceChunk(dev *dawproject.Device) (*rpp.Element, error) {
	kind, err := deviceKindOf(dev)
	if err != nil {
		return nil, err
	}
	desc := &vstchunk.Description{
		Kind:       kind,
		Name:       deviceName(dev),
		Vendor:     dev.DeviceVendor,
		Instrument: dev.DeviceRole == dawproject.DeviceRoleInstrument,
	}

	state, err := w.deviceState(dev)
	if err != nil {
		return nil, err
	}
	blob := &vstchunk.PresetBlob{Opaque: true}
	nativeID := ""
	if state != nil {
		if blob, nativeID, err = kind.ReadFile(state); err != nil {
			return nil, err
		}
	}
	deviceID := dev.DeviceID
	if deviceID == "" {
		deviceID = nativeID
	}

	switch kind {
	case vstchunk.KindClap:
		chunk := rpp.NewChunk(rpp.TagClap, desc.String(), deviceID, "")
		for _, line := range vstchunk.EncodeRawLines(blob.Payload) {
			chunk.AddLeaf(line)
		}
		return chunk, nil
	case vstchunk.KindVst3:
		token, err := vstchunk.Vst3IDToken(deviceID)
		if err != nil {
			return nil, fmt.Errorf("device ID %q: %v: %w", deviceID, err, vstchunk.ErrUnsupportedFormat)
		}
		if blob.VendorID == 0 {
			if blob.VendorID, err = vstchunk.Vst3IDHash(deviceID); err != nil {
				return nil, err
			}
		}
		return vstElement(desc, ".vst3", token, blob), nil
	default:
		id64, err := strconv.ParseUint(deviceID, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("device ID %q: %w", deviceID, vstchunk.ErrUnsupportedFormat)
		}
		if blob.VendorID == 0 {
			blob.VendorID = uint32(id64)
		}
		return vstElement(desc, ".dll", vstchunk.Vst2IDToken(uint32(id64), desc.Name), blob), nil
	}
}

// vstElement assembles a VST chunk: description, module file name, the ID
// token and the Base64 state lines.
func vstElement(desc *vstchunk.Description, ext, token string, blob *vstchunk.PresetBlob) *rpp.Element {
	chunk := rpp.NewChunk(rpp.TagVst, desc.String(), desc.Name+ext, "0", "", token, "")
	for _, line := range vstchunk.EncodeLines(blob) {
		chunk.AddLeaf(line)
	}
	return chunk
}

// deviceKindOf maps the schema element name to a plugin kind
func deviceKindOf(dev *dawproject.Device) (vstchunk.Kind, error) {
	switch dev.Kind() {
	case dawproject.ElemVst2Plugin:
		return vstchunk.KindVst2, nil
	case dawproject.ElemVst3Plugin:
		return vstchunk.KindVst3, nil
	case dawproject.ElemClapPlugin:
		return vstchunk.KindClap, nil
	}
	return 0, fmt.Errorf("device element %q: %w", dev.Kind(), vstchunk.ErrUnsupportedFormat)
}

func deviceName(dev *dawproject.Device) string {
	if dev.DeviceName != "" {
		return dev.DeviceName
	}
	return dev.Name
}

// deviceState loads the device's preset file from the container, nil
// when the device carries no state. An unreadable entry degrades to a
// skippable error so one broken device does not fail the run.
func (w *reaperWriter) deviceState(dev *dawproject.Device) ([]byte, error) {
	if dev.State == nil || dev.State.Path == "" || w.cctx.Source == nil {
		return nil, nil
	}
	stream, err := w.cctx.Source.Stream(dev.State.Path)
	if err != nil {
		return nil, fmt.Errorf("device state %s: %v: %w", dev.State.Path, err, vstchunk.ErrUnsupportedFormat)
	}
	defer stream.Close()
	return io.ReadAll(stream)
}

// reaperGUID renders a fresh GUID in REAPER's braced uppercase form
func reaperGUID() string {
	return "{" + strings.ToUpper(uuid.NewString()) + "}"
}
