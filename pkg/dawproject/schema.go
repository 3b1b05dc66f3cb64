// Package dawproject models the DAWproject interchange format: the XML
// object graph stored in project.xml, the metadata.xml document and the
// surrounding ZIP container.
package dawproject

import "encoding/xml"

// Version is the format version written to new containers.
const Version = "1.0"

// Unit values carried by parameters and automation point collections.
const (
	UnitLinear     = "linear"
	UnitNormalized = "normalized"
	UnitPercent    = "percent"
	UnitDecibel    = "decibel"
	UnitHertz      = "hertz"
	UnitSemitones  = "semitones"
	UnitSeconds    = "seconds"
	UnitBeats      = "beats"
	UnitBPM        = "bpm"
)

// Time units for timelines, clips and fades.
const (
	TimeUnitBeats   = "beats"
	TimeUnitSeconds = "seconds"
)

// Interpolation modes for automation points.
const (
	InterpolationHold   = "hold"
	InterpolationLinear = "linear"
)

// Mixer roles of a Channel.
const (
	RoleRegular = "regular"
	RoleMaster  = "master"
	RoleEffect  = "effectTrack"
	RoleSubmix  = "submix"
)

// Device roles.
const (
	DeviceRoleInstrument = "instrument"
	DeviceRoleNoteFX     = "noteFX"
	DeviceRoleAudioFX    = "audioFX"
)

// Track content types (space-separated when combined).
const (
	ContentNotes      = "notes"
	ContentAudio      = "audio"
	ContentAutomation = "automation"
	ContentTracks     = "tracks"
)

// Element names of the supported plugin device family. The element name is
// what distinguishes plugin kinds in the schema; the attributes are shared.
const (
	ElemVst2Plugin = "Vst2Plugin"
	ElemVst3Plugin = "Vst3Plugin"
	ElemClapPlugin = "ClapPlugin"
)

// Expression types for automation targets inside note clips.
const (
	ExpressionGain              = "gain"
	ExpressionPan               = "pan"
	ExpressionChannelController = "channelController"
	ExpressionChannelPressure   = "channelPressure"
	ExpressionPolyPressure      = "polyPressure"
	ExpressionPitchBend         = "pitchBend"
	ExpressionProgramChange     = "programChange"
)

// Project is the root element of project.xml.
type Project struct {
	XMLName     xml.Name     `xml:"Project"`
	Version     string       `xml:"version,attr"`
	Application Application  `xml:"Application"`
	Transport   *Transport   `xml:"Transport,omitempty"`
	Structure   Structure    `xml:"Structure"`
	Arrangement *Arrangement `xml:"Arrangement,omitempty"`
}

// Application identifies the program that wrote the project.
type Application struct {
	Name    string `xml:"name,attr"`
	Version string `xml:"version,attr"`
}

type Transport struct {
	Tempo         *RealParameter          `xml:"Tempo,omitempty"`
	TimeSignature *TimeSignatureParameter `xml:"TimeSignature,omitempty"`
}

type TimeSignatureParameter struct {
	ID          string `xml:"id,attr,omitempty"`
	Numerator   int    `xml:"numerator,attr"`
	Denominator int    `xml:"denominator,attr"`
}

type Structure struct {
	Tracks []*Track `xml:"Track"`
}

// Track is a structure lane. Group tracks nest their children as Track
// elements; the mixer state lives in the embedded Channel.
type Track struct {
	ID          string   `xml:"id,attr,omitempty"`
	Name        string   `xml:"name,attr,omitempty"`
	Color       string   `xml:"color,attr,omitempty"`
	Comment     string   `xml:"comment,attr,omitempty"`
	ContentType string   `xml:"contentType,attr,omitempty"`
	Loaded      *bool    `xml:"loaded,attr,omitempty"`
	Channel     *Channel `xml:"Channel,omitempty"`
	Tracks      []*Track `xml:"Track,omitempty"`
}

type Channel struct {
	ID            string         `xml:"id,attr,omitempty"`
	Name          string         `xml:"name,attr,omitempty"`
	Role          string         `xml:"role,attr,omitempty"`
	AudioChannels int            `xml:"audioChannels,attr,omitempty"`
	Solo          *bool          `xml:"solo,attr,omitempty"`
	Destination   string         `xml:"destination,attr,omitempty"`
	Devices       *Devices       `xml:"Devices,omitempty"`
	Mute          *BoolParameter `xml:"Mute,omitempty"`
	Pan           *RealParameter `xml:"Pan,omitempty"`
	Volume        *RealParameter `xml:"Volume,omitempty"`
}

// Devices wraps a channel's ordered device chain.
type Devices struct {
	Devices []*Device `xml:",any"`
}

// Device covers the plugin element family. All plugin kinds share the same
// attribute set; the XML element name (Vst2Plugin, Vst3Plugin, ClapPlugin)
// identifies the kind, so one struct serves the whole family and the chain
// order survives a round trip.
type Device struct {
	XMLName       xml.Name
	ID            string         `xml:"id,attr,omitempty"`
	Name          string         `xml:"name,attr,omitempty"`
	DeviceID      string         `xml:"deviceID,attr,omitempty"`
	DeviceName    string         `xml:"deviceName,attr,omitempty"`
	DeviceVendor  string         `xml:"deviceVendor,attr,omitempty"`
	DeviceRole    string         `xml:"deviceRole,attr,omitempty"`
	Loaded        *bool          `xml:"loaded,attr,omitempty"`
	PluginVersion string         `xml:"pluginVersion,attr,omitempty"`
	Parameters    *Parameters    `xml:"Parameters,omitempty"`
	Enabled       *BoolParameter `xml:"Enabled,omitempty"`
	State         *FileReference `xml:"State,omitempty"`
}

// Kind returns the element name identifying the plugin family.
func (d *Device) Kind() string { return d.XMLName.Local }

// Parameters wraps a device's automated parameter list.
type Parameters struct {
	Real []*RealParameter `xml:"RealParameter,omitempty"`
}

// FileReference points at a file embedded in the container, or an external
// path when the external attribute is set.
type FileReference struct {
	Path     string `xml:"path,attr"`
	External *bool  `xml:"external,attr,omitempty"`
}

type RealParameter struct {
	ID    string   `xml:"id,attr,omitempty"`
	Name  string   `xml:"name,attr,omitempty"`
	Value float64  `xml:"value,attr"`
	Unit  string   `xml:"unit,attr"`
	Min   *float64 `xml:"min,attr,omitempty"`
	Max   *float64 `xml:"max,attr,omitempty"`
}

type BoolParameter struct {
	ID    string `xml:"id,attr,omitempty"`
	Name  string `xml:"name,attr,omitempty"`
	Value bool   `xml:"value,attr"`
}

type Arrangement struct {
	ID              string   `xml:"id,attr,omitempty"`
	TempoAutomation *Points  `xml:"TempoAutomation,omitempty"`
	Markers         *Markers `xml:"Markers,omitempty"`
	Lanes           *Lanes   `xml:"Lanes,omitempty"`
}

// Lanes groups timeline content. The arrangement root holds one child Lanes
// per track, linked through the track reference attribute.
type Lanes struct {
	ID       string    `xml:"id,attr,omitempty"`
	Track    string    `xml:"track,attr,omitempty"`
	TimeUnit string    `xml:"timeUnit,attr,omitempty"`
	Lanes    []*Lanes  `xml:"Lanes,omitempty"`
	Clips    []*Clips  `xml:"Clips,omitempty"`
	Notes    []*Notes  `xml:"Notes,omitempty"`
	Points   []*Points `xml:"Points,omitempty"`
	Warps    []*Warps  `xml:"Warps,omitempty"`
}

type Clips struct {
	ID    string  `xml:"id,attr,omitempty"`
	Clips []*Clip `xml:"Clip,omitempty"`
}

// Clip places a content timeline on its parent lane. Exactly one of the
// content fields is set.
type Clip struct {
	Name            string   `xml:"name,attr,omitempty"`
	Time            float64  `xml:"time,attr"`
	Duration        *float64 `xml:"duration,attr,omitempty"`
	ContentTimeUnit string   `xml:"contentTimeUnit,attr,omitempty"`
	PlayStart       *float64 `xml:"playStart,attr,omitempty"`
	PlayStop        *float64 `xml:"playStop,attr,omitempty"`
	LoopStart       *float64 `xml:"loopStart,attr,omitempty"`
	LoopEnd         *float64 `xml:"loopEnd,attr,omitempty"`
	FadeTimeUnit    string   `xml:"fadeTimeUnit,attr,omitempty"`
	FadeInTime      *float64 `xml:"fadeInTime,attr,omitempty"`
	FadeOutTime     *float64 `xml:"fadeOutTime,attr,omitempty"`
	Color           string   `xml:"color,attr,omitempty"`
	Notes           *Notes   `xml:"Notes,omitempty"`
	Clips           *Clips   `xml:"Clips,omitempty"`
	Lanes           *Lanes   `xml:"Lanes,omitempty"`
	Audio           *Audio   `xml:"Audio,omitempty"`
	Warps           *Warps   `xml:"Warps,omitempty"`
	Points          *Points  `xml:"Points,omitempty"`
}

type Notes struct {
	ID    string  `xml:"id,attr,omitempty"`
	Notes []*Note `xml:"Note,omitempty"`
}

type Note struct {
	Time     float64  `xml:"time,attr"`
	Duration float64  `xml:"duration,attr"`
	Channel  int      `xml:"channel,attr"`
	Key      int      `xml:"key,attr"`
	Velocity *float64 `xml:"vel,attr,omitempty"`
	Release  *float64 `xml:"rel,attr,omitempty"`
}

// Points is an automation point timeline aimed at a parameter or at a note
// expression through its Target.
type Points struct {
	ID       string            `xml:"id,attr,omitempty"`
	Track    string            `xml:"track,attr,omitempty"`
	TimeUnit string            `xml:"timeUnit,attr,omitempty"`
	Unit     string            `xml:"unit,attr,omitempty"`
	Target   *AutomationTarget `xml:"Target,omitempty"`
	Points   []*RealPoint      `xml:"RealPoint,omitempty"`
}

type AutomationTarget struct {
	Parameter  string `xml:"parameter,attr,omitempty"`
	Expression string `xml:"expression,attr,omitempty"`
	Channel    *int   `xml:"channel,attr,omitempty"`
	Key        *int   `xml:"key,attr,omitempty"`
	Controller *int   `xml:"controller,attr,omitempty"`
}

type RealPoint struct {
	Time          float64 `xml:"time,attr"`
	Value         float64 `xml:"value,attr"`
	Interpolation string  `xml:"interpolation,attr,omitempty"`
}

type Markers struct {
	ID       string    `xml:"id,attr,omitempty"`
	TimeUnit string    `xml:"timeUnit,attr,omitempty"`
	Markers  []*Marker `xml:"Marker,omitempty"`
}

type Marker struct {
	Time    float64 `xml:"time,attr"`
	Name    string  `xml:"name,attr,omitempty"`
	Color   string  `xml:"color,attr,omitempty"`
	Comment string  `xml:"comment,attr,omitempty"`
}

// Audio references an embedded or external audio file.
type Audio struct {
	ID         string        `xml:"id,attr,omitempty"`
	TimeUnit   string        `xml:"timeUnit,attr,omitempty"`
	SampleRate int           `xml:"sampleRate,attr,omitempty"`
	Channels   int           `xml:"channels,attr,omitempty"`
	Duration   float64       `xml:"duration,attr"`
	Algorithm  string        `xml:"algorithm,attr,omitempty"`
	File       FileReference `xml:"File"`
}

// Warps maps content time onto parent time; stretched audio clips wrap
// their Audio in one of these.
type Warps struct {
	ID              string  `xml:"id,attr,omitempty"`
	TimeUnit        string  `xml:"timeUnit,attr,omitempty"`
	ContentTimeUnit string  `xml:"contentTimeUnit,attr,omitempty"`
	Events          []*Warp `xml:"Warp,omitempty"`
	Audio           *Audio  `xml:"Audio,omitempty"`
}

type Warp struct {
	Time        float64 `xml:"time,attr"`
	ContentTime float64 `xml:"contentTime,attr"`
}

// MetaData is the root element of metadata.xml.
type MetaData struct {
	XMLName        xml.Name `xml:"MetaData"`
	Title          string   `xml:"Title,omitempty"`
	Artist         string   `xml:"Artist,omitempty"`
	Album          string   `xml:"Album,omitempty"`
	OriginalArtist string   `xml:"OriginalArtist,omitempty"`
	Composer       string   `xml:"Composer,omitempty"`
	Songwriter     string   `xml:"Songwriter,omitempty"`
	Producer       string   `xml:"Producer,omitempty"`
	Arranger       string   `xml:"Arranger,omitempty"`
	Year           string   `xml:"Year,omitempty"`
	Genre          string   `xml:"Genre,omitempty"`
	Copyright      string   `xml:"Copyright,omitempty"`
	Website        string   `xml:"Website,omitempty"`
	Comment        string   `xml:"Comment,omitempty"`
}

// Bool returns a pointer for optional boolean attributes.
func Bool(v bool) *bool { return &v }

// Float returns a pointer for optional numeric attributes.
func Float(v float64) *float64 { return &v }

// Int returns a pointer for optional integer attributes.
func Int(v int) *int { return &v }
