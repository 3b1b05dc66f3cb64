package rpp

// Chunk and leaf tags of the RPP dialect handled by the converter. Tags
// not listed here survive conversion untouched only where whole chunks are
// carried verbatim; unknown tags inside handled chunks are ignored.
const (
	TagTempo       = "TEMPO"
	TagMarker      = "MARKER"
	TagAuthor      = "AUTHOR"
	TagMasterVol   = "MASTER_VOLUME"
	TagMasterMute  = "MASTERMUTESOLO"
	TagMasterFx    = "MASTERFXLIST"
	TagTempoEnv    = "TEMPOENVEX"
	TagPoint       = "PT"
	TagTrack       = "TRACK"
	TagName        = "NAME"
	TagTrackID     = "TRACKID"
	TagFolder      = "ISBUS"
	TagMuteSolo    = "MUTESOLO"
	TagVolPan      = "VOLPAN"
	TagChannels    = "NCHAN"
	TagPeakColor   = "PEAKCOL"
	TagFXChain     = "FXCHAIN"
	TagBypass      = "BYPASS"
	TagVst         = "VST"
	TagClap        = "CLAP"
	TagVolEnv      = "VOLENV2"
	TagPanEnv      = "PANENV2"
	TagEnvAct      = "ACT"
	TagEnvVis      = "VIS"
	TagEnvArm      = "ARM"
	TagItem        = "ITEM"
	TagPosition    = "POSITION"
	TagLength      = "LENGTH"
	TagMute        = "MUTE"
	TagStartOffset = "SOFFS"
	TagPlayRate    = "PLAYRATE"
	TagItemGUID    = "GUID"
	TagSource      = "SOURCE"
	TagHasData     = "HASDATA"
	TagFile        = "FILE"
)

// SOURCE chunk type parameters
const (
	SourceMidi = "MIDI"
	SourceWave = "WAVE"
	SourceFlac = "FLAC"
	SourceMp3  = "MP3"
	SourceOgg  = "VORBIS"
)

// MIDI event leaf names: plain, selected, muted, muted selected
const (
	TagMidiEvent         = "E"
	TagMidiEventSel      = "e"
	TagMidiEventMuted    = "Em"
	TagMidiEventMutedSel = "em"
)

// IsMidiEvent reports whether name is one of the MIDI event leaf tags
func IsMidiEvent(name string) bool {
	switch name {
	case TagMidiEvent, TagMidiEventSel, TagMidiEventMuted, TagMidiEventMutedSel:
		return true
	}
	return false
}
