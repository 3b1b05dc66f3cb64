package converter

import (
	"fmt"

	"github.com/git-moss/ProjectConverter-sub000/pkg/dawproject"
)

// ISBUS folder annotation types. REAPER keeps tracks flat and encodes
// nesting on each track: a folder start opens one level, a folder end
// closes as many levels as its direction pops.
const (
	FolderNone  = 0
	FolderStart = 1
	FolderEnd   = 2
)

// MalformedHierarchyError reports a folder structure that cannot be
// rebuilt, such as a folder end popping below the top level.
type MalformedHierarchyError struct {
	Track  string
	Detail string
}

func (e *MalformedHierarchyError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("track %q: %s", e.Track, e.Detail)
	}
	return e.Detail
}

// TrackInfo is one entry of REAPER's flat track order. For a group entry
// the mix-bus child merged into the folder track rides along, so its
// channel state lands on the folder itself.
type TrackInfo struct {
	Track     *dawproject.Track
	MixBus    *dawproject.Track
	Type      int // FolderNone, FolderStart or FolderEnd
	Direction int // +1 opens a folder, -n closes n folders
}

// Channel returns the mixer channel the flat entry writes: the merged
// mix-bus child's for a group, the track's own otherwise.
func (ti *TrackInfo) Channel() *dawproject.Channel {
	if ti.MixBus != nil && ti.MixBus.Channel != nil {
		return ti.MixBus.Channel
	}
	if ti.Track == nil {
		return nil
	}
	return ti.Track.Channel
}

// Flatten linearizes a nested track tree into REAPER's track order. A
// group whose first master-role child acts as its mix bus absorbs that
// child; the group's last flattened descendant closes the folder by
// taking one extra pop. An empty group closes itself and degrades to a
// plain entry on the way back.
func Flatten(tracks []*dawproject.Track) []*TrackInfo {
	var out []*TrackInfo
	flattenInto(&out, tracks)
	return out
}

func flattenInto(out *[]*TrackInfo, tracks []*dawproject.Track) {
	for _, t := range tracks {
		if len(t.Tracks) == 0 {
			*out = append(*out, &TrackInfo{Track: t})
			continue
		}
		info := &TrackInfo{Track: t, Type: FolderStart, Direction: 1}
		children := t.Tracks
		if master := mixBusChild(t); master != nil {
			info.MixBus = master
			children = withoutTrack(children, master)
		}
		*out = append(*out, info)
		flattenInto(out, children)
		last := (*out)[len(*out)-1]
		last.Direction--
		last.Type = FolderEnd
	}
}

// mixBusChild returns the group's designated mix-bus child: the first
// direct child whose channel carries the master role.
func mixBusChild(group *dawproject.Track) *dawproject.Track {
	for _, c := range group.Tracks {
		if c.Channel != nil && c.Channel.Role == dawproject.RoleMaster {
			return c
		}
	}
	return nil
}

func withoutTrack(tracks []*dawproject.Track, drop *dawproject.Track) []*dawproject.Track {
	out := make([]*dawproject.Track, 0, len(tracks)-1)
	for _, t := range tracks {
		if t != drop {
			out = append(out, t)
		}
	}
	return out
}

// Unflatten rebuilds the nested track tree from the flat order. Every
// folder start becomes a group plus a synthesized mix-bus child that
// takes over the folder's channel, since a REAPER folder track is its
// own group output. Folder ends append inside the folder first, then
// pop; popping below the top level fails, as does a folder left open at
// the end.
func Unflatten(infos []*TrackInfo) ([]*dawproject.Track, error) {
	root := &dawproject.Track{}
	current := root
	var stack []*dawproject.Track

	for _, info := range infos {
		switch info.Type {
		case FolderStart:
			group := info.Track
			master := &dawproject.Track{
				Name:    group.Name + " Master",
				Channel: group.Channel,
			}
			if master.Channel != nil {
				master.Channel.Role = dawproject.RoleMaster
			}
			group.Channel = nil
			group.Tracks = []*dawproject.Track{master}
			group.ContentType = dawproject.ContentTracks
			current.Tracks = append(current.Tracks, group)
			stack = append(stack, current)
			current = group
		case FolderEnd:
			current.Tracks = append(current.Tracks, info.Track)
			for pops := -info.Direction; pops > 0; pops-- {
				if len(stack) == 0 {
					return nil, &MalformedHierarchyError{Track: info.Track.Name, Detail: "folder end pops below the top level"}
				}
				current = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
		default:
			current.Tracks = append(current.Tracks, info.Track)
		}
	}
	if len(stack) != 0 {
		return nil, &MalformedHierarchyError{Detail: fmt.Sprintf("%d folders never closed", len(stack))}
	}
	return root.Tracks, nil
}
