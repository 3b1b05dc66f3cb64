package vstchunk

import (
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const idFieldLen = 16

// Vst2IDToken renders the chunk ID token for a VST2 plugin: the decimal
// plugin ID followed, in angle brackets, by the hex rendering of a
// 16-character field holding the four big-endian ASCII ID bytes and the
// lower-cased plugin name, space-padded.
func Vst2IDToken(id uint32, name string) string {
	field := fourcc(id) + strings.ToLower(name)
	if len(field) > idFieldLen {
		field = field[:idFieldLen]
	} else {
		field += strings.Repeat(" ", idFieldLen-len(field))
	}
	return fmt.Sprintf("%d<%s>", id, hex.EncodeToString([]byte(field)))
}

// ParseVst2IDToken extracts the numeric plugin ID from a chunk ID token.
func ParseVst2IDToken(token string) (uint32, error) {
	head, _, _ := strings.Cut(token, "<")
	id, err := strconv.ParseUint(head, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("VST2 ID token %q: %w", token, ErrUnsupportedFormat)
	}
	return uint32(id), nil
}

// Vst3IDToken renders the chunk ID token for a VST3 plugin: the 31-bit
// FNV-1a hash of the byte-swapped class ID in braces, followed by the
// swapped ID itself.
func Vst3IDToken(classID string) (string, error) {
	swapped, raw, err := swapClassID(classID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("{%d}%s", fnv1a31(raw), swapped), nil
}

// Vst3IDHash computes the numeric identifier the chunk envelope carries
// for a VST3 plugin.
func Vst3IDHash(classID string) (uint32, error) {
	_, raw, err := swapClassID(classID)
	if err != nil {
		return 0, err
	}
	return fnv1a31(raw), nil
}

// ParseVst3IDToken extracts the canonical class ID from a chunk ID token,
// undoing the byte swap. The hash part is not verified; the swapped ID is
// authoritative.
func ParseVst3IDToken(token string) (string, error) {
	rest, ok := strings.CutPrefix(token, "{")
	if !ok {
		return "", fmt.Errorf("VST3 ID token %q: %w", token, ErrUnsupportedFormat)
	}
	_, swapped, ok := strings.Cut(rest, "}")
	if !ok {
		return "", fmt.Errorf("VST3 ID token %q: %w", token, ErrUnsupportedFormat)
	}
	canonical, _, err := swapClassID(swapped)
	if err != nil {
		return "", fmt.Errorf("VST3 ID token %q: %w", token, ErrUnsupportedFormat)
	}
	return canonical, nil
}

// NormalizeClassID renders a VST3 class ID, dashed or plain, as the
// canonical 32 upper-case hex characters.
func NormalizeClassID(classID string) (string, error) {
	id, err := uuid.Parse(classID)
	if err != nil {
		return "", fmt.Errorf("VST3 class ID %q: %w", classID, ErrUnsupportedFormat)
	}
	return strings.ToUpper(hex.EncodeToString(id[:])), nil
}

// swapClassID parses a VST3 class ID and byte-swaps the first three UUID
// groups (4, 2 and 2 bytes). The swap is its own inverse.
func swapClassID(classID string) (string, []byte, error) {
	id, err := uuid.Parse(classID)
	if err != nil {
		return "", nil, fmt.Errorf("VST3 class ID %q: %w", classID, ErrUnsupportedFormat)
	}
	swapped := make([]byte, 0, len(id))
	swapped = append(swapped,
		id[3], id[2], id[1], id[0],
		id[5], id[4],
		id[7], id[6])
	swapped = append(swapped, id[8:]...)
	return strings.ToUpper(hex.EncodeToString(swapped)), swapped, nil
}

// fnv1a31 hashes the given bytes with 32-bit FNV-1a masked to 31 bits.
func fnv1a31(data []byte) uint32 {
	h := fnv.New32a()
	h.Write(data)
	return h.Sum32() & 0x7FFFFFFF
}

// fourcc renders a numeric plugin ID as its four big-endian ASCII bytes.
func fourcc(id uint32) string {
	return string([]byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)})
}
