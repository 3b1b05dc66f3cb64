package vstchunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVst2IDTokenGolden(t *testing.T) {
	// "Vita" packed big-endian, name lower-cased, space-padded to 16.
	assert.Equal(t,
		"1449751649<56697461766974616c20202020202020>",
		Vst2IDToken(0x56697461, "Vital"))

	// Long names truncate at the 16-char field.
	assert.Equal(t,
		"1094861636<4142434473757065726c6f6e67706c75>",
		Vst2IDToken(0x41424344, "SuperLongPluginName"))
}

func TestVst2IDTokenDeterministic(t *testing.T) {
	a := Vst2IDToken(0x52436d70, "ReaComp")
	b := Vst2IDToken(0x52436d70, "ReaComp")
	assert.Equal(t, a, b)
}

func TestParseVst2IDToken(t *testing.T) {
	id, err := ParseVst2IDToken("1449751649<56697461766974616c20202020202020>")
	require.NoError(t, err)
	assert.Equal(t, uint32(1449751649), id)

	id, err = ParseVst2IDToken("42")
	require.NoError(t, err)
	assert.Equal(t, uint32(42), id)

	_, err = ParseVst2IDToken("notanumber<00>")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestVst3IDTokenGolden(t *testing.T) {
	// First three UUID groups byte-swapped, FNV-1a over the swapped bytes
	// masked to 31 bits.
	token, err := Vst3IDToken("ABCDEF01-2345-6789-ABCD-EF0123456789")
	require.NoError(t, err)
	assert.Equal(t, "{1756527909}01EFCDAB45238967ABCDEF0123456789", token)

	// The plain 32-hex form yields the same token.
	plain, err := Vst3IDToken("ABCDEF0123456789ABCDEF0123456789")
	require.NoError(t, err)
	assert.Equal(t, token, plain)
}

func TestVst3IDHashGolden(t *testing.T) {
	hash, err := Vst3IDHash("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, uint32(1768495365), hash)
}

func TestVst3TokenRoundTrip(t *testing.T) {
	token, err := Vst3IDToken("abcdef01-2345-6789-abcd-ef0123456789")
	require.NoError(t, err)

	classID, err := ParseVst3IDToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF0123456789ABCDEF0123456789", classID)
}

func TestParseVst3IDTokenErrors(t *testing.T) {
	_, err := ParseVst3IDToken("1756527909<00>")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ParseVst3IDToken("{123")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ParseVst3IDToken("{123}nothexnothexnothexnothexnothexno")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNormalizeClassID(t *testing.T) {
	got, err := NormalizeClassID("abcdef01-2345-6789-abcd-ef0123456789")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF0123456789ABCDEF0123456789", got)

	got, err = NormalizeClassID("abcdef0123456789abcdef0123456789")
	require.NoError(t, err)
	assert.Equal(t, "ABCDEF0123456789ABCDEF0123456789", got)

	_, err = NormalizeClassID("tooshort")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
