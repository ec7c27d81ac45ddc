package publish

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixFor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"song.wav", "audio/song"},
		{"./input/song.wav", "audio/song"},
		{"/abs/path/My Track.WAV", "audio/My Track"},
		{"noext", "audio/noext"},
		{"archive.tar.wav", "audio/archive.tar"},
		{".wav", "audio/.wav"},
		{"/in/.wav", "audio/.wav"},
		{".hidden.wav", "audio/.hidden"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PrefixFor(tt.input), tt.input)
	}
}

func TestValidatePrefix(t *testing.T) {
	for _, ok := range []string{"audio/song", "audio/song/", "audio/.wav", PrefixFor("/in/.wav")} {
		assert.NoError(t, ValidatePrefix(ok), ok)
	}
	for _, bad := range []string{"", "/", "audio", "audio/", "audio/.", "audio/..", "audio/a/b", "other/song"} {
		assert.ErrorIs(t, ValidatePrefix(bad), ErrUnsafePrefix, bad)
	}
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "audio/song/index.m3u8", ObjectKey("audio/song", "index.m3u8"))
	assert.Equal(t, "audio/song/index.m3u8", ObjectKey("audio/song/", "index.m3u8"))
	assert.Equal(t, "audio/song/sub/segment_000.wav", ObjectKey("audio/song", "sub/./segment_000.wav"))
}

func TestObjectKeyInjective(t *testing.T) {
	rels := []string{
		"index.m3u8",
		"segment_000.wav",
		"segment_001.wav",
		"segment_010.wav",
		"sub/segment_000.wav",
		"sub/index.m3u8",
		"segment_000.ts",
	}
	seen := make(map[string]string, len(rels))
	for _, rel := range rels {
		key := ObjectKey("audio/song", rel)
		if prev, ok := seen[key]; ok {
			t.Fatalf("%q and %q both map to %q", prev, rel, key)
		}
		seen[key] = rel
	}
}

func TestPlaylistURL(t *testing.T) {
	assert.Equal(t,
		"https://example.r2.dev/media/audio/song/index.m3u8",
		PlaylistURL("https://example.r2.dev/", "media", "audio/song", "index.m3u8"))
}
