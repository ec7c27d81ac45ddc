package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUncompressedSelectsCodec(t *testing.T) {
	b := NewCommandBuilder("", "", 0)
	for _, rate := range AllowedSampleRates {
		for _, depth := range []int{16, 24} {
			t.Run(fmt.Sprintf("%d-%d", rate, depth), func(t *testing.T) {
				spec, err := b.Build(AudioProbe{SampleRateHz: rate, BitDepth: depth, Channels: 2}, Uncompressed, "in.wav", "out")
				require.NoError(t, err)

				want := "pcm_s16le"
				if depth == 24 {
					want = "pcm_s24le"
				}
				assert.Equal(t, want, spec.CodecParams()["codec"])
				assert.Equal(t, fmt.Sprint(rate), spec.CodecParams()["sample_rate"])
				assert.Contains(t, spec.String(), "-c:a "+want)
				assert.Contains(t, spec.String(), fmt.Sprintf("-ar %d -ac 2", rate))
			})
		}
	}
}

func TestBuildUncompressedOtherDepthsUse16Bit(t *testing.T) {
	b := NewCommandBuilder("ffmpeg", "192k", 10)
	for _, depth := range []int{8, 32} {
		spec, err := b.Build(AudioProbe{SampleRateHz: 48000, BitDepth: depth}, Uncompressed, "in.wav", "out")
		require.NoError(t, err)
		assert.Equal(t, "pcm_s16le", spec.CodecParams()["codec"])
	}
}

func TestBuildUncompressedRejectsSampleRate(t *testing.T) {
	b := NewCommandBuilder("ffmpeg", "192k", 10)
	for _, rate := range []int{8000, 11025, 22050, 32000, 44099, 0} {
		t.Run(fmt.Sprint(rate), func(t *testing.T) {
			spec, err := b.Build(AudioProbe{SampleRateHz: rate, BitDepth: 16}, Uncompressed, "in.wav", "out")
			assert.Nil(t, spec)
			var rateErr *UnsupportedSampleRateError
			require.True(t, errors.As(err, &rateErr))
			assert.Equal(t, rate, rateErr.SampleRateHz)
		})
	}
}

func TestBuildUncompressedArgs(t *testing.T) {
	b := NewCommandBuilder("/usr/bin/ffmpeg", "192k", 10)
	out := filepath.Join("scratch", "hls")

	spec, err := b.Build(AudioProbe{SampleRateHz: 44100, BitDepth: 16, Channels: 1}, Uncompressed, "song.wav", out)
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/ffmpeg", spec.Program)
	assert.Equal(t, []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", "song.wav",
		"-ar", "44100",
		"-ac", "2",
		"-f", "segment",
		"-segment_time", "10",
		"-segment_format", "wav",
		"-segment_list", "index.m3u8",
		"-segment_list_type", "m3u8",
		"-c:a", "pcm_s16le",
		filepath.Join(out, "segment_%03d.wav"),
	}, spec.Args())
	assert.True(t, spec.RelocatePlaylist)
	assert.Equal(t, 10, spec.SegmentDurationSec)
	assert.Equal(t, PlaylistName, spec.PlaylistName)
}

func TestBuildCompressedIgnoresProbe(t *testing.T) {
	b := NewCommandBuilder("ffmpeg", "", 0)
	out := filepath.Join("scratch", "hls")
	probes := []AudioProbe{
		{},
		{SampleRateHz: 22050, BitDepth: 8, Channels: 1},
		{SampleRateHz: 192000, BitDepth: 24, Channels: 6},
		{SampleRateHz: -1, BitDepth: 99},
	}
	var first []string
	for i, probe := range probes {
		spec, err := b.Build(probe, Compressed, "song.wav", out)
		require.NoError(t, err)
		if i == 0 {
			first = spec.Args()
			continue
		}
		assert.Equal(t, first, spec.Args(), "probe %+v changed the command", probe)
	}

	assert.Equal(t, []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", "song.wav",
		"-codec:a", "aac",
		"-b:a", "192k",
		"-f", "hls",
		"-hls_time", "10",
		"-hls_playlist_type", "vod",
		"-hls_list_size", "0",
		"-hls_segment_type", "mpegts",
		"-hls_segment_filename", filepath.Join(out, "segment_%03d.ts"),
		filepath.Join(out, "index.m3u8"),
	}, first)
}

func TestBuildUsesConfiguredBitrateAndSegmentTime(t *testing.T) {
	b := NewCommandBuilder("ffmpeg", "256k", 6)

	spec, err := b.Build(AudioProbe{}, Compressed, "a.wav", "out")
	require.NoError(t, err)
	line := spec.String()
	assert.True(t, strings.Contains(line, "-b:a 256k"), line)
	assert.True(t, strings.Contains(line, "-hls_time 6"), line)
	assert.False(t, spec.RelocatePlaylist)
}

func TestSpecIsImmutable(t *testing.T) {
	spec, err := NewCommandBuilder("", "", 0).Build(AudioProbe{}, Compressed, "a.wav", "out")
	require.NoError(t, err)

	args := spec.Args()
	args[0] = "rm"
	params := spec.CodecParams()
	params["codec"] = "mp3"

	assert.Equal(t, "-hide_banner", spec.Args()[0])
	assert.Equal(t, "aac", spec.CodecParams()["codec"])
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"--comp", Compressed, false},
		{"comp", Compressed, false},
		{"Compressed", Compressed, false},
		{"--uncomp", Uncompressed, false},
		{"uncompressed", Uncompressed, false},
		{"flac", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestBuildUnknownMode(t *testing.T) {
	_, err := NewCommandBuilder("", "", 0).Build(AudioProbe{}, Mode(42), "a.wav", "out")
	assert.Error(t, err)
}
