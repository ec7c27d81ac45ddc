package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		bitDepth   int
		channels   int
	}{
		{"cd quality", 44100, 16, 2},
		{"studio 24 bit", 96000, 24, 2},
		{"mono 8 bit", 22050, 8, 1},
		{"float width", 48000, 32, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeWav(t, t.TempDir(), "in.wav", tt.sampleRate, tt.bitDepth, tt.channels, 64)

			probe, err := Inspect(path)
			require.NoError(t, err)
			assert.Equal(t, AudioProbe{SampleRateHz: tt.sampleRate, BitDepth: tt.bitDepth, Channels: tt.channels}, probe)
		})
	}
}

func TestInspectRejectsNonWav(t *testing.T) {
	dir := t.TempDir()
	notWav := filepath.Join(dir, "notes.wav")
	require.NoError(t, os.WriteFile(notWav, []byte("this is plain text, not a RIFF container"), 0o644))
	empty := filepath.Join(dir, "empty.wav")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	// A well-formed fmt chunk inside an AVI form.
	avi := writeWav(t, dir, "clip.wav", 44100, 16, 2, 64)
	data, err := os.ReadFile(avi)
	require.NoError(t, err)
	copy(data[8:12], "AVI ")
	require.NoError(t, os.WriteFile(avi, data, 0o644))

	for _, path := range []string{notWav, empty, avi, filepath.Join(dir, "missing.wav")} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			_, err := Inspect(path)
			var formatErr *FormatError
			require.True(t, errors.As(err, &formatErr), "got %v", err)
			assert.Equal(t, path, formatErr.Path)
		})
	}
}
