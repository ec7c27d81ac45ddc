package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"
)

// AudioProbe holds the header fields of a WAV file that drive command construction.
type AudioProbe struct {
	SampleRateHz int
	BitDepth     int
	Channels     int
}

// FormatError means the input is not a readable WAV container.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid WAV file %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Inspect reads sample rate, bit depth and channel count from the fmt chunk.
// Sample data is never decoded.
func Inspect(path string) (AudioProbe, error) {
	f, err := os.Open(path)
	if err != nil {
		return AudioProbe{}, &FormatError{Path: path, Err: err}
	}
	defer f.Close()

	// wav.Decoder does not check the RIFF form type.
	header := riff.New(f)
	if err := header.ParseHeaders(); err != nil {
		return AudioProbe{}, &FormatError{Path: path, Err: err}
	}
	if header.Format != riff.WavFormatID {
		return AudioProbe{}, &FormatError{Path: path, Err: fmt.Errorf("RIFF form type %q is not WAVE", header.Format[:])}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return AudioProbe{}, &FormatError{Path: path, Err: err}
	}

	d := wav.NewDecoder(f)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return AudioProbe{}, &FormatError{Path: path, Err: err}
	}
	if d.SampleRate == 0 || d.BitDepth == 0 || d.NumChans == 0 {
		return AudioProbe{}, &FormatError{Path: path, Err: errors.New("missing or empty fmt chunk")}
	}

	return AudioProbe{
		SampleRateHz: int(d.SampleRate),
		BitDepth:     int(d.BitDepth),
		Channels:     int(d.NumChans),
	}, nil
}
