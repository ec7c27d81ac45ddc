package audio

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Mode selects the HLS flavour produced from a WAV input.
type Mode int

const (
	// Compressed re-encodes to AAC in MPEG-TS segments; plays in every HLS client.
	Compressed Mode = iota + 1
	// Uncompressed splits into PCM WAV segments without re-encoding loss.
	Uncompressed
)

func (m Mode) String() string {
	switch m {
	case Compressed:
		return "compressed"
	case Uncompressed:
		return "uncompressed"
	default:
		return "unknown"
	}
}

// ParseMode accepts the CLI spellings "comp"/"uncomp" as well as the full names.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimLeft(strings.TrimSpace(s), "-")) {
	case "comp", "compressed", "aac":
		return Compressed, nil
	case "uncomp", "uncompressed", "pcm":
		return Uncompressed, nil
	default:
		return 0, fmt.Errorf("unknown conversion mode %q (want comp or uncomp)", s)
	}
}

const (
	// PlaylistName is the playlist file name in every artifact.
	PlaylistName = "index.m3u8"
	// WavSegmentPattern names uncompressed segments segment_000.wav, segment_001.wav, ...
	WavSegmentPattern = "segment_%03d.wav"
	// TSSegmentPattern names compressed segments segment_000.ts, segment_001.ts, ...
	TSSegmentPattern = "segment_%03d.ts"

	DefaultBitrate     = "192k"
	DefaultSegmentTime = 10
	uncompressedChans  = 2
)

// AllowedSampleRates are the rates ffmpeg splits into PCM segments without resampling artefacts.
var AllowedSampleRates = []int{44100, 48000, 88200, 96000, 176400, 192000}

// UnsupportedSampleRateError is returned for uncompressed conversions of other rates.
type UnsupportedSampleRateError struct {
	SampleRateHz int
}

func (e *UnsupportedSampleRateError) Error() string {
	return fmt.Sprintf("unsupported sample rate for uncompressed HLS: %d Hz (allowed: %v)", e.SampleRateHz, AllowedSampleRates)
}

// ConversionSpec is one fully resolved transcoder invocation.
// It is immutable once built; Args and CodecParams return copies.
type ConversionSpec struct {
	Mode               Mode
	InputPath          string
	OutputDir          string
	SegmentDurationSec int
	Program            string
	PlaylistName       string
	// RelocatePlaylist is set when the transcoder writes the playlist into its
	// working directory instead of OutputDir.
	RelocatePlaylist bool

	codecParams map[string]string
	args        []string
}

func (s *ConversionSpec) Args() []string {
	return slices.Clone(s.args)
}

func (s *ConversionSpec) CodecParams() map[string]string {
	return maps.Clone(s.codecParams)
}

// String renders the command line for logging.
func (s *ConversionSpec) String() string {
	return s.Program + " " + strings.Join(s.args, " ")
}

// CommandBuilder turns a probe and a mode into a ConversionSpec. It has no side effects.
type CommandBuilder struct {
	ffmpegPath  string
	bitrate     string
	segmentTime int
}

// NewCommandBuilder falls back to "ffmpeg", 192k and 10s for empty or non-positive values.
func NewCommandBuilder(ffmpegPath, bitrate string, segmentTime int) *CommandBuilder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if bitrate == "" {
		bitrate = DefaultBitrate
	}
	if segmentTime <= 0 {
		segmentTime = DefaultSegmentTime
	}
	return &CommandBuilder{ffmpegPath: ffmpegPath, bitrate: bitrate, segmentTime: segmentTime}
}

func (b *CommandBuilder) Build(probe AudioProbe, mode Mode, inputPath, outputDir string) (*ConversionSpec, error) {
	switch mode {
	case Compressed:
		return b.compressed(inputPath, outputDir), nil
	case Uncompressed:
		return b.uncompressed(probe, inputPath, outputDir)
	default:
		return nil, fmt.Errorf("unknown conversion mode %d", mode)
	}
}

// commonArgs keeps ffmpeg from prompting on stdin or on existing output files.
func commonArgs() []string {
	return []string{"-hide_banner", "-nostdin", "-y"}
}

func (b *CommandBuilder) compressed(inputPath, outputDir string) *ConversionSpec {
	segmentTime := strconv.Itoa(b.segmentTime)
	args := append(commonArgs(),
		"-i", inputPath,
		"-codec:a", "aac",
		"-b:a", b.bitrate,
		"-f", "hls",
		"-hls_time", segmentTime,
		"-hls_playlist_type", "vod",
		"-hls_list_size", "0",
		"-hls_segment_type", "mpegts",
		"-hls_segment_filename", filepath.Join(outputDir, TSSegmentPattern),
		filepath.Join(outputDir, PlaylistName),
	)
	return &ConversionSpec{
		Mode:               Compressed,
		InputPath:          inputPath,
		OutputDir:          outputDir,
		SegmentDurationSec: b.segmentTime,
		Program:            b.ffmpegPath,
		PlaylistName:       PlaylistName,
		codecParams: map[string]string{
			"codec":        "aac",
			"bitrate":      b.bitrate,
			"segment_type": "mpegts",
		},
		args: args,
	}
}

func (b *CommandBuilder) uncompressed(probe AudioProbe, inputPath, outputDir string) (*ConversionSpec, error) {
	if !slices.Contains(AllowedSampleRates, probe.SampleRateHz) {
		return nil, &UnsupportedSampleRateError{SampleRateHz: probe.SampleRateHz}
	}

	codec := pcmCodec(probe.BitDepth)
	sampleRate := strconv.Itoa(probe.SampleRateHz)
	args := append(commonArgs(),
		"-i", inputPath,
		"-ar", sampleRate,
		"-ac", strconv.Itoa(uncompressedChans),
		"-f", "segment",
		"-segment_time", strconv.Itoa(b.segmentTime),
		"-segment_format", "wav",
		// the segment muxer resolves the list path against its working directory
		"-segment_list", PlaylistName,
		"-segment_list_type", "m3u8",
		"-c:a", codec,
		filepath.Join(outputDir, WavSegmentPattern),
	)
	return &ConversionSpec{
		Mode:               Uncompressed,
		InputPath:          inputPath,
		OutputDir:          outputDir,
		SegmentDurationSec: b.segmentTime,
		Program:            b.ffmpegPath,
		PlaylistName:       PlaylistName,
		RelocatePlaylist:   true,
		codecParams: map[string]string{
			"codec":          codec,
			"sample_rate":    sampleRate,
			"channels":       strconv.Itoa(uncompressedChans),
			"segment_format": "wav",
		},
		args: args,
	}, nil
}

// pcmCodec keeps 24-bit sources at 24 bits; everything else is written as 16-bit.
func pcmCodec(bitDepth int) string {
	if bitDepth == 24 {
		return "pcm_s24le"
	}
	return "pcm_s16le"
}
