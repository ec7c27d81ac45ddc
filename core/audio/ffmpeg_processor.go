package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wav2hls/logger"
)

// TranscodeError reports a failed or timed-out transcoder run. It is never retried:
// the same input and spec fail the same way.
type TranscodeError struct {
	Program  string
	ExitCode int // -1 when the process did not exit normally
	Stderr   string
	TimedOut bool
	Err      error
}

func (e *TranscodeError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s timed out and was killed: %v", e.Program, e.Err)
	}
	return fmt.Sprintf("%s failed with exit code %d: %v", e.Program, e.ExitCode, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// ArtifactRelocationError means the playlist could not be moved into the output directory.
type ArtifactRelocationError struct {
	From string
	To   string
	Err  error
}

func (e *ArtifactRelocationError) Error() string {
	return fmt.Sprintf("move %s to %s: %v", e.From, e.To, e.Err)
}

func (e *ArtifactRelocationError) Unwrap() error { return e.Err }

// FFmpegProcessor executes ConversionSpecs and hands back verified artifacts.
type FFmpegProcessor struct {
	execCmdCtx ExecCmdCtx
	workDir    string
	timeout    time.Duration
	onSegment  func(name string)
}

type Option func(*FFmpegProcessor)

// WithExecCmdCtx replaces the os/exec launcher.
func WithExecCmdCtx(fn ExecCmdCtx) Option {
	return func(p *FFmpegProcessor) { p.execCmdCtx = fn }
}

// WithTimeout bounds the transcoder's wall-clock time. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(p *FFmpegProcessor) { p.timeout = d }
}

// WithSegmentHook is called once per segment file as the transcoder creates it.
func WithSegmentHook(fn func(name string)) Option {
	return func(p *FFmpegProcessor) { p.onSegment = fn }
}

// NewFFmpegProcessor creates a processor whose transcoder runs inside workDir.
// workDir is where the segment muxer drops its playlist.
func NewFFmpegProcessor(workDir string, opts ...Option) *FFmpegProcessor {
	p := &FFmpegProcessor{
		execCmdCtx: ExecCommand,
		workDir:    workDir,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes spec, moves a misplaced playlist into spec.OutputDir and verifies
// that the playlist lists exactly the segments on disk.
func (p *FFmpegProcessor) Run(ctx context.Context, spec *ConversionSpec) (*Artifact, error) {
	if err := os.MkdirAll(spec.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", spec.OutputDir, err)
	}
	if p.workDir != "" {
		if err := os.MkdirAll(p.workDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create work directory %s: %w", p.workDir, err)
		}
	}

	runCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	logger.Info("executing transcoder",
		logger.String("mode", spec.Mode.String()),
		logger.String("cmd", spec.String()),
		logger.String("workDir", p.workDir))

	start := time.Now()
	stopWatching := watchSegments(spec.OutputDir, spec.PlaylistName, p.onSegment)
	stderr, err := p.execCmdCtx(runCtx, p.workDir, spec.Program, spec.Args()...).Run()
	stopWatching()
	if err != nil {
		return nil, newTranscodeError(runCtx, spec.Program, err, stderr)
	}
	logger.Info("transcoder finished",
		logger.String("input", spec.InputPath),
		logger.Duration("elapsed", time.Since(start)))

	if spec.RelocatePlaylist {
		if err := p.relocatePlaylist(spec); err != nil {
			return nil, err
		}
	}

	return VerifyArtifact(spec.OutputDir, spec.PlaylistName)
}

func newTranscodeError(ctx context.Context, program string, err error, stderr []byte) *TranscodeError {
	te := &TranscodeError{
		Program:  program,
		ExitCode: -1,
		Stderr:   strings.TrimSpace(string(stderr)),
		Err:      err,
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		te.TimedOut = true
		te.Err = ctx.Err()
		return te
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		te.ExitCode = ec.ExitCode()
	}
	return te
}

func (p *FFmpegProcessor) relocatePlaylist(spec *ConversionSpec) error {
	from := filepath.Join(p.workDir, spec.PlaylistName)
	to := filepath.Join(spec.OutputDir, spec.PlaylistName)
	if filepath.Clean(from) == filepath.Clean(to) {
		return nil
	}

	err := os.Rename(from, to)
	if err != nil {
		// rename fails across filesystems; copy then remove
		err = moveByCopy(from, to)
	}
	if err != nil {
		return &ArtifactRelocationError{From: from, To: to, Err: err}
	}
	logger.Debug("playlist relocated", logger.String("from", from), logger.String("to", to))
	return nil
}

func moveByCopy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
