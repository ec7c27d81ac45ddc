// Package pipeline runs one WAV to HLS publish from input check to cleanup.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"wav2hls/cache"
	"wav2hls/config"
	"wav2hls/core/audio"
	"wav2hls/core/publish"
	"wav2hls/logger"
	"wav2hls/model"
	"wav2hls/repository"
	"wav2hls/storage"
)

// artifactDirName is the artifact directory inside the scratch root.
const artifactDirName = "hls"

// Request is one conversion asked for on the command line.
type Request struct {
	InputPath string
	Mode      audio.Mode
}

// InputNotFoundError is returned before any work when the input is missing or not a regular file.
type InputNotFoundError struct {
	Path string
	Err  error
}

func (e *InputNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input file %s not found: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("input file %s is not a regular file", e.Path)
}

func (e *InputNotFoundError) Unwrap() error { return e.Err }

// Pipeline wires inspection, conversion and publishing for a single run.
type Pipeline struct {
	cfg        *config.Config
	builder    *audio.CommandBuilder
	guard      *publish.Guard
	uploader   *publish.Uploader
	locker     cache.PrefixLocker
	catalog    repository.PublicationRepository
	console    *logger.Console
	execCmdCtx audio.ExecCmdCtx
}

type Option func(*Pipeline)

// WithExecCmdCtx replaces the launcher used for the transcoder.
func WithExecCmdCtx(fn audio.ExecCmdCtx) Option {
	return func(p *Pipeline) { p.execCmdCtx = fn }
}

// WithLocker serialises publishes to the same prefix across runs.
func WithLocker(l cache.PrefixLocker) Option {
	return func(p *Pipeline) { p.locker = l }
}

// WithCatalog records every successful publish.
func WithCatalog(repo repository.PublicationRepository) Option {
	return func(p *Pipeline) { p.catalog = repo }
}

// WithConsole sets where operator progress lines go.
func WithConsole(c *logger.Console) Option {
	return func(p *Pipeline) { p.console = c }
}

// New builds a pipeline. confirmer decides what happens to objects already under the prefix.
func New(cfg *config.Config, store storage.ObjectStore, confirmer publish.Confirmer, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:        cfg,
		builder:    audio.NewCommandBuilder(cfg.FFmpegPath, cfg.AudioBitrate, cfg.HLSSegmentTime),
		locker:     cache.NoopLocker{},
		console:    logger.StdConsole(),
		execCmdCtx: audio.ExecCommand,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.guard = publish.NewGuard(store, confirmer, p.console)
	p.uploader = publish.NewUploader(store, cfg.PublicBaseURL(), cfg.UploadWorkers, p.console)
	return p
}

// Run converts req into a scratch directory and publishes it. The scratch directory is
// removed on every return path. A declined overwrite returns a result with Aborted set
// and a nil error; any failed upload returns *publish.PublishError alongside the result.
func (p *Pipeline) Run(ctx context.Context, req Request) (*publish.PublishResult, error) {
	info, err := os.Stat(req.InputPath)
	if err != nil {
		return nil, &InputNotFoundError{Path: req.InputPath, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &InputNotFoundError{Path: req.InputPath}
	}

	prefix := publish.PrefixFor(req.InputPath)
	if err := publish.ValidatePrefix(prefix); err != nil {
		return nil, fmt.Errorf("input %s: %w", req.InputPath, err)
	}

	runID := uuid.NewString()
	bucket := p.cfg.StorageBucketName
	logger.Info("run started",
		logger.String("run_id", runID),
		logger.String("input", req.InputPath),
		logger.String("mode", req.Mode.String()),
		logger.String("prefix", prefix))

	if err := os.MkdirAll(p.cfg.ScratchDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scratch parent %s: %w", p.cfg.ScratchDir, err)
	}
	scratch, err := os.MkdirTemp(p.cfg.ScratchDir, "wav2hls-"+runID[:8]+"-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			logger.Warn("failed to remove scratch directory", logger.String("dir", scratch), logger.ErrorField(err))
		}
	}()

	probe, err := audio.Inspect(req.InputPath)
	if err != nil {
		return nil, err
	}
	p.console.Infof("Detected sample rate: %d Hz, bit depth: %d", probe.SampleRateHz, probe.BitDepth)

	spec, err := p.builder.Build(probe, req.Mode, req.InputPath, filepath.Join(scratch, artifactDirName))
	if err != nil {
		return nil, err
	}

	p.console.Infof("Converting %s to HLS (%s)...", filepath.Base(req.InputPath), req.Mode)
	processor := audio.NewFFmpegProcessor(scratch,
		audio.WithExecCmdCtx(p.execCmdCtx),
		audio.WithTimeout(p.cfg.TranscodeTimeout),
		audio.WithSegmentHook(func(name string) {
			p.console.Infof("Segment written: %s", name)
		}))
	artifact, err := processor.Run(ctx, spec)
	if err != nil {
		return nil, err
	}
	p.console.Infof("HLS conversion complete: %d segments", len(artifact.Segments))

	release, err := p.locker.Acquire(ctx, prefix)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("failed to release prefix lock", logger.String("prefix", prefix), logger.ErrorField(err))
		}
	}()

	ok, err := p.guard.Check(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	if !ok {
		p.console.Infof("Upload cancelled, existing files under '%s' were kept.", prefix)
		return &publish.PublishResult{Aborted: true}, nil
	}

	result, err := p.uploader.Publish(ctx, artifact.Dir, bucket, prefix)
	if err != nil {
		return nil, err
	}
	if len(result.Failures) > 0 {
		return result, &publish.PublishError{Prefix: prefix, Failures: result.Failures}
	}

	p.record(ctx, &model.Publication{
		RunID:        runID,
		Prefix:       prefix,
		Bucket:       bucket,
		PlaylistURL:  result.PlaylistURL,
		Mode:         req.Mode.String(),
		SampleRateHz: probe.SampleRateHz,
		BitDepth:     probe.BitDepth,
		SegmentCount: len(artifact.Segments),
	})

	logger.Info("run finished", logger.String("run_id", runID), logger.String("url", result.PlaylistURL))
	return result, nil
}

// record stores the publication. The upload already succeeded, so failures only warn.
func (p *Pipeline) record(ctx context.Context, pub *model.Publication) {
	if p.catalog == nil {
		return
	}
	if err := p.catalog.Create(ctx, pub); err != nil {
		logger.Warn("failed to record publication", logger.String("prefix", pub.Prefix), logger.ErrorField(err))
		return
	}
	logger.Debug("publication recorded", logger.String("run_id", pub.RunID))
}

