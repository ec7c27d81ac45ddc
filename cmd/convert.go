package cmd

import (
	"fmt"
	"strings"
	"time"

	"wav2hls/cache"
	"wav2hls/core/audio"
	"wav2hls/core/pipeline"
	"wav2hls/core/publish"
	"wav2hls/db"
	"wav2hls/logger"
	"wav2hls/repository"

	"github.com/spf13/cobra"
)

type convertOptions struct {
	comp      bool
	uncomp    bool
	overwrite string
	workers   int
	timeout   time.Duration
}

func (o *convertOptions) mode() audio.Mode {
	if o.comp {
		return audio.Compressed
	}
	return audio.Uncompressed
}

func (a *app) confirmer(policy string) (publish.Confirmer, error) {
	switch policy {
	case "ask", "":
		return publish.NewPromptConfirmer(a.in, a.out), nil
	case "yes":
		return publish.AlwaysAllow, nil
	case "no":
		return publish.AlwaysDeny, nil
	default:
		return nil, fmt.Errorf("invalid --overwrite %q (want ask, yes or no)", policy)
	}
}

func (a *app) runConvert(cmd *cobra.Command, opts *convertOptions, input string) error {
	ctx := cmd.Context()

	if err := a.cfg.Validate(); err != nil {
		return err
	}
	confirmer, err := a.confirmer(opts.overwrite)
	if err != nil {
		return err
	}

	// flags override the loaded values on a private copy
	cfg := *a.cfg
	if opts.workers > 0 {
		cfg.UploadWorkers = opts.workers
	}
	if opts.timeout > 0 {
		cfg.TranscodeTimeout = opts.timeout
	}

	store, err := a.newStore(ctx, &cfg)
	if err != nil {
		return err
	}

	pipeOpts := []pipeline.Option{
		pipeline.WithConsole(a.console),
		pipeline.WithExecCmdCtx(a.execCmdCtx),
	}

	if cfg.RedisEnabled() {
		client := cache.NewRedisClient(&cfg)
		defer client.Close()
		if err := cache.Ping(ctx, client); err != nil {
			return err
		}
		pipeOpts = append(pipeOpts, pipeline.WithLocker(cache.NewRedisLocker(client, cfg.PrefixLockTTL)))
	}

	if cfg.CatalogEnabled() {
		gdb, err := db.ConnectGorm(&cfg)
		if err == nil {
			err = db.AutoMigrate(gdb)
		}
		if err != nil {
			logger.Warn("publication catalog disabled", logger.ErrorField(err))
		} else {
			defer db.Close(gdb)
			pipeOpts = append(pipeOpts, pipeline.WithCatalog(repository.NewGormPublicationRepository(gdb)))
		}
	}

	result, err := pipeline.New(&cfg, store, confirmer, pipeOpts...).
		Run(ctx, pipeline.Request{InputPath: input, Mode: opts.mode()})
	if err != nil {
		return err
	}
	if result.Aborted {
		a.console.Infof("Nothing was uploaded.")
		return nil
	}

	a.console.Successf("Uploaded %d files.", len(result.Uploaded))
	a.console.Successf("Playlist URL: %s", result.PlaylistURL)
	return nil
}

// tailLines keeps the last n lines of ffmpeg's stderr, where the actual error is.
func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
