package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"wav2hls/config"
	"wav2hls/core/audio"
	"wav2hls/logger"
	"wav2hls/storage"

	"github.com/spf13/cobra"
)

// app carries what the commands share. Tests swap the loaders and launcher.
type app struct {
	console    *logger.Console
	in         io.Reader
	out        io.Writer
	loadConfig func() *config.Config
	newStore   func(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error)
	execCmdCtx audio.ExecCmdCtx

	cfg *config.Config
}

func newApp() *app {
	return &app{
		console:    logger.StdConsole(),
		in:         os.Stdin,
		out:        os.Stdout,
		loadConfig: config.Load,
		newStore:   storage.New,
		execCmdCtx: audio.ExecCommand,
	}
}

func newRootCmd(a *app) *cobra.Command {
	opts := &convertOptions{}

	rootCmd := &cobra.Command{
		Use:   "wav2hls <input.wav> (--comp | --uncomp)",
		Short: "Convert a WAV file to HLS and publish it to object storage",
		Long: `Convert a WAV file into an HLS playlist with AAC (--comp) or PCM WAV (--uncomp)
segments, then upload the playlist and segments under audio/<name>/ in the configured bucket.`,
		Example: `  wav2hls ./input/song.wav --uncomp
  wav2hls ./input/song.wav --comp --overwrite yes
  wav2hls ./input/song.wav --uncomp --workers 8 --timeout 30m`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Args: cobra.ExactArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = a.loadConfig()
			logger.InitLogger(logger.Config{
				Level:      logger.LogLevel(a.cfg.LogLevel),
				OutputPath: a.cfg.LogFile,
				MaxSize:    a.cfg.LogMaxSize,
				MaxBackups: a.cfg.LogMaxBackups,
				MaxAge:     a.cfg.LogMaxAge,
				Compress:   true,
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, opts, args[0])
		},
	}

	f := rootCmd.Flags()
	f.BoolVar(&opts.comp, "comp", false, "encode AAC into MPEG-TS segments")
	f.BoolVar(&opts.uncomp, "uncomp", false, "split into uncompressed PCM WAV segments")
	f.StringVar(&opts.overwrite, "overwrite", "ask", "what to do when the prefix already has files: ask, yes or no")
	f.IntVar(&opts.workers, "workers", 0, "parallel uploads (default UPLOAD_WORKERS)")
	f.DurationVar(&opts.timeout, "timeout", 0, "transcoder time limit (default TRANSCODE_TIMEOUT)")
	rootCmd.MarkFlagsMutuallyExclusive("comp", "uncomp")
	rootCmd.MarkFlagsOneRequired("comp", "uncomp")

	rootCmd.AddCommand(newStorageCmd(a))
	rootCmd.AddCommand(newRedisCmd(a))
	return rootCmd
}

// Execute runs the CLI and exits non-zero on any error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp()
	err := newRootCmd(a).ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		a.console.Errorf("%s", describe(err))
		stop()
		os.Exit(1)
	}
}

// describe adds a hint for errors the operator can act on.
func describe(err error) string {
	var cfgErr *config.ConfigError
	var tErr *audio.TranscodeError
	switch {
	case errors.As(err, &cfgErr):
		return cfgErr.Error()
	case errors.As(err, &tErr) && tErr.TimedOut:
		return fmt.Sprintf("%v (raise --timeout or TRANSCODE_TIMEOUT)", err)
	case errors.As(err, &tErr) && len(tErr.Stderr) > 0:
		return fmt.Sprintf("%v\n%s", err, tailLines(tErr.Stderr, 10))
	default:
		return err.Error()
	}
}
