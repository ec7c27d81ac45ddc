package cmd

import (
	"errors"
	"fmt"
	"strings"

	"wav2hls/core/publish"
	"wav2hls/storage"

	"github.com/spf13/cobra"
)

type storageOptions struct {
	prefix string
	stats  bool
	delete bool
	yes    bool
}

func newStorageCmd(a *app) *cobra.Command {
	opts := &storageOptions{}

	storageCmd := &cobra.Command{
		Use:   "storage",
		Short: "List or delete published files in the bucket",
		Long:  `List the objects under a prefix as a tree, show bucket statistics, or delete everything under a prefix.`,
		Example: `  # list everything
  wav2hls storage

  # list one published track
  wav2hls storage -p audio/song

  # show statistics only
  wav2hls storage -s -p audio/

  # delete a published track after confirmation
  wav2hls storage -d -p audio/song

  # delete without asking
  wav2hls storage -d -p audio/song --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runStorage(cmd, opts)
		},
	}

	f := storageCmd.Flags()
	f.StringVarP(&opts.prefix, "prefix", "p", "", "only objects under this prefix")
	f.BoolVarP(&opts.stats, "stats", "s", false, "print totals instead of the tree")
	f.BoolVarP(&opts.delete, "delete", "d", false, "delete every object of the track named by --prefix (audio/<name>)")
	f.BoolVar(&opts.yes, "yes", false, "do not ask before deleting")
	return storageCmd
}

func (a *app) runStorage(cmd *cobra.Command, opts *storageOptions) error {
	ctx := cmd.Context()
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	store, err := a.newStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	bucket := a.cfg.StorageBucketName

	if opts.delete {
		prefix := strings.TrimRight(opts.prefix, "/")
		if prefix == "" {
			return errors.New("--delete requires --prefix")
		}
		var confirmer publish.Confirmer = publish.NewPromptConfirmer(a.in, a.out)
		if opts.yes {
			confirmer = publish.AlwaysAllow
		}
		guard := publish.NewGuard(store, confirmer, a.console)
		existing, err := guard.Existing(ctx, bucket, prefix)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			a.console.Infof("No files under '%s'.", prefix)
			return nil
		}
		ok, err := guard.Check(ctx, bucket, prefix)
		if err != nil {
			return err
		}
		if !ok {
			a.console.Infof("Nothing was deleted.")
		}
		return nil
	}

	objects, err := store.ListObjects(ctx, bucket, opts.prefix)
	if err != nil {
		return err
	}
	stats := storage.Summarize(objects)
	if !opts.stats {
		storage.WriteTree(a.out, objects)
	}
	fmt.Fprintf(a.out, "\nBucket: %s\n", bucket)
	fmt.Fprintf(a.out, "Objects: %d\n", stats.TotalObjects)
	fmt.Fprintf(a.out, "Total size: %s\n", storage.FormatSize(stats.TotalSize))
	if !stats.LastModified.IsZero() {
		fmt.Fprintf(a.out, "Last modified: %s\n", stats.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}
