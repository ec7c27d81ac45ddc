package cmd

import (
	"errors"

	"wav2hls/cache"

	"github.com/spf13/cobra"
)

func newRedisCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "redis",
		Short: "Check the Redis connection used by the prefix lock",
		Long:  `Connect to REDIS_ADDR and run a set/get/delete round trip.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !a.cfg.RedisEnabled() {
				return errors.New("REDIS_ADDR is not set, the prefix lock is disabled")
			}

			a.console.Infof("Connecting to Redis at %s (db %d)...", a.cfg.RedisAddr, a.cfg.RedisDB)
			client := cache.NewRedisClient(a.cfg)
			defer client.Close()

			if err := cache.Ping(ctx, client); err != nil {
				return err
			}
			if err := cache.CheckRoundTrip(ctx, client); err != nil {
				return err
			}
			a.console.Successf("Redis connection and read/write check passed.")
			return nil
		},
	}
}
