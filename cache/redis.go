package cache

import (
	"context"
	"fmt"
	"time"

	"wav2hls/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient 根据配置创建Redis客户端
func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// Ping verifies connectivity with a short timeout.
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// CheckRoundTrip 测试Redis连接和基本操作
func CheckRoundTrip(ctx context.Context, client *redis.Client) error {
	const (
		key   = "wav2hls:healthcheck"
		value = "Redis connection successful!"
	)

	if err := client.Set(ctx, key, value, time.Minute).Err(); err != nil {
		return fmt.Errorf("failed to set Redis key: %w", err)
	}

	got, err := client.Get(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to get Redis key: %w", err)
	}
	if got != value {
		return fmt.Errorf("unexpected value from Redis: got %s", got)
	}

	if err := client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete Redis key: %w", err)
	}
	return nil
}
