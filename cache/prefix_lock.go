package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"wav2hls/logger"
)

const (
	lockKeyPrefix  = "wav2hls:lock:"
	DefaultLockTTL = 30 * time.Minute
)

// ErrPrefixLocked is returned when another run is publishing to the same prefix.
var ErrPrefixLocked = errors.New("prefix is locked by another run")

// ReleaseFunc gives the lock back. It is safe to call more than once.
type ReleaseFunc func(ctx context.Context) error

// PrefixLocker serialises publishes per remote prefix.
type PrefixLocker interface {
	Acquire(ctx context.Context, prefix string) (ReleaseFunc, error)
}

// NoopLocker is used when no Redis is configured.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}

// only the holder's token may delete the key
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds a SET NX lock with a TTL so a crashed run cannot block a prefix forever.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}
}

func lockKey(prefix string) string {
	return lockKeyPrefix + prefix
}

func (l *RedisLocker) Acquire(ctx context.Context, prefix string) (ReleaseFunc, error) {
	key := lockKey(prefix)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrefixLocked, prefix)
	}
	logger.Debug("prefix lock acquired", logger.String("key", key), logger.Duration("ttl", l.ttl))

	released := false
	return func(ctx context.Context) error {
		if released {
			return nil
		}
		released = true
		n, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int()
		if err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		if n == 0 {
			logger.Warn("prefix lock expired before release", logger.String("key", key))
		}
		return nil
	}, nil
}
