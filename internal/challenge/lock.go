package challenge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker is a SET NX lock so concurrent processes do not all hit the
// movie provider on the first request of a day.
type RedisLocker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

var _ Locker = (*RedisLocker)(nil)

func NewRedisLocker(client *redis.Client, logger zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		redis:  client,
		logger: logger.With().Str("component", "challenge_lock").Logger(),
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	lockKey := "challenge:lock:" + key
	lockValue := uuid.New().String()

	acquired, err := l.redis.SetNX(ctx, lockKey, lockValue, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	release := func() {
		// The request context may already be done.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.redis, []string{lockKey}, lockValue).Err(); err != nil {
			l.logger.Warn().Err(err).Str("key", lockKey).Msg("release lock failed")
		}
	}
	return release, true, nil
}
