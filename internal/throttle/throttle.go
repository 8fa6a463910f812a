// Package throttle bounds the number of login attempts per account.
package throttle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "login_attempts:"

// Limiter counts attempts per key within a fixed window.
type Limiter interface {
	// Allow records one attempt and reports whether it is within budget.
	Allow(ctx context.Context, key string) (bool, error)
	// Reset clears the attempts recorded for key.
	Reset(ctx context.Context, key string) error
}

// NewRedisClient returns a go-redis client for redisURL after a ping.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("empty redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// RedisLimiter is a fixed-window counter stored in Redis. The window starts
// at the first attempt and the key expires with it.
type RedisLimiter struct {
	client      redis.Cmdable
	maxAttempts int64
	window      time.Duration
}

// NewRedisLimiter constructs a RedisLimiter.
func NewRedisLimiter(client redis.Cmdable, maxAttempts int, window time.Duration) (*RedisLimiter, error) {
	if maxAttempts < 1 {
		return nil, errors.New("max attempts must be at least 1")
	}
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	return &RedisLimiter{
		client:      client,
		maxAttempts: int64(maxAttempts),
		window:      window,
	}, nil
}

// Allow counts one attempt. INCR and EXPIRE NX run in one MULTI/EXEC so a
// counter never outlives its window, and a key left without a TTL gets one on
// the next attempt.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := keyPrefix + normalize(key)

	var count *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("count login attempt: %w", err)
	}
	return count.Val() <= l.maxAttempts, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, keyPrefix+normalize(key)).Err(); err != nil {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
