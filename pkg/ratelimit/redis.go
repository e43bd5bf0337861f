package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
)

// RedisLimiter is a fixed-window counter shared across instances. The key
// expires with the window, so stale clients cost nothing.
type RedisLimiter struct {
	client  *redis.Client
	window  time.Duration
	ceiling int
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(client *redis.Client, window time.Duration, ceiling int) *RedisLimiter {
	return &RedisLimiter{
		client:  client,
		window:  window,
		ceiling: ceiling,
	}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) error {
	redisKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("rate limit counter: %w", err)
	}
	if count == 1 {
		// First hit in this window; start the clock.
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return fmt.Errorf("rate limit expiry: %w", err)
		}
	}

	if int(count) > l.ceiling {
		return apperrors.ErrRateLimited
	}
	return nil
}

var _ Limiter = (*RedisLimiter)(nil)
