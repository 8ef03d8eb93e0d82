package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter shared by every instance:
// INCR ratelimit:{name}:{key}, with the window set as expiry whenever the
// key has none, so a lost PEXPIRE heals on the next hit.
type RateLimiter struct {
	client *redis.Client
	name   string
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, name string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, name: name, limit: limit, window: window}
}

func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := "ratelimit:" + l.name + ":" + key
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		ttl = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	hits := incr.Val()
	// PTTL reports -1 for a key without expiry.
	if ttl.Val() < 0 {
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return hits <= int64(l.limit), nil
}
