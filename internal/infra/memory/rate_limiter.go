package memory

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a fixed-window counter per key, for single-instance deployments.
type RateLimiter struct {
	limit  int
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	windows map[string]*counter
}

type counter struct {
	hits    int
	resetAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewRateLimiterWithClock(limit, window, time.Now)
}

// NewRateLimiterWithClock is test-only for deterministic windows.
func NewRateLimiterWithClock(limit int, window time.Duration, clock func() time.Time) *RateLimiter {
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clock:   clock,
		windows: make(map[string]*counter),
	}
}

func (l *RateLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := l.clock()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.windows) > 4096 {
		l.pruneLocked(now)
	}
	c, ok := l.windows[key]
	if !ok || !now.Before(c.resetAt) {
		c = &counter{resetAt: now.Add(l.window)}
		l.windows[key] = c
	}
	c.hits++
	return c.hits <= l.limit, nil
}

func (l *RateLimiter) pruneLocked(now time.Time) {
	for key, c := range l.windows {
		if !now.Before(c.resetAt) {
			delete(l.windows, key)
		}
	}
}
