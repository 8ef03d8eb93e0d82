package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-api/internal/app"
	"quiz-api/internal/domain"
)

// QuizCache wraps a quiz store with a TTL cache for Get to avoid repeated DB hits.
// Writes go straight to the store and drop the cached copy.
type QuizCache struct {
	app.QuizRepository

	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedQuiz
	// gens counts invalidations per id; a load only fills the cache if no
	// invalidation happened while it ran.
	gens map[string]uint64
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(store app.QuizRepository, ttl time.Duration) *QuizCache {
	return &QuizCache{
		QuizRepository: store,
		ttl:            ttl,
		clock:          time.Now,
		cache:          make(map[string]cachedQuiz),
		gens:           make(map[string]uint64),
	}
}

func (c *QuizCache) Get(ctx context.Context, id string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(id); ok {
		return quiz, nil
	}

	// The load is shared, so one caller's cancellation must not fail the rest.
	loadCtx := context.WithoutCancel(ctx)
	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		if quiz, ok := c.lookup(id); ok {
			return quiz, nil
		}
		c.mu.RLock()
		gen := c.gens[id]
		c.mu.RUnlock()

		quiz, err := c.QuizRepository.Get(loadCtx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.mu.Lock()
		if c.gens[id] == gen {
			c.cache[id] = cachedQuiz{quiz: quiz, expiresAt: c.clock().Add(c.ttlWithJitter())}
		}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return cloneQuiz(result.(domain.Quiz)), nil
}

func (c *QuizCache) Update(ctx context.Context, quiz domain.Quiz) error {
	err := c.QuizRepository.Update(ctx, quiz)
	c.Invalidate(quiz.ID)
	return err
}

func (c *QuizCache) Delete(ctx context.Context, id string) error {
	err := c.QuizRepository.Delete(ctx, id)
	c.Invalidate(id)
	return err
}

// Invalidate drops one cached quiz. Loads already in flight still return
// to their callers but no longer populate the cache.
func (c *QuizCache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.cache, id)
	c.gens[id]++
	c.mu.Unlock()
	c.sf.Forget(id)
}

func (c *QuizCache) lookup(id string) (domain.Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[id]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Quiz{}, false
	}
	return cloneQuiz(entry.quiz), true
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter spreads expirations
	return c.ttl + time.Duration(rand.Int63n(int64(c.ttl)/10+1))
}
