package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-api/internal/app"
	"quiz-api/internal/domain"
)

// QuizCache keeps full quiz documents in Redis and falls back to the store on a miss.
// Quizzes are stored as JSON: SET quiz:{quizID} {json} EX ttl.
// Redis being unavailable degrades to reading the store directly.
type QuizCache struct {
	app.QuizRepository

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
}

func NewQuizCache(client *redis.Client, store app.QuizRepository, ttl time.Duration) *QuizCache {
	return &QuizCache{QuizRepository: store, client: client, ttl: ttl}
}

func (c *QuizCache) Get(ctx context.Context, id string) (domain.Quiz, error) {
	if quiz, ok := c.cached(ctx, id); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(id, func() (interface{}, error) {
		// Another caller may have filled it while we waited.
		if quiz, ok := c.cached(ctx, id); ok {
			return quiz, nil
		}
		quiz, err := c.QuizRepository.Get(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		payload, err := json.Marshal(quiz)
		if err == nil {
			err = c.client.Set(ctx, c.key(id), payload, c.ttlWithJitter()).Err()
		}
		if err != nil {
			log.Printf("cache quiz %s: %v", id, err)
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) Update(ctx context.Context, quiz domain.Quiz) error {
	err := c.QuizRepository.Update(ctx, quiz)
	c.invalidate(ctx, quiz.ID)
	return err
}

func (c *QuizCache) Delete(ctx context.Context, id string) error {
	err := c.QuizRepository.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

func (c *QuizCache) cached(ctx context.Context, id string) (domain.Quiz, bool) {
	payload, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read cached quiz %s: %v", id, err)
		}
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(payload, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		log.Printf("invalidate cached quiz %s: %v", id, err)
	}
}

func (c *QuizCache) key(id string) string {
	return "quiz:" + id
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
