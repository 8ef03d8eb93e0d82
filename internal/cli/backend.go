package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"quiz-api/internal/app"
	"quiz-api/internal/config"
	"quiz-api/internal/infra/memory"
	mongostore "quiz-api/internal/infra/mongo"
	pgstore "quiz-api/internal/infra/postgres"
)

// backend is the set of stores selected by storage.driver.
type backend struct {
	quizzes app.QuizRepository
	scores  app.ScoreRepository
	users   app.UserRepository
	closers []func()
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			mongostore.Disconnect(client)
			return nil, err
		}
		return &backend{
			quizzes: mongostore.NewQuizStore(db),
			scores:  mongostore.NewScoreStore(db),
			users:   mongostore.NewUserStore(db),
			closers: []func(){func() { mongostore.Disconnect(client) }},
		}, nil

	case config.DriverPostgres:
		db, err := pgstore.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if err := pgstore.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		return &backend{
			quizzes: pgstore.NewQuizStore(db),
			scores:  pgstore.NewScoreStore(db),
			users:   pgstore.NewUserStore(db),
			closers: []func(){func() { db.Close() }},
		}, nil

	case config.DriverMemory:
		log.Printf("using in-memory storage; data is lost on restart")
		return &backend{
			quizzes: memory.NewQuizStore(),
			scores:  memory.NewScoreStore(),
			users:   memory.NewUserStore(),
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// openRedis returns nil when Redis is not configured.
func openRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
	}
	return client, nil
}

// seedIfEmpty loads the seed file into a store that has no quizzes yet.
func seedIfEmpty(ctx context.Context, quizzes *app.QuizService, path string) (int, error) {
	existing, err := quizzes.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	seed, err := config.LoadQuizzes(path)
	if err != nil {
		return 0, err
	}
	for _, quiz := range seed {
		if _, err := quizzes.Create(ctx, quiz); err != nil {
			return 0, fmt.Errorf("seed quiz %q: %w", quiz.Title, err)
		}
	}
	return len(seed), nil
}
