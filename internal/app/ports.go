package app

import (
	"context"
	"log"

	"quiz-api/internal/domain"
)

// QuizRepository persists quizzes (Mongo, Postgres, memory, optionally behind a cache).
// Create assigns the ID; Get/Update/Delete report domain.ErrQuizNotFound for unknown IDs.
type QuizRepository interface {
	List(ctx context.Context) ([]domain.Quiz, error)
	Get(ctx context.Context, id string) (domain.Quiz, error)
	Create(ctx context.Context, quiz *domain.Quiz) error
	Update(ctx context.Context, quiz domain.Quiz) error
	Delete(ctx context.Context, id string) error
}

// ScoreRepository stores immutable submission records. List returns records
// in completion order, oldest first.
type ScoreRepository interface {
	Insert(ctx context.Context, score *domain.Score) error
	List(ctx context.Context, filter domain.ScoreFilter) ([]domain.Score, error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByQuiz(ctx context.Context, quizID string) error
}

// UserRepository stores accounts. Create and Update report
// domain.ErrUsernameTaken or domain.ErrEmailTaken on uniqueness violations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Update(ctx context.Context, user domain.User) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher emits domain events to a broker. Failures are logged by
// callers and never fail the request that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// ScoreNotifier is told whenever the set of stored scores changes.
type ScoreNotifier interface {
	ScoresChanged(ctx context.Context)
}

// RateLimiter counts hits per key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

const (
	EventQuizSubmitted  = "quiz.submitted"
	EventQuizCreated    = "quiz.created"
	EventQuizUpdated    = "quiz.updated"
	EventQuizDeleted    = "quiz.deleted"
	EventUserRegistered = "user.registered"
	EventUserDeleted    = "user.deleted"
)

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, any) error { return nil }

type noopNotifier struct{}

func (noopNotifier) ScoresChanged(context.Context) {}

func publish(ctx context.Context, events EventPublisher, routingKey string, payload any) {
	if err := events.Publish(ctx, routingKey, payload); err != nil {
		log.Printf("publish %s failed: %v", routingKey, err)
	}
}

func orNoopPublisher(events EventPublisher) EventPublisher {
	if events == nil {
		return noopPublisher{}
	}
	return events
}

func orNoopNotifier(notifier ScoreNotifier) ScoreNotifier {
	if notifier == nil {
		return noopNotifier{}
	}
	return notifier
}
