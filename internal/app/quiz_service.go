package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"quiz-api/internal/domain"
	"quiz-api/internal/grading"
)

// QuizService contains the quiz use cases: browsing, attempts and admin CRUD.
type QuizService struct {
	quizzes  QuizRepository
	scores   ScoreRepository
	events   EventPublisher
	notifier ScoreNotifier
	now      func() time.Time
}

// NewQuizService wires the service. events and notifier may be nil.
func NewQuizService(quizzes QuizRepository, scores ScoreRepository, events EventPublisher, notifier ScoreNotifier) *QuizService {
	return &QuizService{
		quizzes:  quizzes,
		scores:   scores,
		events:   orNoopPublisher(events),
		notifier: orNoopNotifier(notifier),
		now:      time.Now,
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(quizzes QuizRepository, scores ScoreRepository, now func() time.Time) *QuizService {
	s := NewQuizService(quizzes, scores, nil, nil)
	s.now = now
	return s
}

// List returns every quiz as a summary. Correct answers are never included.
func (s *QuizService) List(ctx context.Context) ([]domain.QuizSummary, error) {
	quizzes, err := s.quizzes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	summaries := make([]domain.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		summaries = append(summaries, q.Summary())
	}
	return summaries, nil
}

// Get returns the full quiz as needed to render an attempt.
func (s *QuizService) Get(ctx context.Context, id string) (domain.Quiz, error) {
	return s.quizzes.Get(ctx, id)
}

// Submit grades an attempt and records it. Each call stores a new Score,
// even for repeated attempts by the same user.
func (s *QuizService) Submit(ctx context.Context, quizID, userID string, rawAnswers json.RawMessage) (domain.SubmissionResult, error) {
	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	result := grading.Grade(quiz, grading.DecodeAnswers(quiz, rawAnswers))

	score := domain.Score{
		UserID:      userID,
		QuizID:      quiz.ID,
		Score:       result.Score,
		MaxScore:    result.MaxScore,
		CompletedAt: s.now().UTC(),
	}
	if err := s.scores.Insert(ctx, &score); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("save score: %w", err)
	}

	publish(ctx, s.events, EventQuizSubmitted, score)
	s.notifier.ScoresChanged(ctx)

	return domain.SubmissionResult{
		Score:      result.Score,
		MaxScore:   result.MaxScore,
		Percentage: result.Percentage(),
	}, nil
}

// Create validates and stores a new quiz.
func (s *QuizService) Create(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if err := prepareQuiz(&quiz); err != nil {
		return domain.Quiz{}, err
	}
	quiz.ID = ""
	quiz.CreatedAt = s.now().UTC()
	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	publish(ctx, s.events, EventQuizCreated, quiz.Summary())
	return quiz, nil
}

// Update replaces the content of an existing quiz. Scores already recorded
// against it are kept.
func (s *QuizService) Update(ctx context.Context, id string, quiz domain.Quiz) (domain.Quiz, error) {
	existing, err := s.quizzes.Get(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := prepareQuiz(&quiz); err != nil {
		return domain.Quiz{}, err
	}
	quiz.ID = existing.ID
	quiz.CreatedAt = existing.CreatedAt
	if err := s.quizzes.Update(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	publish(ctx, s.events, EventQuizUpdated, quiz.Summary())
	return quiz, nil
}

// Delete removes a quiz together with every score recorded for it.
func (s *QuizService) Delete(ctx context.Context, id string) error {
	if err := s.quizzes.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.scores.DeleteByQuiz(ctx, id); err != nil {
		return fmt.Errorf("delete scores for quiz %s: %w", id, err)
	}
	publish(ctx, s.events, EventQuizDeleted, map[string]string{"id": id})
	s.notifier.ScoresChanged(ctx)
	return nil
}

func prepareQuiz(quiz *domain.Quiz) error {
	quiz.Normalize()
	if err := validateStruct(quiz); err != nil {
		return err
	}
	if err := quiz.CheckAnswerIndexes(); err != nil {
		return err
	}
	quiz.Slug = slug.Make(quiz.Title)
	return nil
}
