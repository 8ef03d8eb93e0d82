package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"quiz-api/internal/domain"
)

// ScoreStore is an append-only in-memory implementation of app.ScoreRepository.
type ScoreStore struct {
	mu     sync.RWMutex
	scores []domain.Score
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{}
}

func (s *ScoreStore) Insert(_ context.Context, score *domain.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	score.ID = uuid.NewString()
	s.scores = append(s.scores, *score)
	return nil
}

func (s *ScoreStore) List(_ context.Context, filter domain.ScoreFilter) ([]domain.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Score, 0, len(s.scores))
	for _, sc := range s.scores {
		if filter.Matches(sc) {
			out = append(out, sc)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Score) int {
		return a.CompletedAt.Compare(b.CompletedAt)
	})
	return out, nil
}

func (s *ScoreStore) DeleteByUser(_ context.Context, userID string) error {
	s.deleteWhere(func(sc domain.Score) bool { return sc.UserID == userID })
	return nil
}

func (s *ScoreStore) DeleteByQuiz(_ context.Context, quizID string) error {
	s.deleteWhere(func(sc domain.Score) bool { return sc.QuizID == quizID })
	return nil
}

func (s *ScoreStore) deleteWhere(match func(domain.Score) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores = slices.DeleteFunc(s.scores, match)
}
