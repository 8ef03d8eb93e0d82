package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"quiz-api/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizRepository.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
	order   []string
}

// NewQuizStore returns a store holding the given quizzes. Seeds without an ID get one.
func NewQuizStore(seed ...domain.Quiz) *QuizStore {
	s := &QuizStore{quizzes: make(map[string]domain.Quiz)}
	for _, q := range seed {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		s.quizzes[q.ID] = cloneQuiz(q)
		s.order = append(s.order, q.ID)
	}
	return s
}

func (s *QuizStore) List(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneQuiz(s.quizzes[id]))
	}
	return out, nil
}

func (s *QuizStore) Get(_ context.Context, id string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(q), nil
}

func (s *QuizStore) Create(_ context.Context, quiz *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz.ID = uuid.NewString()
	s.quizzes[quiz.ID] = cloneQuiz(*quiz)
	s.order = append(s.order, quiz.ID)
	return nil
}

func (s *QuizStore) Update(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *QuizStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[id]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(s.quizzes, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// cloneQuiz copies the question slices so callers cannot mutate stored state.
func cloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = slices.Clone(question.Options)
		question.CorrectAnswers = slices.Clone(question.CorrectAnswers)
		questions[i] = question
	}
	q.Questions = questions
	return q
}
