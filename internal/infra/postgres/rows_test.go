package postgres

import (
	"errors"
	"testing"
	"time"

	"quiz-api/internal/domain"
)

func TestQuizRowRoundTrip(t *testing.T) {
	quiz := domain.Quiz{
		ID:          "quiz-1",
		Slug:        "capitals",
		Title:       "Capitals",
		Description: "Europe",
		Questions: []domain.Question{
			{Text: "France?", Type: domain.QuestionSingle, Options: []string{"Paris", "Lyon"}, CorrectAnswers: []int{0}},
		},
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	back := quizRowFrom(quiz).toDomain()
	if back.ID != quiz.ID || back.Slug != quiz.Slug || len(back.Questions) != 1 || !back.CreatedAt.Equal(quiz.CreatedAt) {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestQuizRowNeverStoresNullQuestions(t *testing.T) {
	if row := quizRowFrom(domain.Quiz{Title: "Empty"}); row.Questions == nil {
		t.Fatalf("expected empty questions slice for jsonb column")
	}
}

func TestUserRowKeepsHash(t *testing.T) {
	user := domain.User{ID: "u1", Username: "alice", Email: "a@example.com", PasswordHash: "hash", Role: domain.RoleAdmin}
	if back := userRowFrom(user).toDomain(); back != user {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestUniqueViolationIgnoresOtherErrors(t *testing.T) {
	if got := uniqueViolation(errors.New("boom")); got != nil {
		t.Fatalf("expected nil for non-postgres error, got %v", got)
	}
}
