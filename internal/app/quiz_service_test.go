package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"quiz-api/internal/app"
	"quiz-api/internal/domain"
	"quiz-api/internal/infra/memory"
	"quiz-api/internal/security"
)

type fixture struct {
	quizzes *memory.QuizStore
	scores  *memory.ScoreStore
	users   *memory.UserStore
	events  *recordingPublisher

	quiz        *app.QuizService
	auth        *app.AuthService
	accounts    *app.UserService
	leaderboard *app.LeaderboardService
	feed        *app.LeaderboardFeed
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		quizzes: memory.NewQuizStore(sampleQuiz()),
		scores:  memory.NewScoreStore(),
		users:   memory.NewUserStore(),
		events:  &recordingPublisher{},
	}
	tokens := security.NewTokens([]byte("test-secret"), time.Hour, time.Minute)
	f.leaderboard = app.NewLeaderboardService(f.scores, f.users, f.quizzes)
	f.feed = app.NewLeaderboardFeed(f.leaderboard)
	f.quiz = app.NewQuizService(f.quizzes, f.scores, f.events, f.feed)
	f.auth = app.NewAuthService(f.users, tokens, f.events)
	f.accounts = app.NewUserService(f.users, f.scores, f.events, f.feed)
	return f
}

func (f *fixture) register(t *testing.T, username string) domain.User {
	t.Helper()
	user, err := f.auth.Register(context.Background(), app.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password",
	}, false)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func TestSubmitGradesAndPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.register(t, "alice")

	result, err := f.quiz.Submit(ctx, "quiz-1", user.ID, json.RawMessage(`[1, [0, 2], 0]`))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.Score != 3 || result.MaxScore != 3 || result.Percentage != 100 {
		t.Fatalf("expected perfect score, got %+v", result)
	}

	scores, _ := f.scores.List(ctx, domain.ScoreFilter{UserID: user.ID})
	if len(scores) != 1 || scores[0].QuizID != "quiz-1" || scores[0].CompletedAt.IsZero() {
		t.Fatalf("expected one stored score, got %+v", scores)
	}
	if !f.events.has(app.EventQuizSubmitted) {
		t.Fatalf("expected submission event, got %v", f.events.keys())
	}
}

func TestSubmitEveryAttemptIsRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.register(t, "alice")

	for i := 0; i < 3; i++ {
		if _, err := f.quiz.Submit(ctx, "quiz-1", user.ID, json.RawMessage(`[]`)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	scores, _ := f.scores.List(ctx, domain.ScoreFilter{UserID: user.ID})
	if len(scores) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(scores))
	}
}

func TestSubmitMalformedAnswersScoreZero(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice")

	result, err := f.quiz.Submit(context.Background(), "quiz-1", user.ID, json.RawMessage(`{"not":"a list"}`))
	if err != nil {
		t.Fatalf("malformed answers must not fail: %v", err)
	}
	if result.Score != 0 || result.MaxScore != 3 || result.Percentage != 0 {
		t.Fatalf("expected 0/3, got %+v", result)
	}
}

func TestSubmitUnknownQuizDoesNotGrade(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.quiz.Submit(ctx, "missing", "u1", json.RawMessage(`[0]`))
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if scores, _ := f.scores.List(ctx, domain.ScoreFilter{}); len(scores) != 0 {
		t.Fatalf("no score should be stored, got %+v", scores)
	}
}

func TestListHidesAnswers(t *testing.T) {
	f := newFixture(t)
	list, err := f.quiz.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].QuestionCount != 3 || list[0].Title != "Mixed bag" {
		t.Fatalf("unexpected summaries: %+v", list)
	}
}

func TestCreateValidatesAndSlugs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	created, err := f.quiz.Create(ctx, domain.Quiz{
		Title:       "Go Basics 101",
		Description: "Channels and friends",
		Questions: []domain.Question{
			{Text: "Is nil a keyword?", Options: []string{"yes", "no"}, CorrectAnswers: []int{1}},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Slug != "go-basics-101" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected created quiz: %+v", created)
	}
	if created.Questions[0].Type != domain.QuestionSingle {
		t.Fatalf("expected default single type, got %q", created.Questions[0].Type)
	}

	bad := []domain.Quiz{
		{Description: "no title"},
		{Title: "t", Description: "d", Questions: []domain.Question{{Text: "q", Options: []string{"a"}, CorrectAnswers: []int{3}}}},
		{Title: "t", Description: "d", Questions: []domain.Question{{Text: "q", Options: []string{"a"}}}},
		{Title: "t", Description: "d", Questions: []domain.Question{{Text: "q", Type: "essay", Options: []string{"a"}, CorrectAnswers: []int{0}}}},
		{Title: "t", Description: "d", Questions: []domain.Question{{Text: "q", Options: []string{""}, CorrectAnswers: []int{0}}}},
	}
	for i, q := range bad {
		if _, err := f.quiz.Create(ctx, q); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestUpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	original, _ := f.quizzes.Get(ctx, "quiz-1")

	changed := sampleQuiz()
	changed.ID = "ignored"
	changed.Title = "Renamed quiz"
	updated, err := f.quiz.Update(ctx, "quiz-1", changed)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != "quiz-1" || updated.Slug != "renamed-quiz" || !updated.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("unexpected updated quiz: %+v", updated)
	}

	if _, err := f.quiz.Update(ctx, "missing", changed); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteQuizCascadesScores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.register(t, "alice")
	_, _ = f.quiz.Submit(ctx, "quiz-1", user.ID, json.RawMessage(`[1]`))

	if err := f.quiz.Delete(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if scores, _ := f.scores.List(ctx, domain.ScoreFilter{}); len(scores) != 0 {
		t.Fatalf("expected scores removed, got %+v", scores)
	}
	board, _ := f.leaderboard.Public(ctx, 0)
	if len(board) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", board)
	}
	if err := f.quiz.Delete(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestSubmitUsesClock(t *testing.T) {
	ctx := context.Background()
	quizzes := memory.NewQuizStore(sampleQuiz())
	scores := memory.NewScoreStore()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	service := app.NewQuizServiceWithClock(quizzes, scores, func() time.Time { return at })

	if _, err := service.Submit(ctx, "quiz-1", "u1", json.RawMessage(`[]`)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	stored, _ := scores.List(ctx, domain.ScoreFilter{})
	if !stored[0].CompletedAt.Equal(at) {
		t.Fatalf("expected completedAt %v, got %v", at, stored[0].CompletedAt)
	}
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:          "quiz-1",
		Title:       "Mixed bag",
		Description: "One of each question type",
		Questions: []domain.Question{
			{Text: "2 + 2?", Type: domain.QuestionSingle, Options: []string{"3", "4", "5"}, CorrectAnswers: []int{1}},
			{Text: "Primes?", Type: domain.QuestionMultiple, Options: []string{"2", "4", "5"}, CorrectAnswers: []int{2, 0}},
			{Text: "Go is compiled", Type: domain.QuestionBoolean, Options: []string{"True", "False"}, CorrectAnswers: []int{0}},
		},
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}

func (p *recordingPublisher) has(key string) bool {
	for _, k := range p.keys() {
		if k == key {
			return true
		}
	}
	return false
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}
