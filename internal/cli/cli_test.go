package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"quiz-api/internal/app"
	"quiz-api/internal/config"
	"quiz-api/internal/domain"
)

func TestRootRegistersCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"start", "migrate", "seed", "admin", "login", "quizzes", "submit", "leaderboard"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("command %q not registered: %v", name, err)
		}
	}
}

func TestSeedIfEmptyOnlySeedsOnce(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	stores, err := openBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("open memory backend: %v", err)
	}
	defer stores.Close()

	quizzes := app.NewQuizService(stores.quizzes, stores.scores, nil, nil)
	path := filepath.Join("..", "..", "config", "quizzes.yaml")

	n, err := seedIfEmpty(ctx, quizzes, path)
	if err != nil || n != 2 {
		t.Fatalf("first seed: n=%d err=%v", n, err)
	}
	n, err = seedIfEmpty(ctx, quizzes, path)
	if err != nil || n != 0 {
		t.Fatalf("second seed should be a no-op: n=%d err=%v", n, err)
	}
	list, _ := quizzes.List(ctx)
	if len(list) != 2 || list[0].Slug == "" {
		t.Fatalf("unexpected quizzes: %+v", list)
	}
}

func TestOpenBackendRejectsUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "sqlite"
	if _, err := openBackend(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestPrintLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	err := printLeaderboard(&buf, []domain.LeaderboardEntry{
		{Rank: 1, Username: "alice", TotalScore: 5, TotalMaxScore: 6, QuizzesCompleted: 2, Percentage: 83},
	})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "alice") || !strings.Contains(lines[1], "5/6") || !strings.Contains(lines[1], "83%") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}
