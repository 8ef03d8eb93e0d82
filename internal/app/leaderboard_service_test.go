package app_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"quiz-api/internal/app"
	"quiz-api/internal/domain"
)

// seedScores gives alice 8/20 over two quizzes and bob 8/10 over one.
func seedScores(t *testing.T, f *fixture) (alice, bob domain.User) {
	t.Helper()
	ctx := context.Background()
	alice = f.register(t, "alice")
	bob = f.register(t, "bob")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, s := range []domain.Score{
		{UserID: alice.ID, QuizID: "quiz-1", Score: 5, MaxScore: 10, CompletedAt: base},
		{UserID: alice.ID, QuizID: "quiz-1", Score: 3, MaxScore: 10, CompletedAt: base.Add(time.Hour)},
		{UserID: bob.ID, QuizID: "quiz-1", Score: 8, MaxScore: 10, CompletedAt: base.Add(2 * time.Hour)},
	} {
		s := s
		if err := f.scores.Insert(ctx, &s); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	return alice, bob
}

func TestPublicLeaderboardRanksByPercentage(t *testing.T) {
	f := newFixture(t)
	alice, bob := seedScores(t, f)

	board, err := f.leaderboard.Public(context.Background(), 0)
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected 2 entries, got %+v", board)
	}
	if board[0].UserID != bob.ID || board[0].Username != "bob" || board[0].Percentage != 80 || board[0].Rank != 1 {
		t.Fatalf("expected bob first at 80%%, got %+v", board[0])
	}
	if board[1].UserID != alice.ID || board[1].Percentage != 40 || board[1].QuizzesCompleted != 2 {
		t.Fatalf("expected alice second at 40%%, got %+v", board[1])
	}
}

func TestAdminLeaderboardRanksByTotalScore(t *testing.T) {
	f := newFixture(t)
	alice, _ := seedScores(t, f)

	board, err := f.leaderboard.Admin(context.Background(), 0)
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	// Tied on 8 points; alice played first.
	if board[0].UserID != alice.ID || board[0].TotalScore != 8 || board[0].Rank != 1 {
		t.Fatalf("expected alice first on total score, got %+v", board[0])
	}

	top, _ := f.leaderboard.Admin(context.Background(), 1)
	if len(top) != 1 {
		t.Fatalf("expected limit 1, got %d", len(top))
	}
}

func TestLeaderboardDropsDeletedUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, bob := seedScores(t, f)

	// Remove bob's account without the cascade to leave orphaned scores.
	if err := f.users.Delete(ctx, bob.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	board, _ := f.leaderboard.Public(ctx, 0)
	if len(board) != 1 || board[0].Username != "alice" || board[0].Rank != 1 {
		t.Fatalf("expected only alice, got %+v", board)
	}
}

func TestEmptyLeaderboard(t *testing.T) {
	f := newFixture(t)
	board, err := f.leaderboard.Public(context.Background(), 10)
	if err != nil || board == nil || len(board) != 0 {
		t.Fatalf("expected empty list, got %#v (%v)", board, err)
	}
}

func TestScoresNewestFirstWithNames(t *testing.T) {
	f := newFixture(t)
	seedScores(t, f)

	views, err := f.leaderboard.Scores(context.Background())
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if len(views) != 3 || views[0].Username != "bob" || views[0].QuizTitle != "Mixed bag" {
		t.Fatalf("unexpected views: %+v", views)
	}
	if views[2].Score.Score != 5 {
		t.Fatalf("expected oldest last, got %+v", views[2])
	}
}

func TestDeleteUserCascadesScores(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice, _ := seedScores(t, f)

	if err := f.accounts.Delete(ctx, alice.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if left, _ := f.scores.List(ctx, domain.ScoreFilter{UserID: alice.ID}); len(left) != 0 {
		t.Fatalf("expected alice's scores removed, got %+v", left)
	}
	if !f.events.has(app.EventUserDeleted) {
		t.Fatalf("expected user deleted event")
	}
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")

	updated, err := f.accounts.Update(ctx, alice.ID, app.UpdateUserRequest{Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Role != domain.RoleAdmin || updated.Username != "alice" {
		t.Fatalf("unexpected user: %+v", updated)
	}
	if _, err := f.accounts.Update(ctx, alice.ID, app.UpdateUserRequest{Role: "owner"}); err == nil {
		t.Fatalf("expected invalid role to be rejected")
	}
}

func TestFeedReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")

	ch, cancel, err := f.feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer cancel()

	if initial := <-ch; len(initial) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", initial)
	}

	if _, err := f.quiz.Submit(ctx, "quiz-1", alice.ID, json.RawMessage(`[1]`)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	select {
	case update := <-ch:
		if len(update) != 1 || update[0].TotalScore != 1 || update[0].Percentage != 33 {
			t.Fatalf("expected alice at 1/3, got %+v", update)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for update")
	}
}

func TestFeedRefreshesOnRename(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	if _, err := f.quiz.Submit(ctx, "quiz-1", alice.ID, json.RawMessage(`[1]`)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ch, cancel, err := f.feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	if initial := <-ch; len(initial) != 1 || initial[0].Username != "alice" {
		t.Fatalf("unexpected initial snapshot: %+v", initial)
	}

	if _, err := f.accounts.Update(ctx, alice.ID, app.UpdateUserRequest{Username: "alicia"}); err != nil {
		t.Fatalf("rename: %v", err)
	}

	select {
	case update := <-ch:
		if len(update) != 1 || update[0].Username != "alicia" {
			t.Fatalf("expected renamed entry, got %+v", update)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for rename update")
	}
}

func TestFeedCancelStopsDelivery(t *testing.T) {
	f := newFixture(t)
	ch, cancel, err := f.feed.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	<-ch
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel after cancel")
	}
	if n := f.feed.Subscribers(); n != 0 {
		t.Fatalf("expected no subscribers, got %d", n)
	}
	f.feed.ScoresChanged(context.Background())
}

func TestFeedSlowSubscriberKeepsNewest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice")
	ch, cancel, _ := f.feed.Subscribe(ctx)
	defer cancel()

	for i := 0; i < 20; i++ {
		if _, err := f.quiz.Submit(ctx, "quiz-1", alice.ID, json.RawMessage(`[1]`)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	var last []domain.LeaderboardEntry
	for len(ch) > 0 {
		last = <-ch
	}
	if len(last) != 1 || last[0].QuizzesCompleted != 20 {
		t.Fatalf("expected newest snapshot with 20 attempts, got %+v", last)
	}
}
