package leaderboard

import (
	"testing"

	"quiz-api/internal/domain"
)

func sampleScores() []domain.Score {
	return []domain.Score{
		{UserID: "u1", QuizID: "q1", Score: 5, MaxScore: 10},
		{UserID: "u1", QuizID: "q2", Score: 3, MaxScore: 10},
		{UserID: "u2", QuizID: "q1", Score: 8, MaxScore: 10},
	}
}

func TestGroupSumsPerUser(t *testing.T) {
	entries := Group(sampleScores())
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	u1, u2 := entries[0], entries[1]
	if u1.UserID != "u1" || u1.TotalScore != 8 || u1.TotalMaxScore != 20 || u1.Percentage != 40 || u1.QuizzesCompleted != 2 {
		t.Fatalf("unexpected u1 entry: %+v", u1)
	}
	if u2.UserID != "u2" || u2.TotalScore != 8 || u2.TotalMaxScore != 10 || u2.Percentage != 80 || u2.QuizzesCompleted != 1 {
		t.Fatalf("unexpected u2 entry: %+v", u2)
	}
}

func TestRankByPercentagePutsAccuracyFirst(t *testing.T) {
	ranked := ByPercentage(sampleScores())
	if ranked[0].UserID != "u2" || ranked[0].Rank != 1 {
		t.Fatalf("expected u2 ranked first, got %+v", ranked[0])
	}
	if ranked[1].UserID != "u1" || ranked[1].Rank != 2 {
		t.Fatalf("expected u1 ranked second, got %+v", ranked[1])
	}
}

func TestRankByTotalScoreTiesKeepIncomingOrder(t *testing.T) {
	ranked := ByTotalScore(sampleScores())
	// Both users have 8 points; u1 appeared first so it keeps rank 1.
	if ranked[0].UserID != "u1" || ranked[0].Rank != 1 {
		t.Fatalf("expected u1 first on tie, got %+v", ranked[0])
	}
	if ranked[1].UserID != "u2" || ranked[1].Rank != 2 {
		t.Fatalf("expected consecutive rank 2 for tie, got %+v", ranked[1])
	}
}

func TestRankByTotalScoreDescending(t *testing.T) {
	scores := []domain.Score{
		{UserID: "a", Score: 1, MaxScore: 5},
		{UserID: "b", Score: 4, MaxScore: 5},
		{UserID: "c", Score: 2, MaxScore: 5},
		{UserID: "c", Score: 3, MaxScore: 5},
	}
	ranked := ByTotalScore(scores)
	want := []string{"c", "b", "a"}
	for i, id := range want {
		if ranked[i].UserID != id || ranked[i].Rank != i+1 {
			t.Fatalf("position %d: expected %s rank %d, got %+v", i, id, i+1, ranked[i])
		}
	}
}

func TestEmptyInputYieldsEmptyList(t *testing.T) {
	ranked := ByPercentage(nil)
	if ranked == nil || len(ranked) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", ranked)
	}
}

func TestZeroMaxScoreHasZeroPercentage(t *testing.T) {
	entries := Group([]domain.Score{{UserID: "u1", Score: 0, MaxScore: 0}})
	if entries[0].Percentage != 0 {
		t.Fatalf("expected 0%%, got %d", entries[0].Percentage)
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	entries := Group(sampleScores())
	_ = RankByPercentage(entries)
	if entries[0].UserID != "u1" || entries[0].Rank != 0 {
		t.Fatalf("input entries were modified: %+v", entries[0])
	}
}

func TestLimit(t *testing.T) {
	ranked := ByPercentage(sampleScores())
	if got := Limit(ranked, 1); len(got) != 1 || got[0].UserID != "u2" {
		t.Fatalf("expected top entry only, got %+v", got)
	}
	if got := Limit(ranked, 0); len(got) != 2 {
		t.Fatalf("expected no limit for 0, got %d entries", len(got))
	}
	if got := Limit(ranked, 10); len(got) != 2 {
		t.Fatalf("expected all entries when limit exceeds length, got %d", len(got))
	}
}
