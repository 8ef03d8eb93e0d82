// Package leaderboard turns score records into ranked per-user standings.
// Nothing is cached: callers recompute from a fresh snapshot every time.
package leaderboard

import (
	"sort"

	"quiz-api/internal/domain"
)

// Group sums score records per user. Entries come back in the order each
// user first appears in scores and are not ranked yet.
func Group(scores []domain.Score) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0)
	index := make(map[string]int)

	for _, s := range scores {
		i, ok := index[s.UserID]
		if !ok {
			i = len(entries)
			index[s.UserID] = i
			entries = append(entries, domain.LeaderboardEntry{UserID: s.UserID})
		}
		entries[i].TotalScore += s.Score
		entries[i].TotalMaxScore += s.MaxScore
		entries[i].QuizzesCompleted++
	}

	for i := range entries {
		entries[i].Percentage = domain.Percentage(entries[i].TotalScore, entries[i].TotalMaxScore)
	}
	return entries
}

// RankByTotalScore orders entries by raw points, highest first. Used for the
// admin view where volume of correct answers matters.
func RankByTotalScore(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	return rank(entries, func(a, b domain.LeaderboardEntry) bool {
		return a.TotalScore > b.TotalScore
	})
}

// RankByPercentage orders entries by accuracy, highest first. Used for the
// public leaderboard so a single perfect quiz can beat many mediocre ones.
func RankByPercentage(entries []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	return rank(entries, func(a, b domain.LeaderboardEntry) bool {
		return a.Percentage > b.Percentage
	})
}

// ByTotalScore groups and ranks in one step.
func ByTotalScore(scores []domain.Score) []domain.LeaderboardEntry {
	return RankByTotalScore(Group(scores))
}

// ByPercentage groups and ranks in one step.
func ByPercentage(scores []domain.Score) []domain.LeaderboardEntry {
	return RankByPercentage(Group(scores))
}

// rank sorts a copy stably, so ties keep their incoming order and receive
// consecutive ranks rather than shared ones.
func rank(entries []domain.LeaderboardEntry, less func(a, b domain.LeaderboardEntry) bool) []domain.LeaderboardEntry {
	ranked := make([]domain.LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// Limit truncates a ranked list; n <= 0 keeps everything.
func Limit(entries []domain.LeaderboardEntry, n int) []domain.LeaderboardEntry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
