package app

import (
	"context"
	"fmt"
	"sort"

	"quiz-api/internal/domain"
	"quiz-api/internal/leaderboard"
)

// DefaultAdminLeaderboardLimit applies when the admin view is asked for no explicit limit.
const DefaultAdminLeaderboardLimit = 10

// LeaderboardService reads every score and ranks it on demand. Nothing is cached.
type LeaderboardService struct {
	scores  ScoreRepository
	users   UserRepository
	quizzes QuizRepository
}

func NewLeaderboardService(scores ScoreRepository, users UserRepository, quizzes QuizRepository) *LeaderboardService {
	return &LeaderboardService{scores: scores, users: users, quizzes: quizzes}
}

// Public ranks users by overall accuracy. limit <= 0 returns everyone.
func (s *LeaderboardService) Public(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	entries, err := s.grouped(ctx)
	if err != nil {
		return nil, err
	}
	return leaderboard.Limit(leaderboard.RankByPercentage(entries), limit), nil
}

// Admin ranks users by raw points. limit <= 0 falls back to DefaultAdminLeaderboardLimit.
func (s *LeaderboardService) Admin(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultAdminLeaderboardLimit
	}
	entries, err := s.grouped(ctx)
	if err != nil {
		return nil, err
	}
	return leaderboard.Limit(leaderboard.RankByTotalScore(entries), limit), nil
}

// Scores lists every attempt, newest first, joined with user and quiz names.
// Records whose user or quiz no longer exists keep empty names.
func (s *LeaderboardService) Scores(ctx context.Context) ([]domain.ScoreView, error) {
	scores, err := s.scores.List(ctx, domain.ScoreFilter{})
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	names, err := s.usernames(ctx)
	if err != nil {
		return nil, err
	}
	quizzes, err := s.quizzes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	titles := make(map[string]string, len(quizzes))
	for _, q := range quizzes {
		titles[q.ID] = q.Title
	}

	views := make([]domain.ScoreView, 0, len(scores))
	for _, sc := range scores {
		views = append(views, domain.ScoreView{
			Score:     sc,
			Username:  names[sc.UserID],
			QuizTitle: titles[sc.QuizID],
		})
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CompletedAt.After(views[j].CompletedAt)
	})
	return views, nil
}

// grouped aggregates all scores and attaches usernames, dropping users that
// have been deleted since they played.
func (s *LeaderboardService) grouped(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	scores, err := s.scores.List(ctx, domain.ScoreFilter{})
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	names, err := s.usernames(ctx)
	if err != nil {
		return nil, err
	}

	grouped := leaderboard.Group(scores)
	entries := grouped[:0]
	for _, e := range grouped {
		name, ok := names[e.UserID]
		if !ok {
			continue
		}
		e.Username = name
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *LeaderboardService) usernames(ctx context.Context) (map[string]string, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}
