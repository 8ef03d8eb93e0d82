package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"quiz-api/internal/domain"
)

type scoreRow struct {
	bun.BaseModel `bun:"table:scores,alias:s"`

	ID          string    `bun:"id,pk"`
	UserID      string    `bun:"user_id"`
	QuizID      string    `bun:"quiz_id"`
	Score       int       `bun:"score"`
	MaxScore    int       `bun:"max_score"`
	CompletedAt time.Time `bun:"completed_at"`
}

// ScoreStore implements app.ScoreRepository on the scores table.
type ScoreStore struct {
	db bun.IDB
}

func NewScoreStore(db bun.IDB) *ScoreStore {
	return &ScoreStore{db: db}
}

func (s *ScoreStore) Insert(ctx context.Context, score *domain.Score) error {
	row := scoreRow{
		ID:          uuid.NewString(),
		UserID:      score.UserID,
		QuizID:      score.QuizID,
		Score:       score.Score,
		MaxScore:    score.MaxScore,
		CompletedAt: score.CompletedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	score.ID = row.ID
	return nil
}

func (s *ScoreStore) List(ctx context.Context, filter domain.ScoreFilter) ([]domain.Score, error) {
	var rows []scoreRow
	q := s.db.NewSelect().Model(&rows).Order("completed_at ASC")
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.QuizID != "" {
		q = q.Where("quiz_id = ?", filter.QuizID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	scores := make([]domain.Score, 0, len(rows))
	for _, r := range rows {
		scores = append(scores, domain.Score{
			ID:          r.ID,
			UserID:      r.UserID,
			QuizID:      r.QuizID,
			Score:       r.Score,
			MaxScore:    r.MaxScore,
			CompletedAt: r.CompletedAt,
		})
	}
	return scores, nil
}

func (s *ScoreStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.db.NewDelete().Model((*scoreRow)(nil)).Where("user_id = ?", userID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete scores by user: %w", err)
	}
	return nil
}

func (s *ScoreStore) DeleteByQuiz(ctx context.Context, quizID string) error {
	_, err := s.db.NewDelete().Model((*scoreRow)(nil)).Where("quiz_id = ?", quizID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete scores by quiz: %w", err)
	}
	return nil
}

// requireRow turns "no rows affected" into the given not-found error.
func requireRow(res sql.Result, notFoundErr error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFoundErr
	}
	return nil
}
