package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"quiz-api/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID          string            `bun:"id,pk"`
	Slug        string            `bun:"slug"`
	Title       string            `bun:"title"`
	Description string            `bun:"description"`
	Questions   []domain.Question `bun:"questions,type:jsonb"`
	CreatedAt   time.Time         `bun:"created_at"`
}

func (r quizRow) toDomain() domain.Quiz {
	return domain.Quiz{
		ID:          r.ID,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Questions:   r.Questions,
		CreatedAt:   r.CreatedAt,
	}
}

func quizRowFrom(q domain.Quiz) quizRow {
	questions := q.Questions
	if questions == nil {
		questions = []domain.Question{}
	}
	return quizRow{
		ID:          q.ID,
		Slug:        q.Slug,
		Title:       q.Title,
		Description: q.Description,
		Questions:   questions,
		CreatedAt:   q.CreatedAt,
	}
}

// QuizStore implements app.QuizRepository on the quizzes table.
type QuizStore struct {
	db bun.IDB
}

func NewQuizStore(db bun.IDB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) List(ctx context.Context) ([]domain.Quiz, error) {
	var rows []quizRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	quizzes := make([]domain.Quiz, 0, len(rows))
	for _, r := range rows {
		quizzes = append(quizzes, r.toDomain())
	}
	return quizzes, nil
}

func (s *QuizStore) Get(ctx context.Context, id string) (domain.Quiz, error) {
	row := new(quizRow)
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if notFound(err) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return row.toDomain(), nil
}

func (s *QuizStore) Create(ctx context.Context, quiz *domain.Quiz) error {
	row := quizRowFrom(*quiz)
	row.ID = uuid.NewString()
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	quiz.ID = row.ID
	return nil
}

func (s *QuizStore) Update(ctx context.Context, quiz domain.Quiz) error {
	row := quizRowFrom(quiz)
	res, err := s.db.NewUpdate().
		Model(&row).
		Column("slug", "title", "description", "questions").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	return requireRow(res, domain.ErrQuizNotFound)
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*quizRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return requireRow(res, domain.ErrQuizNotFound)
}
