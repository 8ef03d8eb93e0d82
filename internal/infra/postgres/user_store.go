package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"quiz-api/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string    `bun:"id,pk"`
	Username     string    `bun:"username"`
	Email        string    `bun:"email"`
	PasswordHash string    `bun:"password_hash"`
	Role         string    `bun:"role"`
	CreatedAt    time.Time `bun:"created_at"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		CreatedAt:    r.CreatedAt,
	}
}

func userRowFrom(u domain.User) userRow {
	return userRow{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}

// UserStore implements app.UserRepository on the users table.
type UserStore struct {
	db bun.IDB
}

func NewUserStore(db bun.IDB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	row := userRowFrom(*user)
	row.ID = uuid.NewString()
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if conflict := uniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = row.ID
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id string) (domain.User, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.findOne(ctx, "username = ?", username)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findOne(ctx, "email = ?", email)
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	var rows []userRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toDomain())
	}
	return users, nil
}

func (s *UserStore) Update(ctx context.Context, user domain.User) error {
	row := userRowFrom(user)
	res, err := s.db.NewUpdate().
		Model(&row).
		Column("username", "email", "password_hash", "role").
		WherePK().
		Exec(ctx)
	if err != nil {
		if conflict := uniqueViolation(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res, domain.ErrUserNotFound)
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*userRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRow(res, domain.ErrUserNotFound)
}

func (s *UserStore) findOne(ctx context.Context, where string, arg string) (domain.User, error) {
	row := new(userRow)
	err := s.db.NewSelect().Model(row).Where(where, arg).Limit(1).Scan(ctx)
	if notFound(err) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("find user: %w", err)
	}
	return row.toDomain(), nil
}
