package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"quiz-api/internal/domain"
)

// UserStore is an in-memory implementation of app.UserRepository.
// Usernames are unique case-sensitively; emails are stored lower-cased by the caller.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
	order []string
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUniqueLocked(*user, ""); err != nil {
		return err
	}
	user.ID = uuid.NewString()
	s.users[user.ID] = *user
	s.order = append(s.order, user.ID)
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (domain.User, error) {
	return s.find(func(u domain.User) bool { return u.Username == username })
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (domain.User, error) {
	return s.find(func(u domain.User) bool { return u.Email == email })
}

func (s *UserStore) List(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.users[id])
	}
	return out, nil
}

func (s *UserStore) Update(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	if err := s.checkUniqueLocked(user, user.ID); err != nil {
		return err
	}
	s.users[user.ID] = user
	return nil
}

func (s *UserStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(s.users, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

func (s *UserStore) find(match func(domain.User) bool) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if u := s.users[id]; match(u) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *UserStore) checkUniqueLocked(user domain.User, selfID string) error {
	for id, other := range s.users {
		if id == selfID {
			continue
		}
		if other.Username == user.Username {
			return domain.ErrUsernameTaken
		}
		if other.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	return nil
}
