package app

import (
	"context"
	"fmt"
	"strings"

	"quiz-api/internal/domain"
)

type UpdateUserRequest struct {
	Username string `json:"username"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// UserService is the admin view over accounts.
type UserService struct {
	users    UserRepository
	scores   ScoreRepository
	events   EventPublisher
	notifier ScoreNotifier
}

func NewUserService(users UserRepository, scores ScoreRepository, events EventPublisher, notifier ScoreNotifier) *UserService {
	return &UserService{
		users:    users,
		scores:   scores,
		events:   orNoopPublisher(events),
		notifier: orNoopNotifier(notifier),
	}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Update changes the username and/or role; empty fields are left alone.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (domain.User, error) {
	if err := validateStruct(req); err != nil {
		return domain.User{}, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	renamed := false
	if name := strings.TrimSpace(req.Username); name != "" && name != user.Username {
		user.Username = name
		renamed = true
	}
	if req.Role != "" {
		user.Role = req.Role
	}
	if err := s.users.Update(ctx, user); err != nil {
		return domain.User{}, err
	}
	// Rankings show usernames, so live boards need a refresh.
	if renamed {
		s.notifier.ScoresChanged(ctx)
	}
	return user, nil
}

// Delete removes the account and every score it recorded.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.scores.DeleteByUser(ctx, id); err != nil {
		return fmt.Errorf("delete scores for user %s: %w", id, err)
	}
	publish(ctx, s.events, EventUserDeleted, map[string]string{"id": id})
	s.notifier.ScoresChanged(ctx)
	return nil
}
