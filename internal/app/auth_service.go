package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-api/internal/domain"
	"quiz-api/internal/security"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type LoginRequest struct {
	// Identifier is a username or an email address.
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"resetToken" validate:"required"`
	Password string `json:"newPassword" validate:"required,min=6"`
}

// AuthResponse is returned by login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// AuthService covers account creation, login and the password reset flow.
type AuthService struct {
	users  UserRepository
	tokens *security.Tokens
	events EventPublisher
	now    func() time.Time
}

func NewAuthService(users UserRepository, tokens *security.Tokens, events EventPublisher) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		events: orNoopPublisher(events),
		now:    time.Now,
	}
}

// Register creates an account. The admin role is only honoured when
// callerIsAdmin is set; everyone else becomes a user. Registering does not
// sign the user in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest, callerIsAdmin bool) (domain.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateStruct(req); err != nil {
		return domain.User{}, err
	}

	role := domain.RoleUser
	if callerIsAdmin && req.Role == domain.RoleAdmin {
		role = domain.RoleAdmin
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return domain.User{}, err
	}
	publish(ctx, s.events, EventUserRegistered, user)
	return user, nil
}

// Login accepts a username or an email address. Unknown accounts and wrong
// passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	if err := validateStruct(req); err != nil {
		return AuthResponse{}, err
	}
	identifier := strings.TrimSpace(req.Identifier)

	user, err := s.users.FindByUsername(ctx, identifier)
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.users.FindByEmail(ctx, strings.ToLower(identifier))
	}
	if errors.Is(err, domain.ErrUserNotFound) {
		return AuthResponse{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResponse{}, err
	}
	if !security.CheckPasswordHash(req.Password, user.PasswordHash) {
		return AuthResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return AuthResponse{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResponse{Token: token, User: user}, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

// ForgotPassword issues a short-lived reset token for the named account.
// There is no mailer, so the token is handed straight back to the caller.
func (s *AuthService) ForgotPassword(ctx context.Context, username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return s.tokens.IssueReset(user.ID)
}

func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	userID, err := s.tokens.ParseReset(req.Token)
	if err != nil {
		return domain.ErrInvalidResetToken
	}
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}
