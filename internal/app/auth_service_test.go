package app_test

import (
	"context"
	"errors"
	"testing"

	"quiz-api/internal/app"
	"quiz-api/internal/domain"
)

func TestRegisterNormalizesInput(t *testing.T) {
	f := newFixture(t)
	user, err := f.auth.Register(context.Background(), app.RegisterRequest{
		Username: " alice ",
		Email:    "Alice@Example.COM",
		Password: "secret1",
	}, false)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected id, got %+v", user)
	}
	if user.Username != "alice" || user.Email != "alice@example.com" || user.Role != domain.RoleUser {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "secret1" {
		t.Fatalf("password stored in clear")
	}
	if !f.events.has(app.EventUserRegistered) {
		t.Fatalf("expected registration event")
	}
}

func TestRegisterRoleRequiresAdminCaller(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := app.RegisterRequest{Username: "mallory", Email: "m@example.com", Password: "secret1", Role: domain.RoleAdmin}

	user, err := f.auth.Register(ctx, req, false)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("self-registration must not grant admin, got %q", user.Role)
	}

	req.Username, req.Email = "root", "root@example.com"
	user, err = f.auth.Register(ctx, req, true)
	if err != nil {
		t.Fatalf("register by admin: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %q", user.Role)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cases := []app.RegisterRequest{
		{Email: "a@example.com", Password: "secret1"},
		{Username: "a", Email: "not-an-email", Password: "secret1"},
		{Username: "a", Email: "a@example.com", Password: "short"},
		{Username: "a", Email: "a@example.com", Password: "secret1", Role: "root"},
	}
	for i, req := range cases {
		if _, err := f.auth.Register(ctx, req, false); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestRegisterConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice")

	_, err := f.auth.Register(ctx, app.RegisterRequest{Username: "alice", Email: "new@example.com", Password: "secret1"}, false)
	if !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}
	_, err = f.auth.Register(ctx, app.RegisterRequest{Username: "alice2", Email: "ALICE@example.com", Password: "secret1"}, false)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
}

func TestLoginByUsernameOrEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user := f.register(t, "alice")

	for _, identifier := range []string{"alice", "alice@example.com", "ALICE@EXAMPLE.COM"} {
		resp, err := f.auth.Login(ctx, app.LoginRequest{Identifier: identifier, Password: "password"})
		if err != nil {
			t.Fatalf("login as %q: %v", identifier, err)
		}
		if resp.User.ID != user.ID || resp.Token == "" {
			t.Fatalf("login as %q returned %+v", identifier, resp)
		}
	}

	if _, err := f.auth.Login(ctx, app.LoginRequest{Identifier: "alice", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for wrong password, got %v", err)
	}
	if _, err := f.auth.Login(ctx, app.LoginRequest{Identifier: "nobody", Password: "password"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice")

	token, err := f.auth.ForgotPassword(ctx, "alice")
	if err != nil || token == "" {
		t.Fatalf("forgot password: token=%q err=%v", token, err)
	}
	if err := f.auth.ResetPassword(ctx, app.ResetPasswordRequest{Token: token, Password: "brand-new"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := f.auth.Login(ctx, app.LoginRequest{Identifier: "alice", Password: "password"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, err := f.auth.Login(ctx, app.LoginRequest{Identifier: "alice", Password: "brand-new"}); err != nil {
		t.Fatalf("new password should work: %v", err)
	}
}

func TestResetRejectsAccessTokens(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice")
	login, _ := f.auth.Login(ctx, app.LoginRequest{Identifier: "alice", Password: "password"})

	err := f.auth.ResetPassword(ctx, app.ResetPasswordRequest{Token: login.Token, Password: "brand-new"})
	if !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected invalid reset token, got %v", err)
	}
	err = f.auth.ResetPassword(ctx, app.ResetPasswordRequest{Token: "garbage", Password: "brand-new"})
	if !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Fatalf("expected invalid reset token for garbage, got %v", err)
	}
}

func TestForgotPasswordUnknownUser(t *testing.T) {
	f := newFixture(t)
	if _, err := f.auth.ForgotPassword(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}
