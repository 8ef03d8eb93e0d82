package cli

import (
	"context"
	"errors"
	"log"

	"github.com/spf13/cobra"

	"quiz-api/internal/app"
	"quiz-api/internal/config"
	"quiz-api/internal/domain"
	"quiz-api/internal/security"
)

// NewAdminCmd groups account bootstrap commands that bypass the API.
func NewAdminCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts directly in the store",
	}
	cmd.AddCommand(newAdminCreateCmd(configPath))
	return cmd
}

func newAdminCreateCmd(configPath *string) *cobra.Command {
	var req app.RegisterRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminCreate(cmd.Context(), *configPath, req)
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "admin username")
	cmd.Flags().StringVar(&req.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&req.Password, "password", "", "admin password (min 6 characters)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func runAdminCreate(ctx context.Context, configPath string, req app.RegisterRequest) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Storage.Driver == config.DriverMemory {
		return errors.New("admin create needs a persistent storage driver")
	}

	stores, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	// Registration never issues tokens, so the signing settings are irrelevant here.
	tokens := security.NewTokens([]byte(cfg.Auth.JWTSecret), cfg.TokenTTL(), cfg.ResetTokenTTL())
	auth := app.NewAuthService(stores.users, tokens, nil)

	req.Role = domain.RoleAdmin
	user, err := auth.Register(ctx, req, true)
	if err != nil {
		return err
	}
	log.Printf("created admin %s (%s)", user.Username, user.ID)
	return nil
}
