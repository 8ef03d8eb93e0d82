package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"quiz-api/internal/config"
	mongostore "quiz-api/internal/infra/mongo"
	pgstore "quiz-api/internal/infra/postgres"
)

// NewMigrateCmd prepares the configured database: SQL migrations for
// postgres, indexes for mongo.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		if cfg.Postgres.URL == "" {
			return fmt.Errorf("postgres url not configured")
		}
		db, err := pgstore.Open(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		return pgstore.Migrate(ctx, db)

	case config.DriverMongo:
		if cfg.Mongo.URI == "" {
			return fmt.Errorf("mongo uri not configured")
		}
		client, db, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return err
		}
		defer mongostore.Disconnect(client)
		return mongostore.EnsureIndexes(ctx, db)

	default:
		return fmt.Errorf("nothing to migrate for storage driver %q", cfg.Storage.Driver)
	}
}
