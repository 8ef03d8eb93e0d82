package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"quiz-api/internal/app"
	"quiz-api/internal/config"
)

// NewSeedCmd loads quizzes from a YAML file into the configured store.
func NewSeedCmd(configPath *string) *cobra.Command {
	var (
		file  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample quizzes into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file, force)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "quiz YAML file (defaults to storage.seed_path)")
	cmd.Flags().BoolVar(&force, "force", false, "insert even when quizzes already exist")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string, force bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.Storage.SeedPath
	}
	if file == "" {
		return fmt.Errorf("no seed file given and storage.seed_path is empty")
	}
	if cfg.Storage.Driver == config.DriverMemory {
		log.Printf("storage driver is memory; seeded quizzes will not outlive this command")
	}

	stores, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	quizzes := app.NewQuizService(stores.quizzes, stores.scores, nil, nil)
	if !force {
		n, err := seedIfEmpty(ctx, quizzes, file)
		if err != nil {
			return err
		}
		if n == 0 {
			log.Printf("store already has quizzes; use --force to add anyway")
			return nil
		}
		log.Printf("seeded %d quizzes from %s", n, file)
		return nil
	}

	seed, err := config.LoadQuizzes(file)
	if err != nil {
		return err
	}
	for _, quiz := range seed {
		created, err := quizzes.Create(ctx, quiz)
		if err != nil {
			return fmt.Errorf("seed quiz %q: %w", quiz.Title, err)
		}
		log.Printf("created quiz %s (%s)", created.ID, created.Title)
	}
	return nil
}
