package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"quiz-api/internal/app"
	"quiz-api/internal/config"
	"quiz-api/internal/event"
	"quiz-api/internal/infra/memory"
	redisinfra "quiz-api/internal/infra/redis"
	"quiz-api/internal/security"
	transport "quiz-api/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
	cmd.Flags().StringVar(port, "port", "", "port to listen on (overrides config and PORT)")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portFlag != "" {
		cfg.Server.Port = portFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	stores, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	redisClient, err := openRedis(ctx, cfg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := event.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
	if err != nil {
		return err
	}
	defer publisher.Close()

	var quizRepo app.QuizRepository
	var authLimiter, apiLimiter app.RateLimiter
	window := cfg.RateLimitWindow()
	if redisClient != nil {
		quizRepo = redisinfra.NewQuizCache(redisClient, stores.quizzes, cfg.QuizCacheTTL())
		authLimiter = redisinfra.NewRateLimiter(redisClient, "auth", cfg.RateLimit.AuthMax, window)
		apiLimiter = redisinfra.NewRateLimiter(redisClient, "api", cfg.RateLimit.APIMax, window)
	} else {
		quizRepo = memory.NewQuizCache(stores.quizzes, cfg.QuizCacheTTL())
		authLimiter = memory.NewRateLimiter(cfg.RateLimit.AuthMax, window)
		apiLimiter = memory.NewRateLimiter(cfg.RateLimit.APIMax, window)
	}

	tokens := security.NewTokens([]byte(cfg.Auth.JWTSecret), cfg.TokenTTL(), cfg.ResetTokenTTL())
	board := app.NewLeaderboardService(stores.scores, stores.users, quizRepo)
	feed := app.NewLeaderboardFeed(board)

	// With Redis every instance hears about every change and refreshes its
	// own subscribers; otherwise the feed is notified in-process.
	var notifier app.ScoreNotifier = feed
	if redisClient != nil {
		scoreNotifier := redisinfra.NewScoreNotifier(redisClient, redisinfra.DefaultScoreChannel)
		notifier = scoreNotifier
		go func() {
			if err := scoreNotifier.Listen(ctx, nil, feed.ScoresChanged); err != nil {
				log.Printf("score change listener stopped: %v", err)
			}
		}()
	}

	quizService := app.NewQuizService(quizRepo, stores.scores, publisher, notifier)
	userService := app.NewUserService(stores.users, stores.scores, publisher, notifier)
	authService := app.NewAuthService(stores.users, tokens, publisher)

	if cfg.Storage.Driver == config.DriverMemory && cfg.Storage.SeedPath != "" {
		n, err := seedIfEmpty(ctx, quizService, cfg.Storage.SeedPath)
		if err != nil {
			log.Printf("seeding from %s failed: %v", cfg.Storage.SeedPath, err)
		} else if n > 0 {
			log.Printf("seeded %d quizzes from %s", n, cfg.Storage.SeedPath)
		}
	}

	router := transport.NewRouter(transport.Services{
		Auth:        authService,
		Quizzes:     quizService,
		Users:       userService,
		Leaderboard: board,
		Feed:        feed,
		Tokens:      tokens,
	}, transport.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AuthLimiter:    authLimiter,
		APILimiter:     apiLimiter,
		RequestTimeout: cfg.RequestTimeout(),
		TrustProxy:     cfg.Server.TrustProxy,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 15*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting quiz API on :%s (storage=%s, redis=%t, events=%t)",
			cfg.Server.Port, cfg.Storage.Driver, redisClient != nil, publisher.Enabled())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
