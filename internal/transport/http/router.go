package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"

	"quiz-api/internal/app"
	"quiz-api/internal/metrics"
	"quiz-api/internal/security"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth        *app.AuthService
	Quizzes     *app.QuizService
	Users       *app.UserService
	Leaderboard *app.LeaderboardService
	Feed        *app.LeaderboardFeed
	Tokens      *security.Tokens
}

type apiInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

type Options struct {
	AllowedOrigins []string
	// AuthLimiter guards the credential endpoints, APILimiter everything
	// else under /api. Either may be nil.
	AuthLimiter    app.RateLimiter
	APILimiter     app.RateLimiter
	RequestTimeout time.Duration
	// TrustProxy keys clients by forwarding headers instead of the peer
	// address. Leave it off unless a proxy in front rewrites those headers.
	TrustProxy     bool
}

func NewRouter(s Services, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	if opts.TrustProxy {
		r.Use(chiMiddleware.RealIP)
	}
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(instrument)
	// Browsers cannot set headers on a websocket handshake, hence the query fallback.
	r.Use(jwtauth.Verify(s.Tokens.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, apiInfo{Name: "Quiz App API", Version: "1.0.0", Status: "active"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	timeout := chiMiddleware.Timeout(opts.RequestTimeout)
	authenticate := authenticator(s.Auth)
	authLimit := rateLimit("auth", opts.AuthLimiter, "Too many attempts. Please try again after 15 minutes")
	apiLimit := rateLimit("api", opts.APILimiter, "Too many requests, please try again later")

	authHandler := NewAuthHandler(s.Auth)
	quizHandler := NewQuizHandler(s.Quizzes)
	boardHandler := NewLeaderboardHandler(s.Leaderboard)
	adminHandler := NewAdminHandler(s.Quizzes, s.Users)
	liveHandler := NewLiveHandler(s.Feed, origins)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.Use(timeout)
			ar.Group(func(limited chi.Router) {
				limited.Use(authLimit)
				limited.Post("/register", authHandler.Register)
				limited.Post("/login", authHandler.Login)
				limited.Post("/forgot-password", authHandler.ForgotPassword)
				limited.Post("/reset-password", authHandler.ResetPassword)
			})
			ar.With(authenticate).Get("/me", authHandler.Me)
		})

		api.Route("/quiz", func(qr chi.Router) {
			qr.Use(timeout, apiLimit, authenticate)
			qr.Get("/", quizHandler.List)
			qr.Get("/{id}", quizHandler.Get)
			qr.Post("/{id}/submit", quizHandler.Submit)
		})

		api.Route("/leaderboard", func(lr chi.Router) {
			lr.Use(authenticate)
			lr.With(timeout, apiLimit).Get("/", boardHandler.Public)
			// Long-lived; no request timeout.
			lr.Get("/live", liveHandler.ServeWS)
		})

		api.Route("/admin", func(ad chi.Router) {
			ad.Use(timeout, apiLimit, authenticate, adminOnly)
			ad.Post("/quiz", adminHandler.CreateQuiz)
			ad.Put("/quiz/{id}", adminHandler.UpdateQuiz)
			ad.Delete("/quiz/{id}", adminHandler.DeleteQuiz)
			ad.Get("/leaderboard", boardHandler.Admin)
			ad.Get("/scores", boardHandler.Scores)
			ad.Get("/users", adminHandler.ListUsers)
			ad.Put("/users/{id}", adminHandler.UpdateUser)
			ad.Delete("/users/{id}", adminHandler.DeleteUser)
		})
	})

	return r
}
