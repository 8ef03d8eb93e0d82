package http

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"

	"quiz-api/internal/app"
	"quiz-api/internal/domain"
	"quiz-api/internal/metrics"
	"quiz-api/internal/security"
)

type contextKey string

const userCtxKey contextKey = "user"

// authenticator resolves the verified access token to a live account. The
// account is reloaded on every request so role changes and deletions take
// effect immediately.
func authenticator(auth *app.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if errors.Is(err, jwtauth.ErrNoTokenFound) || (err == nil && token == nil) {
				respondWithError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
			userID, err := security.AccessUserID(claims)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
			user, err := auth.Me(r.Context(), userID)
			if errors.Is(err, domain.ErrUserNotFound) {
				respondWithError(w, http.StatusUnauthorized, "Not authorized, user no longer exists")
				return
			}
			if err != nil {
				respondWithServiceError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), userCtxKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(r.Context())
		if !ok || !user.IsAdmin() {
			respondWithError(w, http.StatusForbidden, "User role "+user.Role+" is not authorized to access this route")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userCtxKey).(domain.User)
	return user, ok
}

// rateLimit rejects clients over the limiter's budget. A nil limiter disables
// the check; a failing limiter lets traffic through.
func rateLimit(name string, limiter app.RateLimiter, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				log.Printf("rate limiter %s: %v", name, err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				metrics.RateLimited.WithLabelValues(name).Inc()
				respondWithError(w, http.StatusTooManyRequests, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// instrument records request latency by route pattern rather than raw path
// so ids do not explode label cardinality.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
