package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"quiz-api/internal/app"
	"quiz-api/internal/domain"
	"quiz-api/internal/metrics"
	"quiz-api/internal/security"
)

type AuthHandler struct {
	auth *app.AuthService
}

func NewAuthHandler(auth *app.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

type loginResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
}

type forgotPasswordRequest struct {
	Username string `json:"username"`
}

type forgotPasswordResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req app.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.auth.Register(r.Context(), req, h.callerIsAdmin(r))
	if err != nil {
		metrics.Registrations.WithLabelValues("failed").Inc()
		respondWithServiceError(w, err)
		return
	}
	metrics.Registrations.WithLabelValues("success").Inc()
	respondWithJSON(w, http.StatusCreated, registerResponse{
		Success: true,
		Message: "Registration successful! Please login to continue.",
		User:    user,
	})
}

// callerIsAdmin looks at an optional bearer token on an otherwise public
// route. Any failure simply means the caller is not an admin.
func (h *AuthHandler) callerIsAdmin(r *http.Request) bool {
	token, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return false
	}
	userID, err := security.AccessUserID(claims)
	if err != nil {
		return false
	}
	caller, err := h.auth.Me(r.Context(), userID)
	return err == nil && caller.IsAdmin()
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req app.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.auth.Login(r.Context(), req)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	case err != nil:
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		respondWithServiceError(w, err)
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	respondWithJSON(w, http.StatusOK, loginResponse{Success: true, Token: resp.Token, User: resp.User})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	token, err := h.auth.ForgotPassword(r.Context(), req.Username)
	if errors.Is(err, domain.ErrUserNotFound) {
		respondWithError(w, http.StatusNotFound, "No account found with that username")
		return
	}
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, forgotPasswordResponse{
		Success:    true,
		Message:    "Password reset token generated",
		ResetToken: token,
	})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req app.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithMessage(w, http.StatusOK, "Password has been reset successfully")
}
