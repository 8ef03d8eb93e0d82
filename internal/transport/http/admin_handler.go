package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-api/internal/app"
	"quiz-api/internal/domain"
)

// AdminHandler serves quiz authoring and account management.
type AdminHandler struct {
	quizzes *app.QuizService
	users   *app.UserService
}

func NewAdminHandler(quizzes *app.QuizService, users *app.UserService) *AdminHandler {
	return &AdminHandler{quizzes: quizzes, users: users}
}

func (h *AdminHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := decodeJSON(r, &quiz); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	created, err := h.quizzes.Create(r.Context(), quiz)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

func (h *AdminHandler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := decodeJSON(r, &quiz); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	updated, err := h.quizzes.Update(r.Context(), chi.URLParam(r, "id"), quiz)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *AdminHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithMessage(w, http.StatusOK, "Quiz deleted successfully")
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	user, err := h.users.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithMessage(w, http.StatusOK, "User deleted successfully")
}
