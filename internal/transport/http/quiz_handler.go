package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quiz-api/internal/app"
	"quiz-api/internal/metrics"
)

type QuizHandler struct {
	quizzes *app.QuizService
}

func NewQuizHandler(quizzes *app.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// submitRequest keeps answers raw; the grader decides what it can use.
type submitRequest struct {
	Answers json.RawMessage `json:"answers"`
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.List(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, quizzes)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized")
		return
	}
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	quizID := chi.URLParam(r, "id")
	result, err := h.quizzes.Submit(r.Context(), quizID, user.ID, req.Answers)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	metrics.Submissions.WithLabelValues(quizID).Inc()
	metrics.SubmissionPercentage.Observe(float64(result.Percentage))
	respondWithJSON(w, http.StatusOK, result)
}
