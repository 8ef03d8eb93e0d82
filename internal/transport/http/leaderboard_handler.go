package http

import (
	"net/http"
	"strconv"

	"quiz-api/internal/app"
)

type LeaderboardHandler struct {
	board *app.LeaderboardService
}

func NewLeaderboardHandler(board *app.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{board: board}
}

// Public ranks by percentage.
func (h *LeaderboardHandler) Public(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	entries, err := h.board.Public(r.Context(), limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

// Admin ranks by total score and defaults to the top ten.
func (h *LeaderboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(w, r)
	if !ok {
		return
	}
	entries, err := h.board.Admin(r.Context(), limit)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

func (h *LeaderboardHandler) Scores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.board.Scores(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, scores)
}

func limitParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		respondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return limit, true
}
