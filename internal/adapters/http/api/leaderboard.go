// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/haggle/internal/domain/rank"
)

// LeaderboardHandler handles leaderboard requests.
type LeaderboardHandler struct {
	deps Dependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps Dependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// HandleGetLeaderboard handles GET /leaderboard?mode=score&page=1.
// mode defaults to score, page to 1. Pages beyond the end return an
// empty entries slice.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	mode := rank.ModeScore
	if param := r.URL.Query().Get("mode"); param != "" {
		mode = rank.Mode(param)
		if !mode.Valid() {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("unknown mode %q: %w", param, ErrBadRequest))
			return
		}
	}

	page := 1
	if param := r.URL.Query().Get("page"); param != "" {
		n, err := strconv.Atoi(param)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("page must be a positive integer: %w", ErrBadRequest))
			return
		}
		page = n
	}

	result, err := h.deps.Leaderboard(r.Context(), mode, page)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
