// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/okian/haggle/internal/adapters/llm"
	"github.com/okian/haggle/internal/adapters/repository"
	"github.com/okian/haggle/internal/domain/engine"
	"github.com/okian/haggle/internal/domain/model"
	"github.com/okian/haggle/internal/domain/rank"
)

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to the app service.
type Dependencies interface {
	StartSession(ctx context.Context, playerName, origin string) (model.Session, error)
	Session(ctx context.Context, id string) (model.Session, error)
	SetPlayerName(ctx context.Context, id, name string) (model.Session, error)
	SubmitProposal(ctx context.Context, id string, share int, note string) (model.Session, error)
	SubmitDecision(ctx context.Context, id string, accepted bool, note string) (model.Session, error)
	OpponentTurn(ctx context.Context, id string) (model.Session, error)
	Leaderboard(ctx context.Context, mode rank.Mode, page int) (rank.Page, error)
}

// Server wires HTTP routes for the game API.
type Server struct {
	sessionsHandler    *SessionsHandler
	leaderboardHandler *LeaderboardHandler
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		sessionsHandler:    NewSessionsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleSessions, "sessions"))
	mux.HandleFunc("/sessions/", MetricsMiddleware(s.sessionsHandler.HandleSession, "session"))
}

// turnResponse mirrors one turn event on the wire.
type turnResponse struct {
	Round         int    `json:"round"`
	Actor         string `json:"actor"`
	Role          string `json:"role"`
	ProposedShare *int   `json:"proposed_share,omitempty"`
	Accepted      *bool  `json:"accepted,omitempty"`
	Note          string `json:"note"`
	Timestamp     string `json:"timestamp"`
}

// sessionResponse mirrors the session read shape.
type sessionResponse struct {
	ID         string         `json:"session_id"`
	Round      int            `json:"current_round"`
	HumanScore int            `json:"human_score"`
	AIScore    int            `json:"ai_score"`
	Turns      []turnResponse `json:"turns"`
	Finished   bool           `json:"finished"`
	PlayerName string         `json:"player_name,omitempty"`
	Winner     string         `json:"winner,omitempty"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
}

func toSessionResponse(s model.Session) sessionResponse {
	turns := make([]turnResponse, len(s.Turns))
	for i, t := range s.Turns {
		turns[i] = turnResponse{
			Round:         t.Round,
			Actor:         string(t.Actor),
			Role:          string(t.Role),
			ProposedShare: t.ProposedShare,
			Accepted:      t.Accepted,
			Note:          t.Note,
			Timestamp:     t.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		}
	}
	return sessionResponse{
		ID:         s.ID,
		Round:      s.Round,
		HumanScore: s.HumanScore,
		AIScore:    s.AIScore,
		Turns:      turns,
		Finished:   s.Finished,
		PlayerName: s.PlayerName,
		Winner:     s.Winner(),
		CreatedAt:  s.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UpdatedAt:  s.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates core error kinds to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, engine.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, engine.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state", err)
	case errors.Is(err, engine.ErrTurnOrderViolation):
		writeError(w, http.StatusConflict, "turn_order_violation", err)
	case errors.Is(err, engine.ErrNoPendingProposal):
		writeError(w, http.StatusConflict, "no_pending_proposal", err)
	case errors.Is(err, repository.ErrVersionConflict):
		writeError(w, http.StatusConflict, "version_conflict", err)
	case errors.Is(err, llm.ErrDependency):
		writeError(w, http.StatusBadGateway, "dependency_error", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// clientOrigin extracts the caller's network address without the port.
func clientOrigin(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
