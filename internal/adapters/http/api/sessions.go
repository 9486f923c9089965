// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/haggle/internal/domain/model"
)

// SessionsHandler handles session lifecycle and turn submission.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// startRequest mirrors POST /sessions.
type startRequest struct {
	PlayerName string `json:"player_name"`
}

// patchRequest mirrors PATCH /sessions/{id}.
type patchRequest struct {
	PlayerName string `json:"player_name"`
}

// proposalRequest mirrors POST /sessions/{id}/proposal.
type proposalRequest struct {
	HumanPoints *int   `json:"human_points"`
	Message     string `json:"message"`
}

func (p proposalRequest) validate() error {
	if p.HumanPoints == nil {
		return fmt.Errorf("missing human_points: %w", ErrBadRequest)
	}
	if *p.HumanPoints < 0 || *p.HumanPoints > model.PointsPerRound {
		return fmt.Errorf("human_points must be between 0 and %d: %w", model.PointsPerRound, ErrBadRequest)
	}
	if len(p.Message) > model.MaxNoteLen {
		return fmt.Errorf("message too long (max %d characters): %w", model.MaxNoteLen, ErrBadRequest)
	}
	return nil
}

// decisionRequest mirrors POST /sessions/{id}/decision.
type decisionRequest struct {
	Accept  *bool  `json:"accept"`
	Message string `json:"message"`
}

func (d decisionRequest) validate() error {
	if d.Accept == nil {
		return fmt.Errorf("missing accept: %w", ErrBadRequest)
	}
	if len(d.Message) > model.MaxNoteLen {
		return fmt.Errorf("message too long (max %d characters): %w", model.MaxNoteLen, ErrBadRequest)
	}
	return nil
}

// HandleSessions handles POST /sessions.
func (h *SessionsHandler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req startRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
	}
	session, err := h.deps.StartSession(r.Context(), req.PlayerName, clientOrigin(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

// HandleSession routes /sessions/{id} and its sub-resources:
//
//	GET    /sessions/{id}           fetch state
//	PATCH  /sessions/{id}           set player name
//	POST   /sessions/{id}/proposal  human proposes, opponent decides
//	POST   /sessions/{id}/decision  human decides on pending proposal
//	POST   /sessions/{id}/opponent  opponent takes its owed move
func (h *SessionsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/sessions/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(action, "/") {
		http.NotFound(w, r)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.handleGet(w, r, id)
	case action == "" && r.Method == http.MethodPatch:
		h.handlePatch(w, r, id)
	case action == "proposal" && r.Method == http.MethodPost:
		h.handleProposal(w, r, id)
	case action == "decision" && r.Method == http.MethodPost:
		h.handleDecision(w, r, id)
	case action == "opponent" && r.Method == http.MethodPost:
		h.handleOpponent(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionsHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	session, err := h.deps.Session(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *SessionsHandler) handlePatch(w http.ResponseWriter, r *http.Request, id string) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	session, err := h.deps.SetPlayerName(r.Context(), id, req.PlayerName)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *SessionsHandler) handleProposal(w http.ResponseWriter, r *http.Request, id string) {
	var req proposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	session, err := h.deps.SubmitProposal(r.Context(), id, *req.HumanPoints, req.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *SessionsHandler) handleDecision(w http.ResponseWriter, r *http.Request, id string) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	session, err := h.deps.SubmitDecision(r.Context(), id, *req.Accept, req.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *SessionsHandler) handleOpponent(w http.ResponseWriter, r *http.Request, id string) {
	session, err := h.deps.OpponentTurn(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}
