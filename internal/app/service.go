// Package app provides the core business service that implements the
// dependencies required by the HTTP API.
//
// The service owns the control flow of a turn: load the session from
// the store, validate and apply the action through the engine, call the
// reasoning collaborator when the opponent owes a move, parse its
// output, apply the result, and write the session back conditionally.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/haggle/internal/adapters/llm"
	"github.com/okian/haggle/internal/adapters/repository"
	"github.com/okian/haggle/internal/domain/engine"
	"github.com/okian/haggle/internal/domain/interpret"
	"github.com/okian/haggle/internal/domain/model"
	"github.com/okian/haggle/internal/domain/prompt"
	"github.com/okian/haggle/internal/domain/rank"
	"github.com/okian/haggle/pkg/logger"
	"github.com/okian/haggle/pkg/metrics"
)

// Service implements the game operations behind the HTTP API.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	opponent llm.Client
	turns    *engine.Engine

	alternation engine.Alternation
	pageSize    int
	maxNameLen  int
	now         func() time.Time

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the session store.
func WithStore(s repository.Store) Option {
	return func(svc *Service) {
		if s != nil {
			svc.store = s
		}
	}
}

// WithOpponent sets the reasoning collaborator client.
func WithOpponent(c llm.Client) Option {
	return func(svc *Service) {
		if c != nil {
			svc.opponent = c
		}
	}
}

// WithAlternation sets the round-opening policy.
func WithAlternation(a engine.Alternation) Option {
	return func(svc *Service) {
		svc.alternation = a
	}
}

// WithPageSize sets the fixed leaderboard page size.
func WithPageSize(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.pageSize = n
		}
	}
}

// WithMaxPlayerName caps player display names.
func WithMaxPlayerName(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.maxNameLen = n
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	svc := &Service{
		alternation: engine.HumanOpens,
		pageSize:    10,
		maxNameLen:  model.MaxPlayerName,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	svc.turns = engine.New(
		engine.WithAlternation(svc.alternation),
		engine.WithClock(svc.now),
	)
	return svc
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemStore()
		s.logger.Info(ctx, "using in-memory session store")
	}
	if s.opponent == nil {
		return errors.New("opponent client is required")
	}

	s.started = true
	s.logger.Info(ctx, "game service started",
		logger.String("alternation", string(s.turns.Alternation())),
		logger.Int("pageSize", s.pageSize),
	)
	return nil
}

// Stop shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "game service stopped")
}

// Alternation reports the configured round-opening policy.
func (s *Service) Alternation() engine.Alternation {
	return s.turns.Alternation()
}

// StartSession creates a fresh session at round 1.
func (s *Service) StartSession(ctx context.Context, playerName, origin string) (model.Session, error) {
	playerName = strings.TrimSpace(playerName)
	if len(playerName) > s.maxNameLen {
		return model.Session{}, fmt.Errorf("player name exceeds %d characters: %w", s.maxNameLen, engine.ErrInvalidInput)
	}

	session := model.NewSession(uuid.NewString(), playerName, origin, s.now())
	if err := s.store.Create(ctx, session); err != nil {
		return model.Session{}, fmt.Errorf("create session: %w", err)
	}
	metrics.RecordSessionStarted()
	s.logger.Info(ctx, "session started",
		logger.String("sessionID", session.ID),
		logger.String("playerName", playerName),
	)
	created, err := s.store.Get(ctx, session.ID)
	if err != nil {
		return model.Session{}, fmt.Errorf("load created session: %w", err)
	}
	return created, nil
}

// Session returns the session with the given id.
func (s *Service) Session(ctx context.Context, id string) (model.Session, error) {
	return s.store.Get(ctx, id)
}

// SetPlayerName updates the display name. This is the only mutation
// allowed on a finished session, so the leaderboard can attribute a
// game after the fact.
func (s *Service) SetPlayerName(ctx context.Context, id, name string) (model.Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Session{}, fmt.Errorf("player name must not be empty: %w", engine.ErrInvalidInput)
	}
	if len(name) > s.maxNameLen {
		return model.Session{}, fmt.Errorf("player name exceeds %d characters: %w", s.maxNameLen, engine.ErrInvalidInput)
	}

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Session{}, err
	}
	session.PlayerName = name
	session.UpdatedAt = s.now()
	return s.store.Replace(ctx, session)
}

// SubmitProposal applies the human's proposal for the current round and
// then asks the opponent to decide on it.
//
// The proposal is persisted before the collaborator is called: when the
// call fails the proposal stays durable, the error wraps
// llm.ErrDependency, and the client retries via OpponentTurn. The
// engine rejects duplicate proposals, so retries of this operation are
// safe.
func (s *Service) SubmitProposal(ctx context.Context, id string, share int, note string) (model.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Session{}, err
	}
	if err := s.turns.ApplyProposal(&session, model.ActorHuman, share, note); err != nil {
		return model.Session{}, err
	}
	session, err = s.store.Replace(ctx, session)
	if err != nil {
		return model.Session{}, err
	}
	metrics.RecordTurnApplied(string(model.ActorHuman), string(model.RoleProposer))

	updated, err := s.opponentDecides(ctx, session)
	if err != nil {
		// The human's proposal is already durable; the caller retries the
		// opponent's half through OpponentTurn.
		return session, err
	}
	return updated, nil
}

// SubmitDecision applies the human's decision on the opponent's pending
// proposal.
func (s *Service) SubmitDecision(ctx context.Context, id string, accepted bool, note string) (model.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Session{}, err
	}
	pending := session.PendingProposal()
	if err := s.turns.ApplyDecision(&session, model.ActorHuman, accepted, note); err != nil {
		return model.Session{}, err
	}
	session, err = s.store.Replace(ctx, session)
	if err != nil {
		return model.Session{}, err
	}
	s.recordResolution(model.ActorHuman, accepted, pending, &session)
	return session, nil
}

// OpponentTurn completes whatever move the opponent currently owes:
// a decision when a human proposal is pending, or a proposal when it is
// the opponent's round to open. It is also the retry path after a
// dependency failure.
func (s *Service) OpponentTurn(ctx context.Context, id string) (model.Session, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Session{}, err
	}

	switch s.turns.Phase(&session) {
	case engine.PhaseFinished:
		return model.Session{}, fmt.Errorf("opponent turn: %w", engine.ErrInvalidState)
	case engine.PhaseAwaitingDecision:
		if session.PendingProposal().Actor != model.ActorHuman {
			return model.Session{}, fmt.Errorf("opponent turn: opponent's own proposal is pending: %w", engine.ErrTurnOrderViolation)
		}
		return s.opponentDecides(ctx, session)
	default:
		if s.turns.ProposerFor(session.Round) != model.ActorOpponent {
			return model.Session{}, fmt.Errorf("opponent turn: round %d opens with the human: %w", session.Round, engine.ErrTurnOrderViolation)
		}
		return s.opponentProposes(ctx, session)
	}
}

// Leaderboard ranks all finished, named sessions and returns one page.
func (s *Service) Leaderboard(ctx context.Context, mode rank.Mode, page int) (rank.Page, error) {
	finished, err := s.store.FinishedWithPlayerName(ctx)
	if err != nil {
		return rank.Page{}, fmt.Errorf("query finished sessions: %w", err)
	}
	entries := rank.Rank(finished, mode)
	return rank.Paginate(entries, page, s.pageSize), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"alternation": string(s.turns.Alternation()),
		"pageSize":    s.pageSize,
	}
	if s.started {
		stats["totalSessions"] = s.store.Count(context.Background())
	}
	return stats
}

// opponentDecides asks the collaborator to accept or reject the pending
// human proposal and applies the parsed decision.
func (s *Service) opponentDecides(ctx context.Context, session model.Session) (model.Session, error) {
	text, err := s.opponent.Complete(ctx, prompt.Decision(&session))
	if err != nil {
		s.logger.Error(ctx, "opponent decision failed",
			logger.String("sessionID", session.ID),
			logger.Error(err),
		)
		return model.Session{}, fmt.Errorf("opponent decision: %w", err)
	}

	decision := interpret.ParseDecision(text)
	if decision.Fallback {
		metrics.RecordInterpreterFallback("decision")
		s.logger.Warn(ctx, "unparseable decision text, rejecting by default",
			logger.String("sessionID", session.ID),
		)
	}

	pending := session.PendingProposal()
	if err := s.turns.ApplyDecision(&session, model.ActorOpponent, decision.Accepted, decision.Note); err != nil {
		return model.Session{}, err
	}
	session, err = s.store.Replace(ctx, session)
	if err != nil {
		return model.Session{}, err
	}
	s.recordResolution(model.ActorOpponent, decision.Accepted, pending, &session)
	return session, nil
}

// opponentProposes asks the collaborator for a split and applies the
// parsed proposal.
func (s *Service) opponentProposes(ctx context.Context, session model.Session) (model.Session, error) {
	text, err := s.opponent.Complete(ctx, prompt.Proposal(&session))
	if err != nil {
		s.logger.Error(ctx, "opponent proposal failed",
			logger.String("sessionID", session.ID),
			logger.Error(err),
		)
		return model.Session{}, fmt.Errorf("opponent proposal: %w", err)
	}

	proposal := interpret.ParseProposal(text)
	if proposal.Fallback {
		metrics.RecordInterpreterFallback("proposal")
		s.logger.Warn(ctx, "unparseable proposal text, defaulting to fair split",
			logger.String("sessionID", session.ID),
		)
	}

	if err := s.turns.ApplyProposal(&session, model.ActorOpponent, proposal.Share, proposal.Note); err != nil {
		return model.Session{}, err
	}
	session, err = s.store.Replace(ctx, session)
	if err != nil {
		return model.Session{}, err
	}
	metrics.RecordTurnApplied(string(model.ActorOpponent), string(model.RoleProposer))
	return session, nil
}

// recordResolution emits the metrics and logs for a decider event.
func (s *Service) recordResolution(actor model.Actor, accepted bool, pending *model.TurnEvent, session *model.Session) {
	metrics.RecordTurnApplied(string(actor), string(model.RoleDecider))
	if accepted && pending != nil {
		metrics.RecordPointsAwarded(model.PointsPerRound)
	}
	if session.Finished {
		metrics.RecordSessionFinished()
		s.logger.Info(context.Background(), "session finished",
			logger.String("sessionID", session.ID),
			logger.Int("humanScore", session.HumanScore),
			logger.Int("aiScore", session.AIScore),
			logger.String("winner", session.Winner()),
		)
	}
}
