// Package engine implements the turn state machine for a session.
//
// The engine is pure: it validates an incoming action against the
// session's current state, appends the resulting turn event and updates
// scores. It performs no I/O; persistence and the opponent's reasoning
// live in the adapter layers.
//
// Per round the machine moves AwaitingProposal -> AwaitingDecision ->
// (next round's AwaitingProposal | Finished). Rounds are never skipped
// and events are never retracted.
package engine

import (
	"fmt"
	"time"

	"github.com/okian/haggle/internal/domain/model"
)

// Phase is the derived state of a session within the turn cycle.
type Phase string

const (
	PhaseAwaitingProposal Phase = "awaiting_proposal"
	PhaseAwaitingDecision Phase = "awaiting_decision"
	PhaseFinished         Phase = "finished"
)

// Alternation is the protocol parameter naming who opens each round.
type Alternation string

const (
	// HumanOpens assigns the proposer role to the human in odd rounds
	// (1, 3, 5) and to the opponent in even rounds. This is the only
	// policy the service ships with; it is a parameter so the whole
	// engine derives turn ownership from one place.
	HumanOpens Alternation = "human_opens"
	// OpponentOpens is the mirror policy: the opponent proposes in odd
	// rounds.
	OpponentOpens Alternation = "opponent_opens"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithAlternation sets the round-opening policy.
func WithAlternation(a Alternation) Option {
	return func(e *Engine) {
		if a == HumanOpens || a == OpponentOpens {
			e.alternation = a
		}
	}
}

// WithClock sets the time source used to stamp turn events.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine applies actions to sessions under a fixed alternation policy.
type Engine struct {
	alternation Alternation
	now         func() time.Time
}

// New constructs an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		alternation: HumanOpens,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Alternation reports the configured round-opening policy.
func (e *Engine) Alternation() Alternation {
	return e.alternation
}

// ProposerFor returns the actor that opens the given round.
func (e *Engine) ProposerFor(round int) model.Actor {
	opener := model.ActorHuman
	if e.alternation == OpponentOpens {
		opener = model.ActorOpponent
	}
	if round%2 == 0 {
		return opener.Other()
	}
	return opener
}

// Phase derives the session's position in the turn cycle.
func (e *Engine) Phase(s *model.Session) Phase {
	switch {
	case s.Finished:
		return PhaseFinished
	case s.PendingProposal() != nil:
		return PhaseAwaitingDecision
	default:
		return PhaseAwaitingProposal
	}
}

// ApplyProposal appends a proposer event for the current round.
//
// share is the number of points allocated to the human regardless of
// who proposes. Round and scores are unchanged; only the decider
// resolution moves the round forward.
func (e *Engine) ApplyProposal(s *model.Session, actor model.Actor, share int, note string) error {
	if s.Finished {
		return fmt.Errorf("apply proposal: %w", ErrInvalidState)
	}
	if share < 0 || share > model.PointsPerRound {
		return fmt.Errorf("apply proposal: share %d out of range [0,%d]: %w", share, model.PointsPerRound, ErrInvalidInput)
	}
	if len(note) > model.MaxNoteLen {
		return fmt.Errorf("apply proposal: note exceeds %d characters: %w", model.MaxNoteLen, ErrInvalidInput)
	}
	if s.PendingProposal() != nil {
		return fmt.Errorf("apply proposal: round %d already has a proposal: %w", s.Round, ErrTurnOrderViolation)
	}
	if e.ProposerFor(s.Round) != actor {
		return fmt.Errorf("apply proposal: not %s's turn to propose in round %d: %w", actor, s.Round, ErrTurnOrderViolation)
	}

	now := e.now()
	s.Turns = append(s.Turns, model.TurnEvent{
		Round:         s.Round,
		Actor:         actor,
		Role:          model.RoleProposer,
		ProposedShare: &share,
		Note:          note,
		Timestamp:     now,
	})
	s.UpdatedAt = now
	return nil
}

// ApplyDecision appends a decider event resolving the pending proposal.
//
// On accept both scores grow by the proposed split. The round advances,
// or the session finishes when round TotalRounds resolves.
func (e *Engine) ApplyDecision(s *model.Session, actor model.Actor, accepted bool, note string) error {
	if s.Finished {
		return fmt.Errorf("apply decision: %w", ErrInvalidState)
	}
	if len(note) > model.MaxNoteLen {
		return fmt.Errorf("apply decision: note exceeds %d characters: %w", model.MaxNoteLen, ErrInvalidInput)
	}
	pending := s.PendingProposal()
	if pending == nil {
		return fmt.Errorf("apply decision: round %d: %w", s.Round, ErrNoPendingProposal)
	}
	if pending.Actor == actor {
		return fmt.Errorf("apply decision: %s cannot decide on its own proposal: %w", actor, ErrNoPendingProposal)
	}

	now := e.now()
	s.Turns = append(s.Turns, model.TurnEvent{
		Round:     s.Round,
		Actor:     actor,
		Role:      model.RoleDecider,
		Accepted:  &accepted,
		Note:      note,
		Timestamp: now,
	})
	if accepted {
		s.HumanScore += *pending.ProposedShare
		s.AIScore += model.PointsPerRound - *pending.ProposedShare
	}
	if s.Round >= model.TotalRounds {
		s.Finished = true
	} else {
		s.Round++
	}
	s.UpdatedAt = now
	return nil
}
