// Package model contains domain models passed between layers.
package model

import "time"

// Game constants. A session is a fixed-length negotiation: each round
// splits PointsPerRound between the two players, TotalRounds times.
const (
	TotalRounds    = 6
	PointsPerRound = 10
	MaxNoteLen     = 256
	MaxPlayerName  = 50
)

// Actor identifies which party performed a turn.
type Actor string

const (
	ActorHuman    Actor = "human"
	ActorOpponent Actor = "opponent"
)

// Other returns the opposing actor.
func (a Actor) Other() Actor {
	if a == ActorHuman {
		return ActorOpponent
	}
	return ActorHuman
}

// Role identifies the function an actor had within a round.
type Role string

const (
	RoleProposer Role = "proposer"
	RoleDecider  Role = "decider"
)

// TurnEvent records one proposer or decider action within a round.
// Exactly one of ProposedShare/Accepted is set, determined by Role:
// proposers carry ProposedShare (points allocated to the human, the
// opponent implicitly gets PointsPerRound - ProposedShare), deciders
// carry Accepted.
type TurnEvent struct {
	Round         int
	Actor         Actor
	Role          Role
	ProposedShare *int
	Accepted      *bool
	Note          string
	Timestamp     time.Time
}

// Session is the persisted record of one game.
//
// Turns is append-only; insertion order is the canonical chronological
// order. Round is 1-indexed and capped at TotalRounds. Scores only ever
// grow. Version backs the store's compare-and-swap replace; it is
// owned by the repository layer and bumped on every successful write.
type Session struct {
	ID            string
	Round         int
	HumanScore    int
	AIScore       int
	Turns         []TurnEvent
	Finished      bool
	PlayerName    string
	OriginAddress string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
}

// NewSession returns a fresh session at round 1 with no turns.
func NewSession(id, playerName, origin string, now time.Time) Session {
	return Session{
		ID:            id,
		Round:         1,
		PlayerName:    playerName,
		OriginAddress: origin,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// LastTurn returns the most recent turn event, or nil if none exist.
func (s *Session) LastTurn() *TurnEvent {
	if len(s.Turns) == 0 {
		return nil
	}
	return &s.Turns[len(s.Turns)-1]
}

// PendingProposal returns the proposer event awaiting a decision in the
// current round, or nil if the session is not awaiting a decision.
func (s *Session) PendingProposal() *TurnEvent {
	last := s.LastTurn()
	if last == nil || last.Role != RoleProposer || last.Round != s.Round {
		return nil
	}
	return last
}

// Winner reports the outcome of a finished session: "human",
// "opponent" or "tie". It returns "" while the game is in progress.
func (s *Session) Winner() string {
	if !s.Finished {
		return ""
	}
	switch {
	case s.HumanScore > s.AIScore:
		return string(ActorHuman)
	case s.AIScore > s.HumanScore:
		return string(ActorOpponent)
	default:
		return "tie"
	}
}

// Clone returns a deep copy so the store can hand out records without
// sharing the Turns backing array with callers.
func (s *Session) Clone() Session {
	out := *s
	out.Turns = make([]TurnEvent, len(s.Turns))
	for i, t := range s.Turns {
		if t.ProposedShare != nil {
			v := *t.ProposedShare
			t.ProposedShare = &v
		}
		if t.Accepted != nil {
			v := *t.Accepted
			t.Accepted = &v
		}
		out.Turns[i] = t
	}
	return out
}
