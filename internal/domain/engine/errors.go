package engine

import "errors"

// Sentinel kinds for turn-engine errors. Callers classify with errors.Is.
var (
	// ErrInvalidInput marks malformed or out-of-range request data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidState marks actions against an already finished game.
	ErrInvalidState = errors.New("game already finished")
	// ErrTurnOrderViolation marks a proposal out of turn or a duplicate
	// proposal for the current round.
	ErrTurnOrderViolation = errors.New("turn order violation")
	// ErrNoPendingProposal marks a decision with no matching proposal to
	// decide on.
	ErrNoPendingProposal = errors.New("no pending proposal")
)
