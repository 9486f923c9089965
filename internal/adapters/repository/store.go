// Package repository defines the session store contract and errors.
package repository

import (
	"context"

	"github.com/okian/haggle/internal/domain/model"
)

// Store provides durable keyed access to session records.
//
// Replace is conditional: it succeeds only when the stored record still
// carries the version the caller loaded, so overlapping writers on the
// same session cannot interleave turn events. The losing writer gets
// ErrVersionConflict and must reload.
type Store interface {
	// Create persists a new session under its ID.
	// Returns ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, s model.Session) error

	// Get returns the session with the given id.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (model.Session, error)

	// Replace overwrites the stored session iff the stored version
	// matches s.Version. On success the returned record carries the
	// bumped version.
	Replace(ctx context.Context, s model.Session) (model.Session, error)

	// FinishedWithPlayerName returns all finished sessions that carry a
	// non-empty player name, in unspecified order.
	FinishedWithPlayerName(ctx context.Context) ([]model.Session, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) int
}
