// Package repository defines the session store contract and errors.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/haggle/internal/domain/model"
	"github.com/okian/haggle/pkg/metrics"
)

// MemStore is the in-memory Store implementation.
//
// Records are deep-copied on the way in and out so callers never share
// a Turns backing array with the store. The per-record version number
// implements the optimistic concurrency contract: Replace compares the
// caller's version against the stored one under the write lock.
type MemStore struct {
	mu   sync.RWMutex
	byID map[string]model.Session
}

// NewMemStore constructs an empty in-memory session store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		byID: make(map[string]model.Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists a new session under its ID.
func (m *MemStore) Create(ctx context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[s.ID]; ok {
		metrics.RecordErrorByComponent("repository", "already_exists")
		return ErrAlreadyExists
	}
	s.Version = 1
	m.byID[s.ID] = s.Clone()
	metrics.UpdateSessionsTotal(len(m.byID))
	return nil
}

// Get returns a copy of the session with the given id.
func (m *MemStore) Get(ctx context.Context, id string) (model.Session, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Session{}, ErrNotFound
	}
	return s.Clone(), nil
}

// Replace overwrites the stored session iff versions match.
func (m *MemStore) Replace(ctx context.Context, s model.Session) (model.Session, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.byID[s.ID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Session{}, ErrNotFound
	}
	if stored.Version != s.Version {
		metrics.RecordStoreConflict()
		return model.Session{}, ErrVersionConflict
	}
	s.Version++
	m.byID[s.ID] = s.Clone()
	return s.Clone(), nil
}

// FinishedWithPlayerName returns leaderboard-eligible sessions.
func (m *MemStore) FinishedWithPlayerName(ctx context.Context) ([]model.Session, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Session, 0, len(m.byID))
	for _, s := range m.byID {
		if s.Finished && s.PlayerName != "" {
			out = append(out, s.Clone())
		}
	}
	return out, nil
}

// Count returns the total number of stored sessions.
func (m *MemStore) Count(ctx context.Context) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}
