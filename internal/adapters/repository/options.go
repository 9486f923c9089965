package repository

import "github.com/okian/haggle/internal/domain/model"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithSessions seeds the store with existing records. Versions are
// preserved when set, otherwise initialized to 1. Used by tests and the
// simulate tool.
func WithSessions(sessions ...model.Session) Option {
	return func(m *MemStore) {
		for _, s := range sessions {
			if s.Version == 0 {
				s.Version = 1
			}
			m.byID[s.ID] = s.Clone()
		}
	}
}
