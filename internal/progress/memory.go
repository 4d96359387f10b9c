package progress

import (
	"context"
	"sync"

	"github.com/myrjola/repcoach/internal/contexthelpers"
)

// MemoryStore keeps states in memory keyed by the authenticated user id. Anonymous callers share the empty id.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[string]State{}}
}

func (m *MemoryStore) Load(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[contexthelpers.AuthenticatedUserID(ctx)]
	if !ok {
		return NewState(), nil
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, p Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	userID := contexthelpers.AuthenticatedUserID(ctx)
	s, ok := m.states[userID]
	if !ok {
		s = NewState()
	}
	s.Apply(p)
	m.states[userID] = s.Clone()
	return nil
}
