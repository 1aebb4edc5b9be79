package program

import (
	"context"
	"sync"

	"organmatch/pkg/platform/sentinel"
)

// InMemoryStore keeps the program state in process memory. Execute holds the
// write lock across validate and mutate so counter increments never race.
type InMemoryStore struct {
	mu    sync.RWMutex
	state *State
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Create(_ context.Context, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != nil {
		return sentinel.ErrConflict
	}
	cp := *state
	s.state = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.state
	return &cp, nil
}

func (s *InMemoryStore) Execute(_ context.Context, validate func(*State) error, mutate func(*State)) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(s.state); err != nil {
		return nil, err
	}
	mutate(s.state)
	cp := *s.state
	return &cp, nil
}
