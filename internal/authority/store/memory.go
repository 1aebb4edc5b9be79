package store

import (
	"context"
	"sync"

	"organmatch/internal/authority"
	id "organmatch/pkg/domain"
	"organmatch/pkg/platform/sentinel"
)

// InMemory keeps authority records in process memory.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.Identity]*authority.Authority
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.Identity]*authority.Authority)}
}

func (s *InMemory) Upsert(_ context.Context, a *authority.Authority) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.records[a.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, authorityID id.Identity) (*authority.Authority, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.records[authorityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// Execute holds the write lock across validate and mutate so concurrent
// confirmations cannot both observe the same counter value.
func (s *InMemory) Execute(_ context.Context, authorityID id.Identity, validate func(*authority.Authority) error, mutate func(*authority.Authority)) (*authority.Authority, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.records[authorityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(a); err != nil {
		return nil, err
	}
	mutate(a)
	cp := *a
	return &cp, nil
}
