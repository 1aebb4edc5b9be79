package store

import (
	"context"
	"sync"

	"organmatch/internal/waitlist"
	id "organmatch/pkg/domain"
	"organmatch/pkg/platform/sentinel"
)

// InMemory keeps recipient records in process memory, keyed by owner.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.Identity]*waitlist.Recipient
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.Identity]*waitlist.Recipient)}
}

func (s *InMemory) Create(_ context.Context, r *waitlist.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[r.Owner]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *r
	s.records[r.Owner] = &cp
	return nil
}

func (s *InMemory) FindByOwner(_ context.Context, owner id.Identity) (*waitlist.Recipient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[owner]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *InMemory) Update(_ context.Context, r *waitlist.Recipient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[r.Owner]; !exists {
		return sentinel.ErrNotFound
	}
	cp := *r
	s.records[r.Owner] = &cp
	return nil
}

// Execute holds the write lock across validate and mutate so a concurrent
// confirmation and update cannot interleave on the same record.
func (s *InMemory) Execute(_ context.Context, owner id.Identity, validate func(*waitlist.Recipient) error, mutate func(*waitlist.Recipient)) (*waitlist.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[owner]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(r); err != nil {
		return nil, err
	}
	mutate(r)
	cp := *r
	return &cp, nil
}
