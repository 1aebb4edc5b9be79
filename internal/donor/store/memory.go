package store

import (
	"context"
	"sync"

	"organmatch/internal/donor"
	id "organmatch/pkg/domain"
	"organmatch/pkg/platform/sentinel"
)

// InMemory keeps donor records in process memory, keyed by owner.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.Identity]*donor.Donor
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.Identity]*donor.Donor)}
}

func (s *InMemory) Create(_ context.Context, d *donor.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[d.Owner]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *d
	s.records[d.Owner] = &cp
	return nil
}

func (s *InMemory) FindByOwner(_ context.Context, owner id.Identity) (*donor.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.records[owner]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// Execute holds the write lock across validate and mutate.
func (s *InMemory) Execute(_ context.Context, owner id.Identity, validate func(*donor.Donor) error, mutate func(*donor.Donor)) (*donor.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.records[owner]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(d); err != nil {
		return nil, err
	}
	mutate(d)
	cp := *d
	return &cp, nil
}
