package store

import (
	"context"
	"sync"

	"organmatch/internal/match"
	id "organmatch/pkg/domain"
	"organmatch/pkg/platform/sentinel"
)

// InMemory keeps match proposals in process memory, keyed by proposal ID.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.ProposalID]*match.Proposal
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[id.ProposalID]*match.Proposal)}
}

func (s *InMemory) Create(_ context.Context, p *match.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[p.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *p
	s.records[p.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, proposalID id.ProposalID) (*match.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.records[proposalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// Execute holds the write lock across validate and mutate.
func (s *InMemory) Execute(_ context.Context, proposalID id.ProposalID, validate func(*match.Proposal) error, mutate func(*match.Proposal)) (*match.Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.records[proposalID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	mutate(p)
	cp := *p
	return &cp, nil
}
