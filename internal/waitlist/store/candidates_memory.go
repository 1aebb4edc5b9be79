package store

import (
	"context"
	"sync"

	id "organmatch/pkg/domain"
)

type candidateKey struct {
	organ id.OrganType
	blood id.BloodType
}

// InMemoryCandidates is a process-local candidate index. List returns owners
// in insertion order so repeated searches see a stable candidate ordering.
type InMemoryCandidates struct {
	mu   sync.RWMutex
	sets map[candidateKey][]id.Identity
}

func NewInMemoryCandidates() *InMemoryCandidates {
	return &InMemoryCandidates{sets: make(map[candidateKey][]id.Identity)}
}

func (c *InMemoryCandidates) Add(_ context.Context, organ id.OrganType, blood id.BloodType, owner id.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := candidateKey{organ: organ, blood: blood}
	for _, existing := range c.sets[key] {
		if existing == owner {
			return nil
		}
	}
	c.sets[key] = append(c.sets[key], owner)
	return nil
}

func (c *InMemoryCandidates) Remove(_ context.Context, organ id.OrganType, blood id.BloodType, owner id.Identity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := candidateKey{organ: organ, blood: blood}
	owners := c.sets[key]
	for i, existing := range owners {
		if existing == owner {
			c.sets[key] = append(owners[:i], owners[i+1:]...)
			return nil
		}
	}
	return nil
}

func (c *InMemoryCandidates) List(_ context.Context, organ id.OrganType, blood id.BloodType) ([]id.Identity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := candidateKey{organ: organ, blood: blood}
	return append([]id.Identity{}, c.sets[key]...), nil
}
