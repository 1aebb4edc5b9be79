package events

import (
	"context"
	"sync"
	"time"
)

// Notifier accepts completed-operation events. Implementations must be safe
// for concurrent use.
type Notifier interface {
	Emit(ctx context.Context, event Event) error
}

// MemorySink records events in memory so tests can assert on emissions.
type MemorySink struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	s.events = append(s.events, event)
	return nil
}

// List returns a copy of everything emitted so far.
func (s *MemorySink) List() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...)
}

// ListByType returns the emitted events carrying the given type.
func (s *MemorySink) ListByType(t Type) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
