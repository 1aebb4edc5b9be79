package program

import (
	"math"
	"time"

	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
)

// State is the process-wide program configuration.
//
// Invariants:
//   - Admin is set once at initialization and never changes
//   - RecipientCount only increases, exactly once per newly created recipient
//   - Paused is mutated only by admin-gated operations
type State struct {
	Admin          id.Identity `json:"admin"`
	RecipientCount uint32      `json:"recipient_count"`
	Paused         bool        `json:"paused"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewState constructs the initial program state.
func NewState(admin id.Identity, now time.Time) (*State, error) {
	if admin.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "admin identity cannot be empty")
	}
	return &State{
		Admin:          admin,
		RecipientCount: 0,
		Paused:         false,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CanIncrementRecipients checks that the recipient counter will not wrap.
// Use with ApplyRecipientIncrement in Execute callbacks.
func (s *State) CanIncrementRecipients() error {
	if s.RecipientCount == math.MaxUint32 {
		return dErrors.New(dErrors.CodeOverflow, "recipient count would overflow")
	}
	return nil
}

// ApplyRecipientIncrement records one newly created recipient.
// Call CanIncrementRecipients first to validate.
func (s *State) ApplyRecipientIncrement(now time.Time) {
	s.RecipientCount++
	s.UpdatedAt = now
}

// CanSetPaused checks the pause flag transition is a real change.
func (s *State) CanSetPaused(paused bool) error {
	if s.Paused == paused {
		if paused {
			return dErrors.New(dErrors.CodeInvariantViolation, "program is already paused")
		}
		return dErrors.New(dErrors.CodeInvariantViolation, "program is not paused")
	}
	return nil
}

// ApplySetPaused flips the pause flag.
// Call CanSetPaused first to validate.
func (s *State) ApplySetPaused(paused bool, now time.Time) {
	s.Paused = paused
	s.UpdatedAt = now
}
