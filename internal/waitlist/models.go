package waitlist

import (
	"time"

	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
)

// Bounds on submitted medical data.
const (
	MaxUrgency     = 100
	MaxAge         = 120
	MaxNotesLength = 1000
)

// RecipientData is the medical payload submitted for a waiting recipient.
type RecipientData struct {
	Urgency  uint8         `json:"urgency"`
	Distance uint32        `json:"distance"`
	Markers  id.HLAMarkers `json:"markers"`
	Blood    id.BloodType  `json:"blood_type"`
	Organ    id.OrganType  `json:"organ_type"`
	Age      uint8         `json:"age"`
	Notes    string        `json:"notes"`
}

// Validate applies the stateless bounds checks. No side effects.
func (d RecipientData) Validate() error {
	if d.Urgency > MaxUrgency {
		return dErrors.New(dErrors.CodeValidation, "urgency must be 100 or less")
	}
	if d.Age > MaxAge {
		return dErrors.New(dErrors.CodeValidation, "age must be 120 or less")
	}
	if len(d.Notes) > MaxNotesLength {
		return dErrors.New(dErrors.CodeValidation, "notes must be 1000 characters or less")
	}
	if !d.Blood.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown blood type")
	}
	if !d.Organ.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown organ type")
	}
	return nil
}

// Status is the recipient lifecycle state.
type Status string

const (
	StatusActive  Status = "active"
	StatusMatched Status = "matched"
	// StatusRemoved is a defined terminal state with no operation driving it
	// yet; a removal workflow will use it.
	StatusRemoved Status = "removed"
)

// CanTransitionTo reports whether the lifecycle permits the move. Matched and
// Removed are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusMatched || next == StatusRemoved
	default:
		return false
	}
}

// Recipient is the aggregate for one waiting patient.
//
// Invariants:
//   - CreatedAt is set once and immutable after creation
//   - Only Urgency, Distance, and UpdatedAt may change after creation
//   - Status moves Active→Matched or Active→Removed, never back
type Recipient struct {
	Owner     id.Identity   `json:"owner"`
	Data      RecipientData `json:"data"`
	Status    Status        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewRecipient validates the payload and constructs an active record.
func NewRecipient(owner id.Identity, data RecipientData, now time.Time) (*Recipient, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "recipient owner cannot be empty")
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &Recipient{
		Owner:     owner,
		Data:      data,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyUpdate changes the mutable subset: urgency, distance, and the update
// timestamp. Everything else is immutable after creation.
func (r *Recipient) ApplyUpdate(urgency uint8, distance uint32, now time.Time) {
	r.Data.Urgency = urgency
	r.Data.Distance = distance
	r.UpdatedAt = now
}

// CanMatch checks the recipient may transition to Matched.
// Use with ApplyMatch in Execute callbacks.
func (r *Recipient) CanMatch() error {
	if !r.Status.CanTransitionTo(StatusMatched) {
		return dErrors.New(dErrors.CodeInvariantViolation, "recipient is not active")
	}
	return nil
}

// ApplyMatch transitions the recipient to Matched.
// Call CanMatch first to validate.
func (r *Recipient) ApplyMatch(now time.Time) {
	r.Status = StatusMatched
	r.UpdatedAt = now
}

// IsActive reports whether the recipient is still waiting.
func (r *Recipient) IsActive() bool {
	return r.Status == StatusActive
}
