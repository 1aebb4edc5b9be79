package donor

import (
	"time"

	"organmatch/internal/waitlist"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
)

// DonorData is the medical payload submitted for a donated organ.
type DonorData struct {
	Markers id.HLAMarkers `json:"markers"`
	Blood   id.BloodType  `json:"blood_type"`
	Organ   id.OrganType  `json:"organ_type"`
	Notes   string        `json:"notes"`
}

// Validate applies the stateless bounds checks. No side effects.
func (d DonorData) Validate() error {
	if len(d.Notes) > waitlist.MaxNotesLength {
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

// Status is the donor lifecycle state.
type Status string

const (
	StatusActive  Status = "active"
	StatusMatched Status = "matched"
	// StatusWithdrawn is a defined terminal state with no operation driving
	// it yet; a withdrawal workflow will use it.
	StatusWithdrawn Status = "withdrawn"
)

// CanTransitionTo reports whether the lifecycle permits the move. Matched and
// Withdrawn are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive:
		return next == StatusMatched || next == StatusWithdrawn
	default:
		return false
	}
}

// Donor is the aggregate for one donated organ. Exactly one record exists per
// owner identity.
type Donor struct {
	Owner     id.Identity `json:"owner"`
	Data      DonorData   `json:"data"`
	Status    Status      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewDonor validates the payload and constructs an active record.
func NewDonor(owner id.Identity, data DonorData, now time.Time) (*Donor, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "donor owner cannot be empty")
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &Donor{
		Owner:     owner,
		Data:      data,
		Status:    StatusActive,
		CreatedAt: now,
	}, nil
}

// CanMatch checks the donor may transition to Matched.
// Use with ApplyMatch in Execute callbacks.
func (d *Donor) CanMatch() error {
	if !d.Status.CanTransitionTo(StatusMatched) {
		return dErrors.New(dErrors.CodeInvariantViolation, "donor is not active")
	}
	return nil
}

// ApplyMatch transitions the donor to Matched.
// Call CanMatch first to validate.
func (d *Donor) ApplyMatch() {
	d.Status = StatusMatched
}

// IsActive reports whether the organ is still available.
func (d *Donor) IsActive() bool {
	return d.Status == StatusActive
}
