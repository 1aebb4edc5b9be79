package authority

import (
	"math"
	"time"

	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
)

// Authority is a privileged identity permitted to register donors and
// recipients and to confirm matches.
//
// Invariants:
//   - ConfirmedMatches only increases, and only via match confirmation
//   - Active may flip in either direction, admin-gated
type Authority struct {
	ID               id.Identity `json:"id"`
	Active           bool        `json:"active"`
	ConfirmedMatches uint32      `json:"confirmed_matches"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// New constructs an authority record with a zero confirmation counter.
func New(authorityID id.Identity, active bool, now time.Time) (*Authority, error) {
	if authorityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "authority identity cannot be empty")
	}
	return &Authority{
		ID:               authorityID,
		Active:           active,
		ConfirmedMatches: 0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// ApplyActiveFlag sets the active flag.
func (a *Authority) ApplyActiveFlag(active bool, now time.Time) {
	a.Active = active
	a.UpdatedAt = now
}

// CanRecordConfirmation checks the confirmation counter will not wrap.
// Use with ApplyConfirmation in Execute callbacks.
func (a *Authority) CanRecordConfirmation() error {
	if !a.Active {
		return dErrors.New(dErrors.CodeForbidden, "medical authority is not active")
	}
	if a.ConfirmedMatches == math.MaxUint32 {
		return dErrors.New(dErrors.CodeOverflow, "confirmed match count would overflow")
	}
	return nil
}

// ApplyConfirmation credits one confirmed match to the authority.
// Call CanRecordConfirmation first to validate.
func (a *Authority) ApplyConfirmation(now time.Time) {
	a.ConfirmedMatches++
	a.UpdatedAt = now
}
