package match

import (
	"time"

	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
)

// Status is the proposal lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	// StatusRejected is a defined terminal state with no operation driving it
	// yet; a rejection workflow will use it.
	StatusRejected Status = "rejected"
)

// CanTransitionTo reports whether the lifecycle permits the move. Confirmed
// and Rejected are terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusRejected
	default:
		return false
	}
}

// Proposal is the record produced by the engine before clinical confirmation.
//
// Invariants:
//   - Created only by the engine, always as Pending
//   - Score is the exact value computed at proposal time, never recomputed
//   - Status moves Pending→Confirmed or Pending→Rejected, never back
type Proposal struct {
	ID        id.ProposalID `json:"id"`
	Recipient id.Identity   `json:"recipient"`
	Donor     id.Identity   `json:"donor"`
	Score     uint64        `json:"score"`
	Status    Status        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewProposal constructs a pending proposal for the chosen pair.
func NewProposal(recipient, donor id.Identity, score uint64, now time.Time) *Proposal {
	return &Proposal{
		ID:        id.NewProposalID(),
		Recipient: recipient,
		Donor:     donor,
		Score:     score,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanConfirm checks the proposal may transition to Confirmed.
// Use with ApplyConfirmation in Execute callbacks.
func (p *Proposal) CanConfirm() error {
	if !p.Status.CanTransitionTo(StatusConfirmed) {
		return dErrors.New(dErrors.CodeInvariantViolation, "match is not pending")
	}
	return nil
}

// ApplyConfirmation transitions the proposal to Confirmed.
// Call CanConfirm first to validate.
func (p *Proposal) ApplyConfirmation(now time.Time) {
	p.Status = StatusConfirmed
	p.UpdatedAt = now
}
