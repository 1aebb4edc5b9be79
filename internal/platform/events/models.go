package events

import (
	"time"

	id "organmatch/pkg/domain"
)

// Type labels what happened. The sink is fire-and-forget: emission failures
// never fail the operation that produced the event.
type Type string

const (
	TypeRecipientUpdated Type = "recipient_updated"
	TypeMatchFound       Type = "match_found"
	TypeMatchConfirmed   Type = "match_confirmed"
)

// Event is emitted from domain logic to capture completed operations. Keep it
// transport-agnostic so stores and sinks can fan out. Fields outside the
// common set are populated per type:
//
//	recipient_updated: Recipient, Urgency
//	match_found:       Donor, Recipient, Score
//	match_confirmed:   Proposal, Donor, Recipient, Authority
type Event struct {
	Type      Type          `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Recipient id.Identity   `json:"recipient,omitzero"`
	Donor     id.Identity   `json:"donor,omitzero"`
	Authority id.Identity   `json:"authority,omitzero"`
	Proposal  id.ProposalID `json:"proposal,omitzero"`
	Urgency   uint8         `json:"urgency,omitempty"`
	Score     uint64        `json:"score,omitempty"`
}

// Key returns the partitioning key for the event: the entity most readers
// will follow.
func (e Event) Key() string {
	switch e.Type {
	case TypeRecipientUpdated:
		return e.Recipient.String()
	case TypeMatchFound:
		return e.Donor.String()
	case TypeMatchConfirmed:
		return e.Proposal.String()
	default:
		return ""
	}
}
