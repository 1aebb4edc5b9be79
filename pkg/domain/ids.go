// Package domain provides typed identifiers and closed medical enumerations
// shared across the allocation modules.
//
// IDs are distinct types over uuid.UUID so a donor reference can never be
// passed where a proposal reference is expected. Parse functions validate at
// the boundary; services may assume parsed values are well formed.
package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Identity references a caller: a patient, a donor, a medical authority, or
// the program admin. Which role an identity plays is decided by the records
// that point at it, not by the identifier itself.
type Identity uuid.UUID

// ProposalID references a match proposal produced by the engine.
type ProposalID uuid.UUID

// NewIdentity returns a fresh random identity.
func NewIdentity() Identity {
	return Identity(uuid.New())
}

// ParseIdentity validates and converts a string into an Identity.
func ParseIdentity(s string) (Identity, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid identity: %w", err)
	}
	return Identity(u), nil
}

func (i Identity) String() string {
	return uuid.UUID(i).String()
}

// IsNil reports whether the identity is the zero value.
func (i Identity) IsNil() bool {
	return uuid.UUID(i) == uuid.Nil
}

// MarshalText renders the identity in canonical UUID form so JSON payloads
// carry strings, not byte arrays.
func (i Identity) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText parses the canonical UUID form.
func (i *Identity) UnmarshalText(b []byte) error {
	parsed, err := ParseIdentity(string(b))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// NewProposalID returns a fresh random proposal identifier.
func NewProposalID() ProposalID {
	return ProposalID(uuid.New())
}

// ParseProposalID validates and converts a string into a ProposalID.
func ParseProposalID(s string) (ProposalID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ProposalID{}, fmt.Errorf("invalid proposal id: %w", err)
	}
	return ProposalID(u), nil
}

func (p ProposalID) String() string {
	return uuid.UUID(p).String()
}

// IsNil reports whether the proposal ID is the zero value.
func (p ProposalID) IsNil() bool {
	return uuid.UUID(p) == uuid.Nil
}

// MarshalText renders the proposal ID in canonical UUID form.
func (p ProposalID) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the canonical UUID form.
func (p *ProposalID) UnmarshalText(b []byte) error {
	parsed, err := ParseProposalID(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
