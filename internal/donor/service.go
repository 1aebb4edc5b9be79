package donor

import (
	"context"
	"errors"
	"log/slog"

	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/requestcontext"
)

// Store persists donor records, keyed by owner identity.
type Store interface {
	Create(ctx context.Context, donor *Donor) error
	FindByOwner(ctx context.Context, owner id.Identity) (*Donor, error)
	// Execute loads the record, runs validate, and persists the result of
	// mutate while holding the store's write lock (mutex or FOR UPDATE).
	Execute(ctx context.Context, owner id.Identity, validate func(*Donor) error, mutate func(*Donor)) (*Donor, error)
}

// AuthorityGate verifies the supervising medical authority is active.
type AuthorityGate interface {
	Require(ctx context.Context, authorityID id.Identity) error
}

// ProgramGate exposes the program-wide preconditions.
type ProgramGate interface {
	RequireRunning(ctx context.Context) error
}

// Service is the donor directory.
type Service struct {
	store     Store
	authority AuthorityGate
	program   ProgramGate
	logger    *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, authority AuthorityGate, programState ProgramGate, opts ...Option) *Service {
	s := &Service{store: store, authority: authority, program: programState, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add registers a donated organ. Exactly one record per owner identity;
// re-adding for the same identity is a conflict surfaced by the store.
func (s *Service) Add(ctx context.Context, authorityID, caller id.Identity, data DonorData) (*Donor, error) {
	if err := s.program.RequireRunning(ctx); err != nil {
		return nil, err
	}
	if err := s.authority.Require(ctx, authorityID); err != nil {
		return nil, err
	}

	d, err := NewDonor(caller, data, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, d); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "donor record already exists for this identity")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create donor")
	}

	s.logger.InfoContext(ctx, "donor registered",
		"donor", d.Owner.String(),
		"organ", d.Data.Organ.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return d, nil
}

// Get returns the record for the given owner.
func (s *Service) Get(ctx context.Context, owner id.Identity) (*Donor, error) {
	d, err := s.store.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor")
	}
	return d, nil
}
