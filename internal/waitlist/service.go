package waitlist

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"organmatch/internal/platform/events"
	waitlistmetrics "organmatch/internal/waitlist/metrics"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/requestcontext"
)

// Store persists recipient records, keyed by owner identity.
type Store interface {
	Create(ctx context.Context, recipient *Recipient) error
	FindByOwner(ctx context.Context, owner id.Identity) (*Recipient, error)
	Update(ctx context.Context, recipient *Recipient) error
	// Execute loads the record, runs validate, and persists the result of
	// mutate while holding the store's write lock (mutex or FOR UPDATE).
	Execute(ctx context.Context, owner id.Identity, validate func(*Recipient) error, mutate func(*Recipient)) (*Recipient, error)
}

// CandidateIndex tracks which recipients are currently waiting, keyed by
// organ/blood pair. It exists so callers can assemble candidate sets for the
// match engine; the engine itself never reads it. The index is advisory:
// write failures are logged, not surfaced.
type CandidateIndex interface {
	Add(ctx context.Context, organ id.OrganType, blood id.BloodType, owner id.Identity) error
	Remove(ctx context.Context, organ id.OrganType, blood id.BloodType, owner id.Identity) error
	List(ctx context.Context, organ id.OrganType, blood id.BloodType) ([]id.Identity, error)
}

// AuthorityGate verifies the supervising medical authority is active.
type AuthorityGate interface {
	Require(ctx context.Context, authorityID id.Identity) error
}

// ProgramGate exposes the program-wide preconditions and the recipient
// counter.
type ProgramGate interface {
	RequireRunning(ctx context.Context) error
	IncrementRecipients(ctx context.Context) error
}

// Notifier is the fire-and-forget notification sink.
type Notifier interface {
	Emit(ctx context.Context, event events.Event) error
}

// StoreTx provides a transactional boundary for directory mutations.
// Implementations may wrap a database transaction or, in-memory, a coarse lock.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service is the recipient directory: create-or-update records under medical
// authority oversight.
type Service struct {
	store      Store
	index      CandidateIndex
	authority  AuthorityGate
	program    ProgramGate
	notifier   Notifier
	tx         StoreTx
	logger     *slog.Logger
	metrics    *waitlistmetrics.Metrics
	timeSource func(context.Context) time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *waitlistmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithStoreTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func New(store Store, index CandidateIndex, authority AuthorityGate, programState ProgramGate, opts ...Option) *Service {
	s := &Service{
		store:      store,
		index:      index,
		authority:  authority,
		program:    programState,
		logger:     slog.Default(),
		timeSource: requestcontext.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = newInMemoryStoreTx()
	}
	return s
}

// Upsert creates the record for owner if absent, otherwise updates the
// mutable subset (urgency, distance). Creation and the program counter
// increment commit as one unit of work.
func (s *Service) Upsert(ctx context.Context, authorityID, caller, owner id.Identity, data RecipientData) (*Recipient, error) {
	start := time.Now()
	if err := s.program.RequireRunning(ctx); err != nil {
		return nil, err
	}
	if err := s.authority.Require(ctx, authorityID); err != nil {
		return nil, err
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if caller != owner {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller does not own this recipient record")
	}

	var (
		recipient *Recipient
		created   bool
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := s.timeSource(txCtx)
		updated, err := s.store.Execute(txCtx, owner,
			func(r *Recipient) error {
				if r.Owner != caller {
					return dErrors.New(dErrors.CodeForbidden, "caller does not own this recipient record")
				}
				return nil
			},
			func(r *Recipient) {
				r.ApplyUpdate(data.Urgency, data.Distance, now)
			},
		)
		switch {
		case err == nil:
			recipient = updated
			return nil
		case errors.Is(err, sentinel.ErrNotFound):
			fresh, err := NewRecipient(owner, data, now)
			if err != nil {
				return err
			}
			if err := s.program.IncrementRecipients(txCtx); err != nil {
				return err
			}
			if err := s.store.Create(txCtx, fresh); err != nil {
				if errors.Is(err, sentinel.ErrAlreadyUsed) {
					return dErrors.New(dErrors.CodeConflict, "recipient record already exists")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create recipient")
			}
			recipient = fresh
			created = true
			return nil
		default:
			if dErrors.HasCode(err, dErrors.CodeForbidden) {
				return err
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update recipient")
		}
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.indexCandidate(ctx, recipient)
	}
	s.emitUpdated(ctx, recipient)
	if s.metrics != nil {
		s.metrics.ObserveUpsert(start, created)
	}
	return recipient, nil
}

// Get returns the record for the given owner.
func (s *Service) Get(ctx context.Context, owner id.Identity) (*Recipient, error) {
	recipient, err := s.store.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "recipient not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load recipient")
	}
	return recipient, nil
}

// Candidates lists the waiting recipients indexed under the organ/blood pair.
// Transport uses this to assemble the candidate set for a match search.
func (s *Service) Candidates(ctx context.Context, organ id.OrganType, blood id.BloodType) ([]id.Identity, error) {
	owners, err := s.index.List(ctx, organ, blood)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
	}
	return owners, nil
}

func (s *Service) indexCandidate(ctx context.Context, r *Recipient) {
	if err := s.index.Add(ctx, r.Data.Organ, r.Data.Blood, r.Owner); err != nil {
		s.logger.WarnContext(ctx, "failed to index candidate",
			"recipient", r.Owner.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) emitUpdated(ctx context.Context, r *Recipient) {
	if s.notifier == nil {
		return
	}
	event := events.Event{
		Type:      events.TypeRecipientUpdated,
		Timestamp: r.UpdatedAt,
		Recipient: r.Owner,
		Urgency:   r.Data.Urgency,
	}
	if err := s.notifier.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit recipient updated event",
			"recipient", r.Owner.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
