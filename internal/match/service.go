package match

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"organmatch/internal/authority"
	"organmatch/internal/donor"
	matchmetrics "organmatch/internal/match/metrics"
	"organmatch/internal/platform/events"
	"organmatch/internal/waitlist"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/requestcontext"
)

// ProposalStore persists match proposals.
type ProposalStore interface {
	Create(ctx context.Context, proposal *Proposal) error
	FindByID(ctx context.Context, proposalID id.ProposalID) (*Proposal, error)
	// Execute loads the record, runs validate, and persists the result of
	// mutate while holding the store's write lock (mutex or FOR UPDATE).
	Execute(ctx context.Context, proposalID id.ProposalID, validate func(*Proposal) error, mutate func(*Proposal)) (*Proposal, error)
}

// RecipientDirectory is the slice of the recipient store the lifecycle needs.
type RecipientDirectory interface {
	FindByOwner(ctx context.Context, owner id.Identity) (*waitlist.Recipient, error)
	Execute(ctx context.Context, owner id.Identity, validate func(*waitlist.Recipient) error, mutate func(*waitlist.Recipient)) (*waitlist.Recipient, error)
}

// DonorDirectory is the slice of the donor store the lifecycle needs.
type DonorDirectory interface {
	FindByOwner(ctx context.Context, owner id.Identity) (*donor.Donor, error)
	Execute(ctx context.Context, owner id.Identity, validate func(*donor.Donor) error, mutate func(*donor.Donor)) (*donor.Donor, error)
}

// AuthorityRegistry gates callers and credits confirmations.
type AuthorityRegistry interface {
	Require(ctx context.Context, authorityID id.Identity) error
	RecordConfirmation(ctx context.Context, authorityID id.Identity) (*authority.Authority, error)
}

// CandidateIndex supplies default candidate sets and drops matched
// recipients. The index is advisory: write failures are logged, not surfaced.
type CandidateIndex interface {
	Remove(ctx context.Context, organ id.OrganType, blood id.BloodType, owner id.Identity) error
	List(ctx context.Context, organ id.OrganType, blood id.BloodType) ([]id.Identity, error)
}

// ProgramGate exposes the program-wide preconditions.
type ProgramGate interface {
	RequireRunning(ctx context.Context) error
}

// Notifier is the fire-and-forget notification sink.
type Notifier interface {
	Emit(ctx context.Context, event events.Event) error
}

// StoreTx provides the transactional boundary for a confirmation, which
// mutates four aggregates as one unit of work.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service drives the match lifecycle: search for the best proposal, then
// confirm it clinically. The caller of both operations is the supervising
// medical authority.
type Service struct {
	proposals  ProposalStore
	recipients RecipientDirectory
	donors     DonorDirectory
	registry   AuthorityRegistry
	index      CandidateIndex
	program    ProgramGate
	notifier   Notifier
	tx         StoreTx
	logger     *slog.Logger
	metrics    *matchmetrics.Metrics
	tracer     trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *matchmetrics.Metrics) Option {
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

func New(proposals ProposalStore, recipients RecipientDirectory, donors DonorDirectory, registry AuthorityRegistry, index CandidateIndex, programState ProgramGate, opts ...Option) *Service {
	s := &Service{
		proposals:  proposals,
		recipients: recipients,
		donors:     donors,
		registry:   registry,
		index:      index,
		program:    programState,
		logger:     slog.Default(),
		tracer:     otel.Tracer("organmatch/match"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = newInMemoryStoreTx()
	}
	return s
}

// FindBestMatch scores the candidate set against the donated organ and
// persists a pending proposal for the single best recipient. The caller must
// be an active medical authority. When candidateOwners is empty the indexed
// waiting set for the organ/blood pair is used instead. Candidate owners
// without a directory record are skipped, not failed.
func (s *Service) FindBestMatch(ctx context.Context, caller, donorID id.Identity, candidateOwners []id.Identity) (*Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "match.FindBestMatch")
	defer span.End()

	start := time.Now()
	if err := s.program.RequireRunning(ctx); err != nil {
		return nil, err
	}
	if err := s.registry.Require(ctx, caller); err != nil {
		return nil, err
	}

	d, err := s.donors.FindByOwner(ctx, donorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load donor")
	}
	if !d.IsActive() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "donor is not active")
	}

	if len(candidateOwners) == 0 {
		candidateOwners, err = s.index.List(ctx, d.Data.Organ, d.Data.Blood)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
		}
	}

	candidates := make([]*waitlist.Recipient, 0, len(candidateOwners))
	for _, owner := range candidateOwners {
		candidate, err := s.recipients.FindByOwner(ctx, owner)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidate")
		}
		candidates = append(candidates, candidate)
	}

	now := requestcontext.Now(ctx)
	best, score, err := SelectBest(d.Data, candidates, now)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNoMatch) && s.metrics != nil {
			s.metrics.ObserveNoMatch(start)
		}
		return nil, err
	}

	proposal := NewProposal(best.Owner, d.Owner, score, now)
	if err := s.proposals.Create(ctx, proposal); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store proposal")
	}

	span.SetAttributes(
		attribute.String("proposal.id", proposal.ID.String()),
		attribute.Int64("proposal.score", int64(score)),
	)
	s.logger.InfoContext(ctx, "match proposed",
		"proposal", proposal.ID.String(),
		"donor", d.Owner.String(),
		"recipient", best.Owner.String(),
		"score", score,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitFound(ctx, proposal)
	if s.metrics != nil {
		s.metrics.ObserveSearch(start, score)
	}
	return proposal, nil
}

// Confirm finalizes a pending proposal: the proposal moves to Confirmed, the
// recipient and donor records move to Matched, and the confirming authority's
// counter increments. All four mutations commit as one unit of work; on any
// validation failure nothing changes.
func (s *Service) Confirm(ctx context.Context, caller id.Identity, proposalID id.ProposalID) (*Proposal, error) {
	ctx, span := s.tracer.Start(ctx, "match.Confirm")
	defer span.End()

	if err := s.program.RequireRunning(ctx); err != nil {
		return nil, err
	}
	if err := s.registry.Require(ctx, caller); err != nil {
		return nil, err
	}

	var (
		proposal  *Proposal
		recipient *waitlist.Recipient
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := requestcontext.Now(txCtx)

		// Validation pass over every aggregate before the first write, so a
		// late refusal cannot leave the others half-applied.
		p, err := s.proposals.FindByID(txCtx, proposalID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "match not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proposal")
		}
		if err := p.CanConfirm(); err != nil {
			return err
		}

		r, err := s.recipients.FindByOwner(txCtx, p.Recipient)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load matched recipient")
		}
		if err := r.CanMatch(); err != nil {
			return err
		}

		d, err := s.donors.FindByOwner(txCtx, p.Donor)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load matched donor")
		}
		if err := d.CanMatch(); err != nil {
			return err
		}

		// The authority counter carries its own overflow check, so it
		// mutates first; the remaining writes re-validate under the lock.
		if _, err := s.registry.RecordConfirmation(txCtx, caller); err != nil {
			return err
		}

		proposal, err = s.proposals.Execute(txCtx, proposalID,
			func(p *Proposal) error { return p.CanConfirm() },
			func(p *Proposal) { p.ApplyConfirmation(now) },
		)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to confirm proposal")
		}

		recipient, err = s.recipients.Execute(txCtx, p.Recipient,
			func(r *waitlist.Recipient) error { return r.CanMatch() },
			func(r *waitlist.Recipient) { r.ApplyMatch(now) },
		)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark recipient matched")
		}

		_, err = s.donors.Execute(txCtx, p.Donor,
			func(d *donor.Donor) error { return d.CanMatch() },
			func(d *donor.Donor) { d.ApplyMatch() },
		)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark donor matched")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dropCandidate(ctx, recipient)
	span.SetAttributes(attribute.String("proposal.id", proposal.ID.String()))
	s.logger.InfoContext(ctx, "match confirmed",
		"proposal", proposal.ID.String(),
		"donor", proposal.Donor.String(),
		"recipient", proposal.Recipient.String(),
		"authority", caller.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emitConfirmed(ctx, proposal, caller)
	if s.metrics != nil {
		s.metrics.MatchesConfirmed.Inc()
	}
	return proposal, nil
}

// Get returns the proposal by ID.
func (s *Service) Get(ctx context.Context, proposalID id.ProposalID) (*Proposal, error) {
	p, err := s.proposals.FindByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "match not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proposal")
	}
	return p, nil
}

func (s *Service) dropCandidate(ctx context.Context, r *waitlist.Recipient) {
	if err := s.index.Remove(ctx, r.Data.Organ, r.Data.Blood, r.Owner); err != nil {
		s.logger.WarnContext(ctx, "failed to drop matched candidate from index",
			"recipient", r.Owner.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) emitFound(ctx context.Context, p *Proposal) {
	if s.notifier == nil {
		return
	}
	event := events.Event{
		Type:      events.TypeMatchFound,
		Timestamp: p.CreatedAt,
		Recipient: p.Recipient,
		Donor:     p.Donor,
		Proposal:  p.ID,
		Score:     p.Score,
	}
	if err := s.notifier.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit match found event",
			"proposal", p.ID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func (s *Service) emitConfirmed(ctx context.Context, p *Proposal, authorityID id.Identity) {
	if s.notifier == nil {
		return
	}
	event := events.Event{
		Type:      events.TypeMatchConfirmed,
		Timestamp: p.UpdatedAt,
		Recipient: p.Recipient,
		Donor:     p.Donor,
		Authority: authorityID,
		Proposal:  p.ID,
		Score:     p.Score,
	}
	if err := s.notifier.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit match confirmed event",
			"proposal", p.ID.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
