package authority

import (
	"context"
	"errors"
	"log/slog"

	authoritymetrics "organmatch/internal/authority/metrics"
	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/requestcontext"
)

// Store persists authority records.
type Store interface {
	Upsert(ctx context.Context, authority *Authority) error
	FindByID(ctx context.Context, authorityID id.Identity) (*Authority, error)
	// Execute loads the record, runs validate, and persists the result of
	// mutate while holding the store's write lock (mutex or FOR UPDATE).
	Execute(ctx context.Context, authorityID id.Identity, validate func(*Authority) error, mutate func(*Authority)) (*Authority, error)
}

// AdminGate answers whether a caller is the program admin.
type AdminGate interface {
	RequireAdmin(ctx context.Context, caller id.Identity) error
}

// Registry manages which medical authorities are active. Every privileged
// operation elsewhere passes through Require.
type Registry struct {
	store   Store
	admin   AdminGate
	logger  *slog.Logger
	metrics *authoritymetrics.Metrics
}

type Option func(r *Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

func WithMetrics(m *authoritymetrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

func NewRegistry(store Store, admin AdminGate, opts ...Option) *Registry {
	r := &Registry{store: store, admin: admin, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetAuthority creates an authority record or updates its active flag.
// Admin only. A fresh record always starts with a zero confirmation counter.
func (r *Registry) SetAuthority(ctx context.Context, caller, target id.Identity, active bool) (*Authority, error) {
	if err := r.admin.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	existing, err := r.store.FindByID(ctx, target)
	switch {
	case err == nil:
		updated, err := r.store.Execute(ctx, target,
			func(*Authority) error { return nil },
			func(a *Authority) { a.ApplyActiveFlag(active, now) },
		)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update authority")
		}
		existing = updated
	case errors.Is(err, sentinel.ErrNotFound):
		created, err := New(target, active, now)
		if err != nil {
			return nil, err
		}
		if err := r.store.Upsert(ctx, created); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create authority")
		}
		existing = created
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authority")
	}

	r.logger.InfoContext(ctx, "medical authority updated",
		"authority", target.String(),
		"active", active,
		"request_id", requestcontext.RequestID(ctx),
	)
	if r.metrics != nil {
		r.metrics.IncrementAuthorityUpdated(active)
	}
	return existing, nil
}

// RecordConfirmation credits one confirmed match to the authority with a
// checked counter increment. Only the match lifecycle calls this, inside its
// confirmation unit of work.
func (r *Registry) RecordConfirmation(ctx context.Context, authorityID id.Identity) (*Authority, error) {
	now := requestcontext.Now(ctx)
	a, err := r.store.Execute(ctx, authorityID,
		func(a *Authority) error { return a.CanRecordConfirmation() },
		func(a *Authority) { a.ApplyConfirmation(now) },
	)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "medical authority is not active")
		}
		return nil, err
	}
	return a, nil
}

// Get returns the authority record.
func (r *Registry) Get(ctx context.Context, authorityID id.Identity) (*Authority, error) {
	a, err := r.store.FindByID(ctx, authorityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "authority not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authority")
	}
	return a, nil
}

// Require fails unless the authority exists and is active.
func (r *Registry) Require(ctx context.Context, authorityID id.Identity) error {
	if authorityID.IsNil() {
		return dErrors.New(dErrors.CodeForbidden, "medical authority is not active")
	}
	authority, err := r.store.FindByID(ctx, authorityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeForbidden, "medical authority is not active")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authority")
	}
	if !authority.Active {
		return dErrors.New(dErrors.CodeForbidden, "medical authority is not active")
	}
	return nil
}
