package program

import (
	"context"
	"errors"
	"log/slog"

	id "organmatch/pkg/domain"
	dErrors "organmatch/pkg/domain-errors"
	"organmatch/pkg/platform/sentinel"
	"organmatch/pkg/requestcontext"
)

// Store persists the singleton program state.
type Store interface {
	Create(ctx context.Context, state *State) error
	Get(ctx context.Context) (*State, error)
	// Execute loads the state, runs validate, and persists the result of
	// mutate while holding the store's write lock (mutex or FOR UPDATE).
	Execute(ctx context.Context, validate func(*State) error, mutate func(*State)) (*State, error)
}

// Service owns program initialization, the admin gate, and the pause flag.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize creates the program state with the given admin identity.
// A second initialization attempt is a conflict.
func (s *Service) Initialize(ctx context.Context, admin id.Identity) (*State, error) {
	state, err := NewState(admin, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, state); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "program is already initialized")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to initialize program")
	}
	s.logger.InfoContext(ctx, "program initialized",
		"admin", admin.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return state, nil
}

// State returns the current program state.
func (s *Service) State(ctx context.Context) (*State, error) {
	state, err := s.store.Get(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeConflict, "program is not initialized")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load program state")
	}
	return state, nil
}

// RequireAdmin fails unless caller is the program admin.
func (s *Service) RequireAdmin(ctx context.Context, caller id.Identity) error {
	state, err := s.State(ctx)
	if err != nil {
		return err
	}
	if caller != state.Admin {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is not the program admin")
	}
	return nil
}

// RequireRunning fails while the program is paused or uninitialized. Every
// privileged write operation calls this before touching entity state.
func (s *Service) RequireRunning(ctx context.Context) error {
	state, err := s.State(ctx)
	if err != nil {
		return err
	}
	if state.Paused {
		return dErrors.New(dErrors.CodeConflict, "program is paused")
	}
	return nil
}

// SetPaused flips the pause flag. Admin only.
func (s *Service) SetPaused(ctx context.Context, caller id.Identity, paused bool) (*State, error) {
	if err := s.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	state, err := s.store.Execute(ctx,
		func(st *State) error {
			return st.CanSetPaused(paused)
		},
		func(st *State) {
			st.ApplySetPaused(paused, now)
		},
	)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "program pause flag changed",
		"paused", paused,
		"request_id", requestcontext.RequestID(ctx),
	)
	return state, nil
}

// IncrementRecipients bumps the recipient counter with overflow checking.
// Called exactly once per newly created recipient, inside the creating
// unit of work.
func (s *Service) IncrementRecipients(ctx context.Context) error {
	now := requestcontext.Now(ctx)
	_, err := s.store.Execute(ctx,
		func(st *State) error {
			return st.CanIncrementRecipients()
		},
		func(st *State) {
			st.ApplyRecipientIncrement(now)
		},
	)
	return err
}
