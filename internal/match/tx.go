package match

import (
	"context"
	"sync"
	"time"

	dErrors "organmatch/pkg/domain-errors"
)

// defaultTxTimeout is the maximum duration for a confirmation transaction.
const defaultTxTimeout = 5 * time.Second

// inMemoryStoreTx serializes lifecycle mutations behind one mutex. A
// confirmation touches four aggregates; holding the lock for the whole unit
// of work keeps concurrent confirmations from seeing half-applied state.
// Production wiring replaces it with a database transaction runner.
type inMemoryStoreTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

func newInMemoryStoreTx() *inMemoryStoreTx {
	return &inMemoryStoreTx{timeout: defaultTxTimeout}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return fn(ctx)
}
