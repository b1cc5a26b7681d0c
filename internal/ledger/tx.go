// Package ledger provides the serialization primitives the funding state
// machine is built on: a transaction runner that executes every mutating
// operation one at a time, and monotonic id sequences that advance under the
// same guarantee.
package ledger

import (
	"context"
	"sync"
	"time"

	dErrors "fundledger/pkg/domain-errors"
)

// Tx is the transactional boundary for ledger mutations. Implementations may
// wrap a database transaction or, in-memory, a coarse lock.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// defaultTxTimeout bounds how long a mutation may hold the ledger.
const defaultTxTimeout = 5 * time.Second

// serialTx serializes all mutations behind a single mutex. Contributions,
// milestone completion, and payouts all read and write overlapping entities
// (project funding, researcher reputation, the pooled balance), so the ledger
// is modeled as one serialized state machine rather than sharded per entity.
// A check-then-update sequence inside the callback can therefore never
// interleave with another mutation.
type serialTx struct {
	mu      sync.Mutex
	timeout time.Duration
}

type TxOption func(*serialTx)

// WithTimeout overrides the default transaction timeout.
func WithTimeout(d time.Duration) TxOption {
	return func(t *serialTx) { t.timeout = d }
}

func NewTx(opts ...TxOption) Tx {
	t := &serialTx{timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *serialTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check again after acquiring the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}
