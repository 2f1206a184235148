package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/auth-service/pkg/storage"
)

const defaultAcquireTimeout = 5 * time.Second

// Runner runs units of work in pgx transactions drawn from a pool.
type Runner struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

// NewRunner constructs a Runner. A non-positive acquireTimeout uses the default.
func NewRunner(pool *pgxpool.Pool, acquireTimeout time.Duration) *Runner {
	if acquireTimeout <= 0 {
		acquireTimeout = defaultAcquireTimeout
	}
	return &Runner{pool: pool, acquireTimeout: acquireTimeout}
}

// RunInTx begins a read-committed transaction, runs fn and commits when fn succeeds.
// Errors from fn come back untouched; the deferred rollback is a no-op after commit.
func (r *Runner) RunInTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, r.acquireTimeout)
	conn, err := r.pool.Acquire(acquireCtx)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return storage.New(storage.KindConnectionNotAvailable, "pool acquire timed out", err)
		}
		return Classify(err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return Classify(err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return Classify(err)
	}
	return nil
}

// Ping checks that the pool can reach the server.
func (r *Runner) Ping(ctx context.Context) error {
	return Classify(r.pool.Ping(ctx))
}

var _ storage.Runner[pgx.Tx] = (*Runner)(nil)
