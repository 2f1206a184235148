package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yanqian/auth-service/pkg/storage"
)

const defaultAcquireTimeout = 5 * time.Second

// Runner runs units of work in database/sql transactions on the embedded engine.
type Runner struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// NewRunner constructs a Runner. A non-positive acquireTimeout uses the default.
func NewRunner(db *sql.DB, acquireTimeout time.Duration) *Runner {
	if acquireTimeout <= 0 {
		acquireTimeout = defaultAcquireTimeout
	}
	return &Runner{db: db, acquireTimeout: acquireTimeout}
}

// RunInTx begins a transaction on a dedicated connection, runs fn and commits when fn succeeds.
func (r *Runner) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, r.acquireTimeout)
	conn, err := r.db.Conn(acquireCtx)
	cancel()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return storage.New(storage.KindConnectionNotAvailable, "connection acquire timed out", err)
		}
		return Classify(err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Classify(err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return Classify(err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *Runner) Ping(ctx context.Context) error {
	return Classify(r.db.PingContext(ctx))
}

var _ storage.Runner[*sql.Tx] = (*Runner)(nil)
