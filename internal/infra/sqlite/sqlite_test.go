package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/auth-service/pkg/storage"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.Error(t, err)
}

func TestClassify_EngineErrors(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.ExecContext(ctx, `INSERT INTO credentials (id, email, password) VALUES ('c1', 'a@b.co', 'h')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO credentials (id, email, password) VALUES ('c2', 'a@b.co', 'h')`)
	require.Equal(t, storage.KindQueryFailed, storage.KindOf(Classify(err)))
	require.Contains(t, Classify(err).Error(), "UNIQUE constraint failed")

	_, err = db.ExecContext(ctx, `SELECT nope FROM credentials`)
	classified := Classify(err)
	require.Equal(t, storage.KindColumnNotFound, storage.KindOf(classified))
	var storageErr *storage.Error
	require.True(t, errors.As(classified, &storageErr))
	require.Equal(t, "nope", storageErr.Detail)

	err = db.QueryRowContext(ctx, `SELECT id FROM credentials WHERE email = 'x@y.zz'`).Scan(new(string))
	require.Equal(t, storage.KindNotFound, storage.KindOf(Classify(err)))
}

func TestClassify_ClientErrors(t *testing.T) {
	require.Nil(t, Classify(nil))
	require.Equal(t, storage.KindConnectionFailed, storage.KindOf(Classify(sql.ErrConnDone)))
	require.Equal(t, storage.KindCommunicationError, storage.KindOf(Classify(context.Canceled)))
	require.Equal(t, storage.KindUnknown, storage.KindOf(Classify(errors.New("odd"))))
}

func TestMillisRoundTrip(t *testing.T) {
	in := time.Date(2025, 3, 4, 5, 6, 7, 891_234_567, time.FixedZone("x", 3600))
	out, ok := FromMillis(ToMillis(in))
	require.True(t, ok)
	require.Equal(t, time.UTC, out.Location())
	require.True(t, in.Truncate(time.Millisecond).Equal(out))

	_, ok = FromMillis(253402300799999 + 1)
	require.False(t, ok)
}

func TestRunner_CommitsAndAborts(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	runner := NewRunner(db, time.Second)

	err := runner.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO credentials (id, email, password) VALUES ('c1', 'kept@b.co', 'h')`)
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = runner.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO credentials (id, email, password) VALUES ('c2', 'lost@b.co', 'h')`); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&count))
	require.Equal(t, 1, count)
	require.NoError(t, runner.Ping(ctx))
}

func TestRunner_AcquireTimeout(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	runner := NewRunner(db, 50*time.Millisecond)

	// Hold the only connection so the next acquire has to wait.
	held, err := db.Conn(ctx)
	require.NoError(t, err)
	defer held.Close()

	err = runner.RunInTx(ctx, func(context.Context, *sql.Tx) error { return nil })
	require.ErrorIs(t, err, storage.ErrConnectionNotAvailable)
}
