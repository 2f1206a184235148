package sessionrepo

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/auth-service/internal/domain/auth"
	"github.com/yanqian/auth-service/internal/infra/credentialrepo"
	"github.com/yanqian/auth-service/internal/infra/enginetest"
	"github.com/yanqian/auth-service/pkg/storage"
	"github.com/yanqian/auth-service/pkg/util"
)

// Both adapters run the same suite; Postgres only when AUTH_DATABASE_URL is set.
func TestRepository(t *testing.T) {
	t.Run("sqlite", func(t *testing.T) {
		_, runner := enginetest.SQLite(t)
		runRepositorySuite(t, engine[*sql.Tx]{
			runner:      runner,
			repo:        NewSQLiteRepository(),
			credentials: credentialrepo.NewSQLiteRepository(),
		})
	})
	t.Run("postgres", func(t *testing.T) {
		_, runner := enginetest.Postgres(t)
		runRepositorySuite(t, engine[pgx.Tx]{
			runner:      runner,
			repo:        NewPostgresRepository(),
			credentials: credentialrepo.NewPostgresRepository(),
		})
	})
}

func runRepositorySuite[Tx any](t *testing.T, e engine[Tx]) {
	t.Run("insert and lookup", func(t *testing.T) { testInsertAndLookup(t, e) })
	t.Run("missing row", func(t *testing.T) { testMissingRow(t, e) })
	t.Run("newest session wins", func(t *testing.T) { testNewestSessionWins(t, e) })
	t.Run("delete by credential deactivates all", func(t *testing.T) { testDeleteByCredential(t, e) })
	t.Run("unknown credential", func(t *testing.T) { testUnknownCredential(t, e) })
	t.Run("unsupported key", func(t *testing.T) { testUnsupportedKey(t, e) })
}

var errRollback = errors.New("rollback")

type engine[Tx any] struct {
	runner      storage.Runner[Tx]
	repo        auth.SessionRepository[Tx]
	credentials auth.CredentialRepository[Tx]
}

// within runs fn in a transaction that is always rolled back.
func (e engine[Tx]) within(t *testing.T, fn func(ctx context.Context, tx Tx)) {
	t.Helper()
	err := e.runner.RunInTx(context.Background(), func(ctx context.Context, tx Tx) error {
		fn(ctx, tx)
		return errRollback
	})
	require.ErrorIs(t, err, errRollback)
}

func (e engine[Tx]) seedCredential(ctx context.Context, t *testing.T, tx Tx) uuid.UUID {
	t.Helper()
	cred, err := e.credentials.Insert(ctx, tx, auth.CreateCredential{Email: uuid.NewString() + "@b.co", Password: "h"})
	require.NoError(t, err)
	return cred.ID
}

func testInsertAndLookup[Tx any](t *testing.T, e engine[Tx]) {
	e.within(t, func(ctx context.Context, tx Tx) {
		credentialID := e.seedCredential(ctx, t, tx)
		expires := time.Now().Add(24 * time.Hour)

		created, err := e.repo.Insert(ctx, tx, auth.CreateSession{ExpiresAt: expires, CredentialID: credentialID})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, created.ID)
		require.True(t, created.Active)
		require.Equal(t, credentialID, created.CredentialID)
		require.True(t, created.ExpiresAt.Equal(util.Millis(expires)))
		require.Zero(t, created.CreatedAt.Nanosecond()%int(time.Millisecond))
		require.Equal(t, time.UTC, created.CreatedAt.Location())
		require.WithinDuration(t, time.Now(), created.CreatedAt, time.Minute)

		byID, err := e.repo.Get(ctx, tx, auth.SessionByID{ID: created.ID})
		require.NoError(t, err)
		require.Equal(t, created, byID)

		byCredential, ok, err := e.repo.TryGet(ctx, tx, auth.SessionByCredentialID{CredentialID: credentialID})
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, created, byCredential)

		exists, err := e.repo.Exists(ctx, tx, auth.SessionByID{ID: created.ID})
		require.NoError(t, err)
		require.True(t, exists)
	})
}

func testMissingRow[Tx any](t *testing.T, e engine[Tx]) {
	e.within(t, func(ctx context.Context, tx Tx) {
		_, err := e.repo.Get(ctx, tx, auth.SessionByID{ID: uuid.New()})
		require.ErrorIs(t, err, storage.ErrNotFound)

		_, ok, err := e.repo.TryGet(ctx, tx, auth.SessionByCredentialID{CredentialID: uuid.New()})
		require.NoError(t, err)
		require.False(t, ok)

		exists, err := e.repo.Exists(ctx, tx, auth.SessionByCredentialID{CredentialID: uuid.New()})
		require.NoError(t, err)
		require.False(t, exists)

		_, err = e.repo.Delete(ctx, tx, auth.SessionByID{ID: uuid.New()})
		require.ErrorIs(t, err, storage.ErrNotFound)

		_, err = e.repo.Delete(ctx, tx, auth.SessionByCredentialID{CredentialID: uuid.New()})
		require.ErrorIs(t, err, storage.ErrNotFound)

		all, err := e.repo.GetAll(ctx, tx, auth.SessionFilter{CredentialID: uuid.New()})
		require.NoError(t, err)
		require.Empty(t, all)
	})
}

// Sessions inserted in one transaction usually share a creation timestamp, so
// this pins the id tie-break on every read path.
func testNewestSessionWins[Tx any](t *testing.T, e engine[Tx]) {
	e.within(t, func(ctx context.Context, tx Tx) {
		credentialID := e.seedCredential(ctx, t, tx)
		for i := 0; i < 4; i++ {
			_, err := e.repo.Insert(ctx, tx, auth.CreateSession{ExpiresAt: time.Now().Add(time.Hour), CredentialID: credentialID})
			require.NoError(t, err)
		}

		all, err := e.repo.GetAll(ctx, tx, auth.SessionFilter{CredentialID: credentialID})
		require.NoError(t, err)
		require.Len(t, all, 4)
		require.True(t, sort.SliceIsSorted(all, func(i, j int) bool {
			if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].CreatedAt.Before(all[j].CreatedAt)
			}
			return all[i].ID.String() < all[j].ID.String()
		}))
		require.Equal(t, all[len(all)-1], latest(all))

		newest, err := e.repo.Get(ctx, tx, auth.SessionByCredentialID{CredentialID: credentialID})
		require.NoError(t, err)
		require.Equal(t, latest(all), newest)
	})
}

func testDeleteByCredential[Tx any](t *testing.T, e engine[Tx]) {
	e.within(t, func(ctx context.Context, tx Tx) {
		credentialID := e.seedCredential(ctx, t, tx)
		other := e.seedCredential(ctx, t, tx)
		for i := 0; i < 3; i++ {
			_, err := e.repo.Insert(ctx, tx, auth.CreateSession{ExpiresAt: time.Now().Add(time.Hour), CredentialID: credentialID})
			require.NoError(t, err)
		}
		untouched, err := e.repo.Insert(ctx, tx, auth.CreateSession{ExpiresAt: time.Now().Add(time.Hour), CredentialID: other})
		require.NoError(t, err)

		newest, err := e.repo.Get(ctx, tx, auth.SessionByCredentialID{CredentialID: credentialID})
		require.NoError(t, err)

		deleted, err := e.repo.Delete(ctx, tx, auth.SessionByCredentialID{CredentialID: credentialID})
		require.NoError(t, err)
		require.False(t, deleted.Active)
		require.Equal(t, newest.ID, deleted.ID)

		all, err := e.repo.GetAll(ctx, tx, auth.SessionFilter{CredentialID: credentialID})
		require.NoError(t, err)
		require.Len(t, all, 3)
		for _, s := range all {
			require.False(t, s.Active)
		}

		kept, err := e.repo.Get(ctx, tx, auth.SessionByID{ID: untouched.ID})
		require.NoError(t, err)
		require.True(t, kept.Active)

		single, err := e.repo.Delete(ctx, tx, auth.SessionByID{ID: untouched.ID})
		require.NoError(t, err)
		require.Equal(t, untouched.ID, single.ID)
		require.False(t, single.Active)
	})
}

func testUnknownCredential[Tx any](t *testing.T, e engine[Tx]) {
	e.within(t, func(ctx context.Context, tx Tx) {
		_, err := e.repo.Insert(ctx, tx, auth.CreateSession{ExpiresAt: time.Now(), CredentialID: uuid.New()})
		require.ErrorIs(t, err, storage.ErrQueryFailed)
	})
}

type unknownKey struct{ auth.SessionByID }

func testUnsupportedKey[Tx any](t *testing.T, e engine[Tx]) {
	e.within(t, func(ctx context.Context, tx Tx) {
		_, err := e.repo.Get(ctx, tx, unknownKey{})
		require.ErrorIs(t, err, storage.ErrNotImplemented)

		_, err = e.repo.Delete(ctx, tx, unknownKey{})
		require.ErrorIs(t, err, storage.ErrNotImplemented)
	})
}
