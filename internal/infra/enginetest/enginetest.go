// Package enginetest opens storage engines for adapter and integration tests.
//
// SQLite is always available. Postgres runs only when AUTH_DATABASE_URL points
// at a server the tests may write to; otherwise the calling test is skipped.
package enginetest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/auth-service/internal/infra/postgres"
	"github.com/yanqian/auth-service/internal/infra/sqlite"
)

// PostgresURLEnv names the variable that enables the Postgres runs.
const PostgresURLEnv = "AUTH_DATABASE_URL"

// SQLite opens a private in-memory database with the schema applied.
func SQLite(t testing.TB) (*sql.DB, *sqlite.Runner) {
	t.Helper()
	return openSQLite(t, sqlite.MemoryDSN)
}

// SQLiteFile opens a database file under t.TempDir, so concurrent
// transactions use separate connections.
func SQLiteFile(t testing.TB) (*sql.DB, *sqlite.Runner) {
	t.Helper()
	return openSQLite(t, filepath.Join(t.TempDir(), "auth.db"))
}

func openSQLite(t testing.TB, dsn string) (*sql.DB, *sqlite.Runner) {
	db, err := sqlite.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, sqlite.NewRunner(db, 10*time.Second)
}

// Postgres connects to the server named by AUTH_DATABASE_URL and migrates it.
func Postgres(t testing.TB) (*pgxpool.Pool, *postgres.Runner) {
	t.Helper()
	url := strings.TrimSpace(os.Getenv(PostgresURLEnv))
	if url == "" {
		t.Skipf("%s not set", PostgresURLEnv)
	}
	pool, err := postgres.Connect(context.Background(), postgres.Options{URL: url, MaxConns: 16, Migrate: true})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool, postgres.NewRunner(pool, 10*time.Second)
}
