// Package migrations carries the versioned schema for every supported engine.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"

	"github.com/yanqian/auth-service/pkg/storage"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Dialect names an engine and the migration directory written for it.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) goose() (goose.Dialect, error) {
	switch d {
	case Postgres:
		return goose.DialectPostgres, nil
	case SQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", string(d))
	}
}

// Up applies every pending migration for dialect. Applied versions are tracked
// by goose, so repeated calls are no-ops.
func Up(ctx context.Context, db *sql.DB, dialect Dialect) error {
	gooseDialect, err := dialect.goose()
	if err != nil {
		return storage.New(storage.KindMigrationFailed, err.Error(), err)
	}
	fsys, err := fs.Sub(files, string(dialect))
	if err != nil {
		return storage.New(storage.KindMigrationFailed, "load migrations", err)
	}
	var opts []goose.ProviderOption
	if dialect == Postgres {
		// Replicas starting together take turns on an advisory lock.
		locker, err := lock.NewPostgresSessionLocker()
		if err != nil {
			return storage.New(storage.KindMigrationFailed, "init migration lock", err)
		}
		opts = append(opts, goose.WithSessionLocker(locker))
	}
	provider, err := goose.NewProvider(gooseDialect, db, fsys, opts...)
	if err != nil {
		return storage.New(storage.KindMigrationFailed, "init migration provider", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return storage.New(storage.KindMigrationFailed, err.Error(), err)
	}
	return nil
}
