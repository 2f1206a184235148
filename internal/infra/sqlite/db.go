package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yanqian/auth-service/internal/infra/migrations"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Open opens the embedded database at dsn and applies the bundled schema.
//
// Write transactions take the database lock up front (_txlock=immediate), so two
// concurrent sign-ups for one email serialize instead of failing with SQLITE_BUSY
// on upgrade.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, Classify(fmt.Errorf("sqlite dsn is required"))
	}
	inMemory := strings.HasPrefix(dsn, MemoryDSN) || strings.Contains(dsn, "mode=memory")

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, Classify(err)
	}
	if inMemory {
		// Every new connection to :memory: is a new empty database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, Classify(err)
	}
	if err := migrations.Up(ctx, db, migrations.SQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ToMillis normalizes timestamps into millisecond precision for storage.
func ToMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// FromMillis restores a stored millisecond timestamp in UTC. Values outside the
// range time.Time can represent as a calendar date are rejected.
func FromMillis(value int64) (time.Time, bool) {
	const maxMillis = 253402300799999 // 9999-12-31T23:59:59.999Z
	const minMillis = -62135596800000 // 0001-01-01T00:00:00Z
	if value > maxMillis || value < minMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(value).UTC(), true
}
