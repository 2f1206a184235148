package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/yanqian/auth-service/pkg/storage"
)

// Classify maps a database/sql or modernc error onto the storage taxonomy.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if storage.IsStorage(err) {
		return err
	}

	var sqliteErr *msqlite.Error
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return storage.New(storage.KindNotFound, "", err)
	case errors.As(err, &sqliteErr):
		return classifyEngineError(sqliteErr)
	case errors.Is(err, sql.ErrConnDone):
		return storage.New(storage.KindConnectionFailed, "", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return storage.New(storage.KindCommunicationError, err.Error(), err)
	case strings.HasPrefix(err.Error(), "sql: Scan error"):
		return storage.New(storage.KindDatabaseInconsistency, err.Error(), err)
	case strings.Contains(err.Error(), "database is closed"):
		return storage.New(storage.KindConnectionNotAvailable, "", err)
	default:
		return storage.New(storage.KindUnknown, err.Error(), err)
	}
}

func classifyEngineError(e *msqlite.Error) error {
	msg := e.Error()
	switch e.Code() & 0xff {
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
		return storage.New(storage.KindConnectionNotAvailable, msg, e)
	case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_PERM, sqlite3.SQLITE_AUTH:
		return storage.New(storage.KindConnectionFailed, msg, e)
	case sqlite3.SQLITE_IOERR, sqlite3.SQLITE_FULL:
		return storage.New(storage.KindCommunicationError, msg, e)
	case sqlite3.SQLITE_CORRUPT, sqlite3.SQLITE_NOTADB, sqlite3.SQLITE_MISMATCH:
		return storage.New(storage.KindDatabaseInconsistency, msg, e)
	case sqlite3.SQLITE_PROTOCOL:
		return storage.New(storage.KindProtocolNotSupported, msg, e)
	}
	if idx := strings.Index(msg, "no such column: "); idx >= 0 {
		column := msg[idx+len("no such column: "):]
		if fields := strings.Fields(column); len(fields) > 0 {
			column = fields[0]
		}
		return storage.New(storage.KindColumnNotFound, column, e)
	}
	return storage.New(storage.KindQueryFailed, msg, e)
}
