package postgres

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yanqian/auth-service/pkg/storage"
)

// Classify maps a pgx error onto the storage taxonomy. Already classified errors pass through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if storage.IsStorage(err) {
		return err
	}

	var (
		pgErr      *pgconn.PgError
		connectErr *pgconn.ConnectError
		parseErr   *pgconn.ParseConfigError
		netErr     net.Error
	)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return storage.New(storage.KindNotFound, "", err)
	case errors.As(err, &pgErr):
		return classifyServerError(pgErr)
	case errors.As(err, &connectErr), errors.As(err, &parseErr):
		return storage.New(storage.KindConnectionFailed, "", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return storage.New(storage.KindCommunicationError, err.Error(), err)
	case pgconn.Timeout(err), errors.As(err, &netErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return storage.New(storage.KindCommunicationError, "", err)
	case strings.Contains(err.Error(), "closed pool"):
		return storage.New(storage.KindConnectionNotAvailable, "", err)
	default:
		return storage.New(storage.KindUnknown, err.Error(), err)
	}
}

func classifyServerError(pgErr *pgconn.PgError) error {
	switch {
	case pgErr.Code == "42703":
		column := pgErr.ColumnName
		if column == "" {
			column = pgErr.Message
		}
		return storage.New(storage.KindColumnNotFound, column, pgErr)
	case pgErr.Code == "08P01":
		return storage.New(storage.KindProtocolNotSupported, pgErr.Message, pgErr)
	case strings.HasPrefix(pgErr.Code, "08"):
		return storage.New(storage.KindCommunicationError, pgErr.Message, pgErr)
	case pgErr.Code == "53300":
		return storage.New(storage.KindConnectionNotAvailable, pgErr.Message, pgErr)
	case pgErr.Code == "22P02", pgErr.Code == "22007", pgErr.Code == "22008":
		return storage.New(storage.KindDatabaseInconsistency, pgErr.Message, pgErr)
	default:
		return storage.New(storage.KindQueryFailed, pgErr.Message, pgErr)
	}
}
