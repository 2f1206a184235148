package storage

import (
	"errors"
	"fmt"
)

// Kind is the closed set of storage failure categories surfaced above the adapters.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindCommunicationError
	KindConnectionFailed
	KindConnectionNotAvailable
	KindQueryFailed
	KindColumnNotFound
	KindProtocolNotSupported
	KindNotImplemented
	KindDatabaseInconsistency
	KindMigrationFailed
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "Not Found"
	case KindCommunicationError:
		return "Communication Error"
	case KindConnectionFailed:
		return "Connection Failed"
	case KindConnectionNotAvailable:
		return "Connection Not Available"
	case KindQueryFailed:
		return "Query Failed"
	case KindColumnNotFound:
		return "Column Not Found"
	case KindProtocolNotSupported:
		return "Protocol Not Supported"
	case KindNotImplemented:
		return "Not Implemented"
	case KindDatabaseInconsistency:
		return "Database Inconsistency"
	case KindMigrationFailed:
		return "Migration Failed"
	default:
		return "Unknown Error"
	}
}

// Error is the driver-independent storage error. Detail carries the kind payload
// (query failure text, column name, ...) and Err the classified driver error.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrCommunication          = &Error{Kind: KindCommunicationError}
	ErrConnectionFailed       = &Error{Kind: KindConnectionFailed}
	ErrConnectionNotAvailable = &Error{Kind: KindConnectionNotAvailable}
	ErrQueryFailed            = &Error{Kind: KindQueryFailed}
	ErrColumnNotFound         = &Error{Kind: KindColumnNotFound}
	ErrProtocolNotSupported   = &Error{Kind: KindProtocolNotSupported}
	ErrNotImplemented         = &Error{Kind: KindNotImplemented}
	ErrDatabaseInconsistency  = &Error{Kind: KindDatabaseInconsistency}
	ErrMigrationFailed        = &Error{Kind: KindMigrationFailed}
	ErrUnknown                = &Error{Kind: KindUnknown}
)

// New builds an *Error of the given kind.
func New(kind Kind, detail string, err error) error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// NotFound reports a lookup that matched no row.
func NotFound(entity string) error {
	return &Error{Kind: KindNotFound, Detail: entity}
}

// Inconsistent reports a stored value that could not be decoded into the entity shape.
func Inconsistent(format string, args ...any) error {
	return &Error{Kind: KindDatabaseInconsistency, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the storage kind carried by err. Errors that never passed an
// adapter classifier report KindUnknown.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// IsStorage reports whether err originated from the storage layer.
func IsStorage(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
