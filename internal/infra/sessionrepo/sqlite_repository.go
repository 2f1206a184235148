package sessionrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/yanqian/auth-service/internal/domain/auth"
	"github.com/yanqian/auth-service/internal/infra/sqlite"
	"github.com/yanqian/auth-service/pkg/storage"
)

const sqliteColumns = `id, created_at, expires_at, credential_id, active`

// SQLiteRepository persists sessions in the embedded engine. Timestamps are
// stored as Unix milliseconds.
type SQLiteRepository struct{}

// NewSQLiteRepository creates a new repository.
func NewSQLiteRepository() *SQLiteRepository {
	return &SQLiteRepository{}
}

// Insert stores a new session with a freshly generated id.
func (r *SQLiteRepository) Insert(ctx context.Context, tx *sql.Tx, in auth.CreateSession) (auth.Session, error) {
	row := tx.QueryRowContext(ctx, `
		INSERT INTO sessions (id, expires_at, credential_id)
		VALUES (?, ?, ?)
		RETURNING `+sqliteColumns, uuid.New().String(), sqlite.ToMillis(in.ExpiresAt), in.CredentialID.String())
	session, err := scanSQLite(row)
	if err != nil {
		return auth.Session{}, sqlite.Classify(err)
	}
	return session, nil
}

// Get fetches one session or fails with NotFound.
func (r *SQLiteRepository) Get(ctx context.Context, tx *sql.Tx, key auth.SessionKey) (auth.Session, error) {
	session, ok, err := r.TryGet(ctx, tx, key)
	if err != nil {
		return auth.Session{}, err
	}
	if !ok {
		return auth.Session{}, storage.NotFound(entity)
	}
	return session, nil
}

// TryGet fetches one session if it exists. By credential it yields the newest
// session; sessions created in the same millisecond are ordered by id.
func (r *SQLiteRepository) TryGet(ctx context.Context, tx *sql.Tx, key auth.SessionKey) (auth.Session, bool, error) {
	column, id, err := lookup(key)
	if err != nil {
		return auth.Session{}, false, err
	}
	row := tx.QueryRowContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM sessions
		WHERE `+column+` = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, id.String())
	session, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, false, nil
	}
	if err != nil {
		return auth.Session{}, false, sqlite.Classify(err)
	}
	return session, true, nil
}

// Exists reports whether a session matches key.
func (r *SQLiteRepository) Exists(ctx context.Context, tx *sql.Tx, key auth.SessionKey) (bool, error) {
	_, ok, err := r.TryGet(ctx, tx, key)
	return ok, err
}

// Delete deactivates every session matching key and returns the newest one.
func (r *SQLiteRepository) Delete(ctx context.Context, tx *sql.Tx, key auth.SessionKey) (auth.Session, error) {
	column, id, err := lookup(key)
	if err != nil {
		return auth.Session{}, err
	}
	rows, err := tx.QueryContext(ctx, `
		UPDATE sessions
		SET active = 0
		WHERE `+column+` = ?
		RETURNING `+sqliteColumns, id.String())
	if err != nil {
		return auth.Session{}, sqlite.Classify(err)
	}
	deactivated, err := collectSQLite(rows)
	if err != nil {
		return auth.Session{}, err
	}
	if len(deactivated) == 0 {
		return auth.Session{}, storage.NotFound(entity)
	}
	return latest(deactivated), nil
}

// GetAll lists every session of a credential, oldest first.
func (r *SQLiteRepository) GetAll(ctx context.Context, tx *sql.Tx, filter auth.SessionFilter) ([]auth.Session, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM sessions
		WHERE credential_id = ?
		ORDER BY created_at, id
	`, filter.CredentialID.String())
	if err != nil {
		return nil, sqlite.Classify(err)
	}
	return collectSQLite(rows)
}

func collectSQLite(rows *sql.Rows) ([]auth.Session, error) {
	defer rows.Close()
	var out []auth.Session
	for rows.Next() {
		session, err := scanSQLite(rows)
		if err != nil {
			return nil, sqlite.Classify(err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.Classify(err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (auth.Session, error) {
	var (
		session              auth.Session
		id, credentialID     string
		createdMs, expiresMs int64
		active               int64
	)
	if err := row.Scan(&id, &createdMs, &expiresMs, &credentialID, &active); err != nil {
		return auth.Session{}, err
	}
	var err error
	if session.ID, err = uuid.Parse(id); err != nil {
		return auth.Session{}, storage.Inconsistent("session id %q: %v", id, err)
	}
	if session.CredentialID, err = uuid.Parse(credentialID); err != nil {
		return auth.Session{}, storage.Inconsistent("session %s credential id %q: %v", id, credentialID, err)
	}
	var ok bool
	if session.CreatedAt, ok = sqlite.FromMillis(createdMs); !ok {
		return auth.Session{}, storage.Inconsistent("session %s created_at %d out of range", id, createdMs)
	}
	if session.ExpiresAt, ok = sqlite.FromMillis(expiresMs); !ok {
		return auth.Session{}, storage.Inconsistent("session %s expires_at %d out of range", id, expiresMs)
	}
	switch active {
	case 0, 1:
		session.Active = active == 1
	default:
		return auth.Session{}, storage.Inconsistent("session %s active flag %d", id, active)
	}
	return session, nil
}

var _ auth.SessionRepository[*sql.Tx] = (*SQLiteRepository)(nil)
