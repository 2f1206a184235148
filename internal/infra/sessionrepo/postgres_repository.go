package sessionrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yanqian/auth-service/internal/domain/auth"
	"github.com/yanqian/auth-service/internal/infra/postgres"
	"github.com/yanqian/auth-service/pkg/storage"
	"github.com/yanqian/auth-service/pkg/util"
)

const pgColumns = `id, created_at, expires_at, credential_id, active`

// PostgresRepository persists sessions in Postgres.
type PostgresRepository struct{}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

// Insert stores a new session; id, created_at and active come from column defaults.
func (r *PostgresRepository) Insert(ctx context.Context, tx pgx.Tx, in auth.CreateSession) (auth.Session, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO sessions (expires_at, credential_id)
		VALUES ($1, $2)
		RETURNING `+pgColumns, util.Millis(in.ExpiresAt), in.CredentialID)
	session, err := scanPostgres(row)
	if err != nil {
		return auth.Session{}, postgres.Classify(err)
	}
	return session, nil
}

// Get fetches one session or fails with NotFound.
func (r *PostgresRepository) Get(ctx context.Context, tx pgx.Tx, key auth.SessionKey) (auth.Session, error) {
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
func (r *PostgresRepository) TryGet(ctx context.Context, tx pgx.Tx, key auth.SessionKey) (auth.Session, bool, error) {
	column, id, err := lookup(key)
	if err != nil {
		return auth.Session{}, false, err
	}
	row := tx.QueryRow(ctx, `
		SELECT `+pgColumns+`
		FROM sessions
		WHERE `+column+` = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, id)
	session, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Session{}, false, nil
	}
	if err != nil {
		return auth.Session{}, false, postgres.Classify(err)
	}
	return session, true, nil
}

// Exists reports whether a session matches key.
func (r *PostgresRepository) Exists(ctx context.Context, tx pgx.Tx, key auth.SessionKey) (bool, error) {
	_, ok, err := r.TryGet(ctx, tx, key)
	return ok, err
}

// Delete deactivates every session matching key and returns the newest one.
func (r *PostgresRepository) Delete(ctx context.Context, tx pgx.Tx, key auth.SessionKey) (auth.Session, error) {
	column, id, err := lookup(key)
	if err != nil {
		return auth.Session{}, err
	}
	rows, err := tx.Query(ctx, `
		UPDATE sessions
		SET active = FALSE
		WHERE `+column+` = $1
		RETURNING `+pgColumns, id)
	if err != nil {
		return auth.Session{}, postgres.Classify(err)
	}
	deactivated, err := collectPostgres(rows)
	if err != nil {
		return auth.Session{}, err
	}
	if len(deactivated) == 0 {
		return auth.Session{}, storage.NotFound(entity)
	}
	return latest(deactivated), nil
}

// GetAll lists every session of a credential, oldest first.
func (r *PostgresRepository) GetAll(ctx context.Context, tx pgx.Tx, filter auth.SessionFilter) ([]auth.Session, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+pgColumns+`
		FROM sessions
		WHERE credential_id = $1
		ORDER BY created_at, id
	`, filter.CredentialID)
	if err != nil {
		return nil, postgres.Classify(err)
	}
	return collectPostgres(rows)
}

func collectPostgres(rows pgx.Rows) ([]auth.Session, error) {
	defer rows.Close()
	var out []auth.Session
	for rows.Next() {
		session, err := scanPostgres(rows)
		if err != nil {
			return nil, postgres.Classify(err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Classify(err)
	}
	return out, nil
}

func scanPostgres(row pgx.Row) (auth.Session, error) {
	var (
		session            auth.Session
		created, expiresAt time.Time
	)
	if err := row.Scan(&session.ID, &created, &expiresAt, &session.CredentialID, &session.Active); err != nil {
		return auth.Session{}, err
	}
	session.CreatedAt = util.Millis(created)
	session.ExpiresAt = util.Millis(expiresAt)
	return session, nil
}

var _ auth.SessionRepository[pgx.Tx] = (*PostgresRepository)(nil)
