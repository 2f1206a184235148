package credentialrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/yanqian/auth-service/internal/domain/auth"
	"github.com/yanqian/auth-service/internal/infra/postgres"
	"github.com/yanqian/auth-service/pkg/storage"
)

const pgColumns = `id, email, password, active`

// PostgresRepository persists credentials in Postgres.
type PostgresRepository struct{}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository() *PostgresRepository {
	return &PostgresRepository{}
}

// Insert stores a new credential; id and active come from column defaults.
func (r *PostgresRepository) Insert(ctx context.Context, tx pgx.Tx, in auth.CreateCredential) (auth.Credential, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO credentials (email, password)
		VALUES ($1, $2)
		RETURNING `+pgColumns, in.Email, in.Password)
	cred, err := scanPostgres(row)
	if err != nil {
		return auth.Credential{}, postgres.Classify(err)
	}
	return cred, nil
}

// Get fetches one credential or fails with NotFound.
func (r *PostgresRepository) Get(ctx context.Context, tx pgx.Tx, key auth.CredentialKey) (auth.Credential, error) {
	cred, ok, err := r.TryGet(ctx, tx, key)
	if err != nil {
		return auth.Credential{}, err
	}
	if !ok {
		return auth.Credential{}, storage.NotFound(entity)
	}
	return cred, nil
}

// TryGet fetches one credential if it exists.
func (r *PostgresRepository) TryGet(ctx context.Context, tx pgx.Tx, key auth.CredentialKey) (auth.Credential, bool, error) {
	column, arg, err := lookup(key)
	if err != nil {
		return auth.Credential{}, false, err
	}
	row := tx.QueryRow(ctx, `
		SELECT `+pgColumns+`
		FROM credentials
		WHERE `+column+` = $1
		LIMIT 1
	`, arg)
	cred, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Credential{}, false, nil
	}
	if err != nil {
		return auth.Credential{}, false, postgres.Classify(err)
	}
	return cred, true, nil
}

// Exists reports whether a credential matches key.
func (r *PostgresRepository) Exists(ctx context.Context, tx pgx.Tx, key auth.CredentialKey) (bool, error) {
	_, ok, err := r.TryGet(ctx, tx, key)
	return ok, err
}

// Update replaces password and active.
func (r *PostgresRepository) Update(ctx context.Context, tx pgx.Tx, key auth.CredentialKey, in auth.UpdateCredential) (auth.Credential, error) {
	column, arg, err := lookup(key)
	if err != nil {
		return auth.Credential{}, err
	}
	row := tx.QueryRow(ctx, `
		UPDATE credentials
		SET password = $1, active = $2
		WHERE `+column+` = $3
		RETURNING `+pgColumns, in.Password, in.Active, arg)
	return r.oneUpdated(row)
}

// Delete deactivates the credential; the row is retained.
func (r *PostgresRepository) Delete(ctx context.Context, tx pgx.Tx, key auth.CredentialKey) (auth.Credential, error) {
	column, arg, err := lookup(key)
	if err != nil {
		return auth.Credential{}, err
	}
	row := tx.QueryRow(ctx, `
		UPDATE credentials
		SET active = FALSE
		WHERE `+column+` = $1
		RETURNING `+pgColumns, arg)
	return r.oneUpdated(row)
}

// GetAll lists credentials by activity, ordered by email.
func (r *PostgresRepository) GetAll(ctx context.Context, tx pgx.Tx, filter auth.CredentialFilter) ([]auth.Credential, error) {
	rows, err := tx.Query(ctx, `
		SELECT `+pgColumns+`
		FROM credentials
		WHERE active = $1
		ORDER BY email COLLATE "C"
	`, filter.Active)
	if err != nil {
		return nil, postgres.Classify(err)
	}
	defer rows.Close()
	var out []auth.Credential
	for rows.Next() {
		cred, err := scanPostgres(rows)
		if err != nil {
			return nil, postgres.Classify(err)
		}
		out = append(out, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.Classify(err)
	}
	return out, nil
}

func (r *PostgresRepository) oneUpdated(row pgx.Row) (auth.Credential, error) {
	cred, err := scanPostgres(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Credential{}, storage.NotFound(entity)
	}
	if err != nil {
		return auth.Credential{}, postgres.Classify(err)
	}
	return cred, nil
}

func scanPostgres(row pgx.Row) (auth.Credential, error) {
	var cred auth.Credential
	if err := row.Scan(&cred.ID, &cred.Email, &cred.Password, &cred.Active); err != nil {
		return auth.Credential{}, err
	}
	return cred, nil
}

var _ auth.CredentialRepository[pgx.Tx] = (*PostgresRepository)(nil)
