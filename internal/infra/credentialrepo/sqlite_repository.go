package credentialrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/yanqian/auth-service/internal/domain/auth"
	"github.com/yanqian/auth-service/internal/infra/sqlite"
	"github.com/yanqian/auth-service/pkg/storage"
)

const sqliteColumns = `id, email, password, active`

// SQLiteRepository persists credentials in the embedded engine. Ids are stored
// as canonical UUID text and active as 0/1.
type SQLiteRepository struct{}

// NewSQLiteRepository creates a new repository.
func NewSQLiteRepository() *SQLiteRepository {
	return &SQLiteRepository{}
}

// Insert stores a new credential with a freshly generated id.
func (r *SQLiteRepository) Insert(ctx context.Context, tx *sql.Tx, in auth.CreateCredential) (auth.Credential, error) {
	row := tx.QueryRowContext(ctx, `
		INSERT INTO credentials (id, email, password)
		VALUES (?, ?, ?)
		RETURNING `+sqliteColumns, uuid.New().String(), in.Email, in.Password)
	cred, err := scanSQLite(row)
	if err != nil {
		return auth.Credential{}, sqlite.Classify(err)
	}
	return cred, nil
}

// Get fetches one credential or fails with NotFound.
func (r *SQLiteRepository) Get(ctx context.Context, tx *sql.Tx, key auth.CredentialKey) (auth.Credential, error) {
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
func (r *SQLiteRepository) TryGet(ctx context.Context, tx *sql.Tx, key auth.CredentialKey) (auth.Credential, bool, error) {
	column, arg, err := lookup(key)
	if err != nil {
		return auth.Credential{}, false, err
	}
	row := tx.QueryRowContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM credentials
		WHERE `+column+` = ?
		LIMIT 1
	`, sqliteArg(arg))
	cred, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Credential{}, false, nil
	}
	if err != nil {
		return auth.Credential{}, false, sqlite.Classify(err)
	}
	return cred, true, nil
}

// Exists reports whether a credential matches key.
func (r *SQLiteRepository) Exists(ctx context.Context, tx *sql.Tx, key auth.CredentialKey) (bool, error) {
	_, ok, err := r.TryGet(ctx, tx, key)
	return ok, err
}

// Update replaces password and active.
func (r *SQLiteRepository) Update(ctx context.Context, tx *sql.Tx, key auth.CredentialKey, in auth.UpdateCredential) (auth.Credential, error) {
	column, arg, err := lookup(key)
	if err != nil {
		return auth.Credential{}, err
	}
	row := tx.QueryRowContext(ctx, `
		UPDATE credentials
		SET password = ?, active = ?
		WHERE `+column+` = ?
		RETURNING `+sqliteColumns, in.Password, in.Active, sqliteArg(arg))
	return r.oneUpdated(row)
}

// Delete deactivates the credential; the row is retained.
func (r *SQLiteRepository) Delete(ctx context.Context, tx *sql.Tx, key auth.CredentialKey) (auth.Credential, error) {
	column, arg, err := lookup(key)
	if err != nil {
		return auth.Credential{}, err
	}
	row := tx.QueryRowContext(ctx, `
		UPDATE credentials
		SET active = 0
		WHERE `+column+` = ?
		RETURNING `+sqliteColumns, sqliteArg(arg))
	return r.oneUpdated(row)
}

// GetAll lists credentials by activity, ordered by email.
func (r *SQLiteRepository) GetAll(ctx context.Context, tx *sql.Tx, filter auth.CredentialFilter) ([]auth.Credential, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM credentials
		WHERE active = ?
		ORDER BY email
	`, filter.Active)
	if err != nil {
		return nil, sqlite.Classify(err)
	}
	defer rows.Close()
	var out []auth.Credential
	for rows.Next() {
		cred, err := scanSQLite(rows)
		if err != nil {
			return nil, sqlite.Classify(err)
		}
		out = append(out, cred)
	}
	if err := rows.Err(); err != nil {
		return nil, sqlite.Classify(err)
	}
	return out, nil
}

func (r *SQLiteRepository) oneUpdated(row *sql.Row) (auth.Credential, error) {
	cred, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Credential{}, storage.NotFound(entity)
	}
	if err != nil {
		return auth.Credential{}, sqlite.Classify(err)
	}
	return cred, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (auth.Credential, error) {
	var (
		cred   auth.Credential
		id     string
		active int64
	)
	if err := row.Scan(&id, &cred.Email, &cred.Password, &active); err != nil {
		return auth.Credential{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return auth.Credential{}, storage.Inconsistent("credential id %q: %v", id, err)
	}
	switch active {
	case 0, 1:
		cred.Active = active == 1
	default:
		return auth.Credential{}, storage.Inconsistent("credential %s active flag %d", id, active)
	}
	cred.ID = parsed
	return cred, nil
}

// sqliteArg stores ids in their canonical text form.
func sqliteArg(arg any) any {
	if id, ok := arg.(uuid.UUID); ok {
		return id.String()
	}
	return arg
}

var _ auth.CredentialRepository[*sql.Tx] = (*SQLiteRepository)(nil)
