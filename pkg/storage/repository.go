package storage

import "context"

// Repository is the uniform CRUD contract every backend adapter implements for an entity.
//
// Tx is the engine's transaction handle, borrowed for the duration of one call.
// K is the entity's closed lookup key and F its bulk filter.
type Repository[Tx, E, C, K, F any] interface {
	// Insert stores a new row and returns it with store-assigned fields populated.
	Insert(ctx context.Context, tx Tx, in C) (E, error)
	// Get fails with ErrNotFound when no row matches.
	Get(ctx context.Context, tx Tx, key K) (E, error)
	// TryGet reports a missing row through the boolean, never through the error.
	TryGet(ctx context.Context, tx Tx, key K) (E, bool, error)
	// Exists is TryGet without the entity.
	Exists(ctx context.Context, tx Tx, key K) (bool, error)
	// Delete flips active to false and returns the deactivated row. Rows are never removed.
	Delete(ctx context.Context, tx Tx, key K) (E, error)
	GetAll(ctx context.Context, tx Tx, filter F) ([]E, error)
}

// Updater is implemented only by entities that have legal update semantics.
type Updater[Tx, E, U, K any] interface {
	Update(ctx context.Context, tx Tx, key K, in U) (E, error)
}
