package storage

import "context"

// Runner executes a unit of work inside one physical transaction. The work
// commits when fn returns nil; any error aborts the transaction and is returned
// to the caller unchanged. Commit failures are classified storage errors.
type Runner[Tx any] interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc[Tx any] func(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

func (f RunnerFunc[Tx]) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return f(ctx, fn)
}

// InTx runs fn through r and hands back its value.
func InTx[Tx, T any](ctx context.Context, r Runner[Tx], fn func(ctx context.Context, tx Tx) (T, error)) (T, error) {
	var out T
	err := r.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		value, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		out = value
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
