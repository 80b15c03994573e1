// Package tx provides transaction management abstractions.
// Domain services depend on this interface, not on a concrete database;
// the in-memory backend satisfies it with a pass-through implementation.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT, ROLLBACK, and nested reuse.
type Manager interface {
	// RunInTransaction executes fn within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Passthrough is a Manager for backends without transactional storage.
// The batch store's validate-before-write ordering keeps such backends
// consistent without rollback support.
type Passthrough struct{}

// RunInTransaction executes fn directly.
func (Passthrough) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
