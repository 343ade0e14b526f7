// Package tx provides transaction management abstractions.
// This package defines interfaces that decouple domain logic from specific
// database implementations, following the Dependency Inversion Principle.
package tx

import (
	"context"
)

// Manager defines the contract for transaction management.
// Implementations handle BEGIN, COMMIT, ROLLBACK, and nested transaction support.
//
// Domain services depend on this interface, not concrete implementations.
// The actual implementation lives in infrastructure/storage/postgres.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Retryable extends Manager with optimistic-concurrency support.
//
// Counter increments and job moves never take explicit locks: they run at
// serializable isolation and rely on the store's conflict detection. A
// transaction that committed against a stale read is aborted and re-invoked
// with backoff a bounded number of times before the contention error is
// surfaced to the caller.
type Retryable interface {
	Manager

	// RunSerializableWithRetry executes fn in a serializable transaction,
	// retrying on conflict. fn must be safe to re-invoke from scratch.
	RunSerializableWithRetry(ctx context.Context, fn func(ctx context.Context) error) error
}
