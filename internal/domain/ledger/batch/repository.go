// Package batch provides the batch store: the single source of truth for
// lot-level stock quantities and the only component allowed to apply
// quantity deltas.
package batch

import (
	"context"

	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/domain"
)

// Repository defines durable storage for batches. Implementations exist
// for PostgreSQL and for an in-memory map; the store's invariants hold
// regardless of backend because all mutation flows through the Service.
type Repository interface {
	// Create inserts a new batch
	Create(ctx context.Context, b *entity.Batch) error

	// Get retrieves a batch by ID.
	// Returns apperror NOT_FOUND if absent.
	Get(ctx context.Context, batchID id.ID) (*entity.Batch, error)

	// Save persists updated quantity fields with optimistic locking
	Save(ctx context.Context, b *entity.Batch) error

	// ListByItemCode returns batches for an item, createdAt ascending
	ListByItemCode(ctx context.Context, itemCode string, filter domain.ListFilter) ([]entity.Batch, error)

	// ListAvailable returns batches with remaining quantity > 0 for an
	// item, createdAt ascending (FIFO order)
	ListAvailable(ctx context.Context, itemCode string) ([]entity.Batch, error)

	// List returns all batches matching the filter
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[entity.Batch], error)
}

// MovementRepository stores the immutable delta journal.
type MovementRepository interface {
	// CreateMovements batch inserts journal lines
	CreateMovements(ctx context.Context, movements []entity.BatchMovement) error

	// ListByBatch returns a batch's movements, oldest first
	ListByBatch(ctx context.Context, batchID id.ID) ([]entity.BatchMovement, error)

	// ListByRecorder returns all movements recorded by a document
	ListByRecorder(ctx context.Context, recorderID id.ID) ([]entity.BatchMovement, error)
}
