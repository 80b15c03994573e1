package slitting

import (
	"context"

	"rollstock/internal/core/id"
	"rollstock/internal/domain"
)

// Repository defines storage operations for slitting records.
type Repository interface {
	// Create stores the record with its lines
	Create(ctx context.Context, rec *SlittingRecord) error

	// Get retrieves a record with lines.
	// Returns apperror NOT_FOUND if absent.
	Get(ctx context.Context, recID id.ID) (*SlittingRecord, error)

	// ListByInputBatch returns records that consumed from a batch
	ListByInputBatch(ctx context.Context, batchID id.ID) ([]*SlittingRecord, error)

	// List retrieves records with filtering, newest first
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*SlittingRecord], error)
}
