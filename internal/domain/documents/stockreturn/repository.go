package stockreturn

import (
	"context"
	"time"

	"rollstock/internal/core/id"
	"rollstock/internal/domain"
)

// Repository defines storage operations for return records.
type Repository interface {
	// Create stores the record with its lines
	Create(ctx context.Context, rec *ReturnRecord) error

	// Get retrieves a record with lines.
	// Returns apperror NOT_FOUND if absent.
	Get(ctx context.Context, recID id.ID) (*ReturnRecord, error)

	// ListByIssue returns all returns referencing an issue, including
	// reversed ones
	ListByIssue(ctx context.Context, issueID id.ID) ([]*ReturnRecord, error)

	// MarkReversed flags a return record as reversed
	MarkReversed(ctx context.Context, recID id.ID, at time.Time) error

	// List retrieves records with filtering, newest first
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*ReturnRecord], error)
}
