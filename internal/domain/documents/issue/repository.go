package issue

import (
	"context"

	"rollstock/internal/core/id"
	"rollstock/internal/domain"
)

// Repository defines storage operations for issue records.
type Repository interface {
	// Create stores the record with its lines
	Create(ctx context.Context, rec *IssueRecord) error

	// Get retrieves a record with lines.
	// Returns apperror NOT_FOUND if absent.
	Get(ctx context.Context, recID id.ID) (*IssueRecord, error)

	// List retrieves records with filtering, newest first
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*IssueRecord], error)
}
