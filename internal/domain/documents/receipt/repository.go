package receipt

import (
	"context"

	"rollstock/internal/core/id"
	"rollstock/internal/domain"
)

// Repository defines storage operations for goods receipt documents.
type Repository interface {
	// Create stores the document with its lines
	Create(ctx context.Context, doc *GoodsReceipt) error

	// Get retrieves a document with lines.
	// Returns apperror NOT_FOUND if absent.
	Get(ctx context.Context, docID id.ID) (*GoodsReceipt, error)

	// List retrieves documents with filtering, newest first
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*GoodsReceipt], error)
}
