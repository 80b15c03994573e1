package material

import (
	"context"

	"rollstock/internal/core/id"
	"rollstock/internal/domain"
)

// Repository defines storage operations for the material catalog.
type Repository interface {
	// Create stores a new material
	Create(ctx context.Context, m *Material) error

	// Update stores changed fields of an existing material
	Update(ctx context.Context, m *Material) error

	// Get retrieves a material by id.
	// Returns apperror NOT_FOUND if absent.
	Get(ctx context.Context, materialID id.ID) (*Material, error)

	// GetByCode retrieves a material by its unique code.
	// Returns apperror NOT_FOUND if absent.
	GetByCode(ctx context.Context, code string) (*Material, error)

	// List retrieves materials with filtering
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Material], error)
}
