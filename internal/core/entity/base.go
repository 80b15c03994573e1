// Package entity provides core domain entities shared across the ledger.
package entity

import (
	"context"
	"time"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants without storage access.
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseEntity contains common fields for all stored entities.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:      id.New(),
		Version: 1,
	}
}

// Touch increments version (for optimistic locking).
func (b *BaseEntity) Touch() {
	b.Version++
}

// Catalog is the base type for master-data entries.
type Catalog struct {
	BaseEntity

	// Code is the short unique identifier (auto-generated when empty)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// DeletionMark indicates soft-deleted entry
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewCatalog creates a catalog entry with generated ID and timestamps.
func NewCatalog(code, name string) Catalog {
	now := time.Now().UTC()
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Code:       code,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch updates the UpdatedAt timestamp and increments version.
func (c *Catalog) Touch() {
	c.UpdatedAt = time.Now().UTC()
	c.BaseEntity.Touch()
}

// Validate implements Validatable.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Document is the base type for ledger documents (receipt, issue, return,
// slitting). Documents are applied once and never edited afterwards; a
// wrong document is corrected by a reversing document.
type Document struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Number is the document number (auto-generated, unique within type+year)
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`

	// CreatedAt is when the document was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewDocument creates a new Document with generated ID and timestamps.
func NewDocument() Document {
	now := time.Now().UTC()
	return Document{
		ID:        id.New(),
		Date:      now,
		CreatedAt: now,
	}
}
