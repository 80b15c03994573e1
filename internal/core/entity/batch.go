package entity

import (
	"time"

	"rollstock/internal/core/id"
	"rollstock/internal/core/types"
)

// BatchStatus is derived from the quantity fields, never stored.
type BatchStatus string

const (
	BatchStatusAvailable       BatchStatus = "available"
	BatchStatusPartiallyIssued BatchStatus = "partially_issued"
	BatchStatusConsumed        BatchStatus = "consumed"
)

// Batch is the unit of inventory: one lot-tracked quantity of one item.
// Created by a goods receipt or a slitting transformation, drawn down by
// issues, credited back by returns.
//
// RemainingQuantity is the single authoritative balance field. It changes
// only through the batch store's delta entry point, which enforces
// 0 <= remaining <= received.
type Batch struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Code is the traceable batch code, e.g. "GRN-2026-00012-1-3"
	// ({sourceDocument}-{lineIndex}-{unitIndex}).
	Code string `db:"code" json:"code"`

	// ItemCode references the material catalog. The ledger treats it as
	// an opaque grouping key and does not validate its existence.
	ItemCode string `db:"item_code" json:"itemCode"`

	// UOM is the unit of measure, immutable once set.
	UOM string `db:"uom" json:"uom"`

	// SourceDocumentID is the receipt or transformation that created
	// this batch.
	SourceDocumentID string `db:"source_document_id" json:"sourceDocumentId"`

	// ParentBatchID links derived batches to their slitting input.
	ParentBatchID *id.ID `db:"parent_batch_id" json:"parentBatchId,omitempty"`

	// ReceivedQuantity is the quantity at creation, immutable.
	ReceivedQuantity types.Quantity `db:"received_quantity" json:"receivedQuantity"`

	// RemainingQuantity is the current balance.
	RemainingQuantity types.Quantity `db:"remaining_quantity" json:"remainingQuantity"`

	// Attributes is the descriptive physical snapshot (width, GSM, ...).
	Attributes Attributes `db:"attributes" json:"attributes,omitempty"`

	// Version for optimistic locking in the storage backend.
	Version int `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Touch bumps the version and update timestamp after a quantity change.
func (b *Batch) Touch() {
	b.Version++
	b.UpdatedAt = time.Now().UTC()
}

// Status derives the batch lifecycle state from its quantities.
func (b *Batch) Status() BatchStatus {
	switch {
	case b.RemainingQuantity.IsZero():
		return BatchStatusConsumed
	case b.RemainingQuantity == b.ReceivedQuantity:
		return BatchStatusAvailable
	default:
		return BatchStatusPartiallyIssued
	}
}

// IssuedQuantity returns the net quantity drawn from this batch.
func (b *Batch) IssuedQuantity() types.Quantity {
	return b.ReceivedQuantity - b.RemainingQuantity
}
