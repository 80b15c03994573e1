package entity

import (
	"time"

	"rollstock/internal/core/id"
	"rollstock/internal/core/types"
)

// RecordType defines movement direction in the batch journal.
type RecordType string

const (
	// RecordTypeReceipt increases the batch balance
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases the batch balance
	RecordTypeExpense RecordType = "expense"
)

// BatchMovement is one journaled delta against one batch. Movements are
// immutable; replaying a batch's movements against its received quantity
// reproduces its remaining quantity exactly.
type BatchMovement struct {
	// LineID is the unique identifier for this movement line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// BatchID is the batch the delta was applied to
	BatchID id.ID `db:"batch_id" json:"batchId"`

	// RecorderID is the document that caused this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type ("GoodsReceipt", "Issue",
	// "Return", "Slitting")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecordType: receipt or expense
	RecordType RecordType `db:"record_type" json:"recordType"`

	// Quantity is the unsigned magnitude of the delta
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewBatchMovement creates a movement for a signed delta: positive deltas
// journal as receipts, negative as expenses.
func NewBatchMovement(batchID, recorderID id.ID, recorderType string, delta types.Quantity) BatchMovement {
	recordType := RecordTypeReceipt
	if delta.IsNegative() {
		recordType = RecordTypeExpense
	}
	return BatchMovement{
		LineID:       id.New(),
		BatchID:      batchID,
		RecorderID:   recorderID,
		RecorderType: recorderType,
		RecordType:   recordType,
		Quantity:     delta.Abs(),
		CreatedAt:    time.Now().UTC(),
	}
}

// SignedQuantity returns quantity with sign based on record type.
func (m *BatchMovement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}
