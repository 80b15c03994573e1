package slitting

import (
	"context"
	"fmt"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/core/types"
)

// DocumentType is the recorder type for slitting records.
const DocumentType = "Slitting"

// SlittingRecord documents cutting quantity from one parent batch into
// one or more child batches. The consumed quantity must equal the sum of
// output quantities plus wastage.
type SlittingRecord struct {
	entity.Document

	// InputBatchID is the parent batch the quantity was cut from.
	InputBatchID id.ID `json:"inputBatchId" db:"input_batch_id"`

	// ConsumedQuantity is the quantity debited from the parent batch.
	ConsumedQuantity types.Quantity `json:"consumedQuantity" db:"consumed_quantity"`

	// Wastage is the quantity lost in the cut (edge trim, setup scrap).
	Wastage types.Quantity `json:"wastage" db:"wastage"`

	Lines []Line `json:"lines"`
}

// Line is one output of the cut. BatchID points at the child batch
// created for it.
type Line struct {
	LineID   id.ID          `json:"lineId" db:"line_id"`
	LineNo   int            `json:"lineNo" db:"line_no"`
	ItemCode string         `json:"itemCode" db:"item_code"`
	UOM      string         `json:"uom" db:"uom"`
	Quantity types.Quantity `json:"quantity" db:"quantity"`
	BatchID  id.ID          `json:"batchId" db:"batch_id"`

	Attributes entity.Attributes `json:"attributes,omitempty" db:"attributes"`
}

// OutputRequest describes one requested output of a cut. ItemCode and
// UOM default to the parent batch's when empty.
type OutputRequest struct {
	ItemCode   string
	UOM        string
	Quantity   types.Quantity
	Attributes entity.Attributes
}

// Request describes a full slitting operation. The cut always consumes
// the input batch's entire remaining quantity; outputs plus wastage must
// balance against it.
type Request struct {
	InputBatchID id.ID
	Wastage      types.Quantity
	Comment      string
	Outputs      []OutputRequest
}

// NewSlittingRecord creates a slitting record shell.
func NewSlittingRecord(inputBatchID id.ID) *SlittingRecord {
	return &SlittingRecord{
		Document:     entity.NewDocument(),
		InputBatchID: inputBatchID,
	}
}

// Validate checks the request shape. The conservation balance against
// the input batch's remaining quantity is checked by the service, which
// knows the batch.
func (r *Request) Validate(ctx context.Context) error {
	if id.IsNil(r.InputBatchID) {
		return apperror.NewValidation("input batch id is required")
	}
	if r.Wastage.IsNegative() {
		return apperror.NewValidation("wastage must not be negative")
	}
	if len(r.Outputs) == 0 {
		return apperror.NewValidation("at least one output is required")
	}
	for i, out := range r.Outputs {
		if !out.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("output %d: quantity must be positive", i))
		}
	}
	return nil
}

// OutputTotal sums the requested output quantities.
func (r *Request) OutputTotal() types.Quantity {
	var total types.Quantity
	for _, out := range r.Outputs {
		total += out.Quantity
	}
	return total
}

// OutputTotal sums the output line quantities.
func (r *SlittingRecord) OutputTotal() types.Quantity {
	var total types.Quantity
	for _, line := range r.Lines {
		total += line.Quantity
	}
	return total
}
