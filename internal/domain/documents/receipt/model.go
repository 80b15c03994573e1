// Package receipt provides the GoodsReceipt document: intake of supplier
// material into lot-tracked batches.
package receipt

import (
	"context"
	"fmt"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/core/types"
)

// DocumentType is the recorder type written to the batch journal.
const DocumentType = "GoodsReceipt"

// GoodsReceipt records incoming material from a supplier. Applying it
// splits each line's bulk received quantity across the line's physical
// units (rolls) and creates one batch per unit.
type GoodsReceipt struct {
	entity.Document

	// SupplierRef is an opaque reference to the supplier (external
	// counterparty catalog).
	SupplierRef string `db:"supplier_ref" json:"supplierRef"`

	// SupplierDocNumber is the supplier's invoice/challan number.
	SupplierDocNumber string `db:"supplier_doc_number" json:"supplierDocNumber,omitempty"`

	// Lines are the received materials.
	Lines []Line `db:"-" json:"lines"`
}

// Line is one received material position.
type Line struct {
	// LineID identifies the line; LineNo is its 1-based position.
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// ItemCode references the material catalog (opaque to the ledger).
	ItemCode string `db:"item_code" json:"itemCode"`

	// UOM for the whole line and every batch created from it.
	UOM string `db:"uom" json:"uom"`

	// OrderedQuantity is informational (PO follow-up), not validated
	// against the received quantity.
	OrderedQuantity types.Quantity `db:"ordered_quantity" json:"orderedQuantity"`

	// ReceivedQuantity is the bulk quantity to split across units.
	ReceivedQuantity types.Quantity `db:"received_quantity" json:"receivedQuantity"`

	// UnitCount is the number of physical rolls delivered.
	UnitCount int `db:"unit_count" json:"unitCount"`

	// UnitRate is the supplier rate, descriptive only.
	UnitRate types.Money `db:"unit_rate" json:"unitRate"`

	// Attributes is the physical snapshot copied onto each batch
	// (width, GSM, micron, ...).
	Attributes entity.Attributes `db:"attributes" json:"attributes,omitempty"`

	// BatchIDs are the batches created from this line, in unit order.
	// Filled when the document is applied.
	BatchIDs []id.ID `db:"batch_ids" json:"batchIds,omitempty"`
}

// NewGoodsReceipt creates a new goods receipt document.
func NewGoodsReceipt(supplierRef string) *GoodsReceipt {
	return &GoodsReceipt{
		Document:    entity.NewDocument(),
		SupplierRef: supplierRef,
		Lines:       make([]Line, 0),
	}
}

// AddLine appends a line and assigns its number.
func (g *GoodsReceipt) AddLine(line Line) {
	line.LineID = id.New()
	line.LineNo = len(g.Lines) + 1
	g.Lines = append(g.Lines, line)
}

// Validate implements entity.Validatable.
func (g *GoodsReceipt) Validate(ctx context.Context) error {
	if g.SupplierRef == "" {
		return apperror.NewValidation("supplier reference is required").
			WithDetail("field", "supplierRef")
	}
	if len(g.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range g.Lines {
		lineNo := i + 1
		if line.ItemCode == "" {
			return apperror.NewValidation("item code is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", lineNo)
		}
		if line.UOM == "" {
			return apperror.NewValidation("uom is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", lineNo)
		}
		if !line.ReceivedQuantity.IsPositive() {
			return apperror.NewValidation("received quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", lineNo)
		}
		if line.UnitCount < 1 {
			return apperror.NewValidation("unit count must be at least 1").
				WithDetail("field", "lines").
				WithDetail("lineNo", lineNo)
		}
	}

	return nil
}

// BatchCode builds the traceable code for one physical unit of one line:
// {sourceDocument}-{lineIndex}-{unitIndex}, both indexes 1-based.
func BatchCode(documentNumber string, lineNo, unitNo int) string {
	return fmt.Sprintf("%s-%d-%d", documentNumber, lineNo, unitNo)
}
