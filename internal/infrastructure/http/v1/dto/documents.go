package dto

import (
	"rollstock/internal/core/entity"
	"rollstock/internal/core/types"
)

// --- Goods receipt ---

// ReceiptLineRequest is one incoming material position.
type ReceiptLineRequest struct {
	ItemCode         string            `json:"itemCode" binding:"required"`
	UOM              string            `json:"uom" binding:"required"`
	OrderedQuantity  types.Quantity    `json:"orderedQuantity"`
	ReceivedQuantity types.Quantity    `json:"receivedQuantity" binding:"required"`
	UnitCount        int               `json:"unitCount" binding:"required,min=1"`
	UnitRate         string            `json:"unitRate"`
	Attributes       entity.Attributes `json:"attributes"`
}

// CreateReceiptRequest creates and applies a goods receipt.
type CreateReceiptRequest struct {
	SupplierRef       string               `json:"supplierRef" binding:"required"`
	SupplierDocNumber string               `json:"supplierDocNumber"`
	Comment           string               `json:"comment"`
	Lines             []ReceiptLineRequest `json:"lines" binding:"required,min=1"`
}

// --- Issue ---

// IssueLineRequest is one explicit batch debit.
type IssueLineRequest struct {
	BatchID  string         `json:"batchId" binding:"required"`
	Quantity types.Quantity `json:"quantity" binding:"required"`
}

// CreateIssueRequest issues stock against explicitly chosen batches.
type CreateIssueRequest struct {
	ConsumerRef string             `json:"consumerRef" binding:"required"`
	Comment     string             `json:"comment"`
	Lines       []IssueLineRequest `json:"lines" binding:"required,min=1"`
}

// CreateAutoIssueRequest issues stock with automatic batch selection.
type CreateAutoIssueRequest struct {
	ConsumerRef string         `json:"consumerRef" binding:"required"`
	ItemCode    string         `json:"itemCode" binding:"required"`
	Quantity    types.Quantity `json:"quantity" binding:"required"`
	Policy      string         `json:"policy"`
	Comment     string         `json:"comment"`
}

// --- Return ---

// ReturnLineRequest is one batch credit.
type ReturnLineRequest struct {
	BatchID  string         `json:"batchId" binding:"required"`
	Quantity types.Quantity `json:"quantity" binding:"required"`
}

// CreateReturnRequest returns stock against a prior issue.
type CreateReturnRequest struct {
	IssueID string              `json:"issueId" binding:"required"`
	Lines   []ReturnLineRequest `json:"lines" binding:"required,min=1"`
}

// --- Slitting ---

// SlittingOutputRequest is one requested output reel.
type SlittingOutputRequest struct {
	ItemCode   string            `json:"itemCode"`
	UOM        string            `json:"uom"`
	Quantity   types.Quantity    `json:"quantity" binding:"required"`
	Attributes entity.Attributes `json:"attributes"`
}

// CreateSlittingRequest cuts one batch into child batches. The cut
// consumes the input batch's full remaining quantity.
type CreateSlittingRequest struct {
	InputBatchID string                  `json:"inputBatchId" binding:"required"`
	Wastage      types.Quantity          `json:"wastage"`
	Comment      string                  `json:"comment"`
	Outputs      []SlittingOutputRequest `json:"outputs" binding:"required,min=1"`
}
