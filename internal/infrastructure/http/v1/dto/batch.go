package dto

import (
	"time"

	"rollstock/internal/core/entity"
	"rollstock/internal/core/types"
)

// BatchResponse is the API shape of a batch.
type BatchResponse struct {
	ID                string             `json:"id"`
	Code              string             `json:"code"`
	ItemCode          string             `json:"itemCode"`
	UOM               string             `json:"uom"`
	SourceDocumentID  string             `json:"sourceDocumentId"`
	ParentBatchID     *string            `json:"parentBatchId,omitempty"`
	ReceivedQuantity  types.Quantity     `json:"receivedQuantity"`
	RemainingQuantity types.Quantity     `json:"remainingQuantity"`
	IssuedQuantity    types.Quantity     `json:"issuedQuantity"`
	Status            entity.BatchStatus `json:"status"`
	Attributes        entity.Attributes  `json:"attributes,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// NewBatchResponse converts a batch entity.
func NewBatchResponse(b entity.Batch) BatchResponse {
	resp := BatchResponse{
		ID:                b.ID.String(),
		Code:              b.Code,
		ItemCode:          b.ItemCode,
		UOM:               b.UOM,
		SourceDocumentID:  b.SourceDocumentID,
		ReceivedQuantity:  b.ReceivedQuantity,
		RemainingQuantity: b.RemainingQuantity,
		IssuedQuantity:    b.IssuedQuantity(),
		Status:            b.Status(),
		Attributes:        b.Attributes,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
	if b.ParentBatchID != nil {
		parent := b.ParentBatchID.String()
		resp.ParentBatchID = &parent
	}
	return resp
}

// NewBatchResponses converts a slice of batches.
func NewBatchResponses(batches []entity.Batch) []BatchResponse {
	out := make([]BatchResponse, 0, len(batches))
	for _, b := range batches {
		out = append(out, NewBatchResponse(b))
	}
	return out
}

// MovementResponse is one journal line.
type MovementResponse struct {
	LineID       string            `json:"lineId"`
	BatchID      string            `json:"batchId"`
	RecorderID   string            `json:"recorderId"`
	RecorderType string            `json:"recorderType"`
	RecordType   entity.RecordType `json:"recordType"`
	Quantity     types.Quantity    `json:"quantity"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// NewMovementResponses converts journal lines.
func NewMovementResponses(movements []entity.BatchMovement) []MovementResponse {
	out := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, MovementResponse{
			LineID:       m.LineID.String(),
			BatchID:      m.BatchID.String(),
			RecorderID:   m.RecorderID.String(),
			RecorderType: m.RecorderType,
			RecordType:   m.RecordType,
			Quantity:     m.Quantity,
			CreatedAt:    m.CreatedAt,
		})
	}
	return out
}

// AvailabilityResponse is the total remaining quantity for an item.
type AvailabilityResponse struct {
	ItemCode string         `json:"itemCode"`
	Total    types.Quantity `json:"total"`
}
