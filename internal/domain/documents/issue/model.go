// Package issue provides the Issue document: allocation of batch quantity
// to a consumer (job card or department).
package issue

import (
	"context"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/core/types"
)

// DocumentType is the recorder type written to the batch journal.
const DocumentType = "Issue"

// SelectionPolicy controls automatic batch selection.
type SelectionPolicy string

// PolicyFIFO consumes batches oldest first.
const PolicyFIFO SelectionPolicy = "FIFO"

// IssueRecord is one allocation event debiting one or more batches for
// one consumer. Once applied it is immutable; corrections go through
// return documents.
type IssueRecord struct {
	entity.Document

	// ConsumerRef is the job id or department name the stock went to.
	ConsumerRef string `db:"consumer_ref" json:"consumerRef"`

	// Policy records how the batches were chosen (explicit or FIFO).
	Policy SelectionPolicy `db:"policy" json:"policy,omitempty"`

	// Lines are the batch debits, in application order.
	Lines []Line `db:"-" json:"lines"`
}

// Line is one batch debit.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// BatchID is the debited batch (typed foreign key, never re-derived
	// from display strings).
	BatchID id.ID `db:"batch_id" json:"batchId"`

	// ItemCode snapshots the batch's item for reporting.
	ItemCode string `db:"item_code" json:"itemCode"`

	// Quantity issued from this batch, always positive.
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// LineRequest is the caller's requested debit for one batch.
type LineRequest struct {
	BatchID  id.ID          `json:"batchId"`
	Quantity types.Quantity `json:"quantity"`
}

// NewIssueRecord creates a new issue document.
func NewIssueRecord(consumerRef string) *IssueRecord {
	return &IssueRecord{
		Document:    entity.NewDocument(),
		ConsumerRef: consumerRef,
		Lines:       make([]Line, 0),
	}
}

// IssuedTo returns the quantity this record issued from the given batch.
func (r *IssueRecord) IssuedTo(batchID id.ID) types.Quantity {
	var total types.Quantity
	for _, line := range r.Lines {
		if line.BatchID == batchID {
			total += line.Quantity
		}
	}
	return total
}

// ValidateRequests checks the shape of explicit line requests.
func ValidateRequests(ctx context.Context, consumerRef string, reqs []LineRequest) error {
	if consumerRef == "" {
		return apperror.NewValidation("consumer reference is required").
			WithDetail("field", "consumerRef")
	}
	if len(reqs) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}
	for i, req := range reqs {
		if id.IsNil(req.BatchID) {
			return apperror.NewValidation("batch id is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !req.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}
	return nil
}
