// Package stockreturn provides the Return document: reversal of part of a
// prior issue, crediting quantity back to its source batches.
package stockreturn

import (
	"context"
	"time"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/core/types"
)

// DocumentType is the recorder type written to the batch journal.
const DocumentType = "Return"

// ReturnRecord reverses part of a prior issue. The issue is referenced by
// its stored id, never re-derived from formatted batch numbers.
type ReturnRecord struct {
	entity.Document

	// IssueID is the issue this return reverses.
	IssueID id.ID `db:"issue_id" json:"issueId"`

	// Reversed marks a return that was itself undone. Reversed returns
	// do not count toward the cumulative returned quantity.
	Reversed   bool       `db:"reversed" json:"reversed"`
	ReversedAt *time.Time `db:"reversed_at" json:"reversedAt,omitempty"`

	// Lines are the batch credits.
	Lines []Line `db:"-" json:"lines"`
}

// Line is one batch credit.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	// BatchID is the credited batch.
	BatchID id.ID `db:"batch_id" json:"batchId"`

	// Quantity returned to this batch, always positive.
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// LineRequest is the caller's requested credit for one batch.
type LineRequest struct {
	BatchID  id.ID          `json:"batchId"`
	Quantity types.Quantity `json:"quantity"`
}

// NewReturnRecord creates a new return document.
func NewReturnRecord(issueID id.ID) *ReturnRecord {
	return &ReturnRecord{
		Document: entity.NewDocument(),
		IssueID:  issueID,
		Lines:    make([]Line, 0),
	}
}

// ReturnedTo returns the quantity this record credited to the given batch.
func (r *ReturnRecord) ReturnedTo(batchID id.ID) types.Quantity {
	var total types.Quantity
	for _, line := range r.Lines {
		if line.BatchID == batchID {
			total += line.Quantity
		}
	}
	return total
}

// ValidateRequests checks the shape of return line requests.
func ValidateRequests(ctx context.Context, issueID id.ID, reqs []LineRequest) error {
	if id.IsNil(issueID) {
		return apperror.NewValidation("issue id is required").
			WithDetail("field", "issueId")
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
