package stockreturn

import (
	"context"
	"fmt"
	"time"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/core/numerator"
	"rollstock/internal/core/types"
	"rollstock/internal/domain"
	"rollstock/internal/domain/documents/issue"
	"rollstock/internal/domain/ledger/batch"
	"rollstock/pkg/logger"
)

// Service credits previously issued quantity back to its source batches,
// bounding every (issue, batch) pair by the quantity originally issued on
// that pair.
type Service struct {
	repo      Repository
	issues    issue.Repository
	batches   *batch.Service
	numerator numerator.Generator
	audit     domain.AuditLogger
}

// NewService creates a new return service.
func NewService(repo Repository, issues issue.Repository, batches *batch.Service, gen numerator.Generator, audit domain.AuditLogger) *Service {
	if audit == nil {
		audit = domain.NopAudit{}
	}
	return &Service{
		repo:      repo,
		issues:    issues,
		batches:   batches,
		numerator: gen,
		audit:     audit,
	}
}

// ProcessReturn validates the return against the referenced issue and
// credits the batches all-or-nothing. The over-return check runs again
// under the batch locks, so two concurrent returns against the same pair
// cannot jointly exceed the issued quantity.
func (s *Service) ProcessReturn(ctx context.Context, issueID id.ID, reqs []LineRequest) (*ReturnRecord, error) {
	if err := ValidateRequests(ctx, issueID, reqs); err != nil {
		return nil, err
	}

	iss, err := s.issues.Get(ctx, issueID)
	if err != nil {
		return nil, err
	}

	// Early rejection outside the locks; the authoritative check runs
	// inside the transaction below.
	if err := s.checkOutstanding(ctx, iss, reqs); err != nil {
		return nil, err
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("RET"),
		&numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}

	rec := NewReturnRecord(issueID)
	rec.Number = number
	for i, req := range reqs {
		rec.Lines = append(rec.Lines, Line{
			LineID:   id.New(),
			LineNo:   i + 1,
			BatchID:  req.BatchID,
			Quantity: req.Quantity,
		})
	}

	deltas := make([]batch.Delta, 0, len(reqs))
	for _, req := range reqs {
		deltas = append(deltas, batch.Delta{BatchID: req.BatchID, Quantity: req.Quantity})
	}

	recorder := batch.Recorder{ID: rec.ID, Type: DocumentType}
	_, err = s.batches.ApplyDeltas(ctx, recorder, deltas, func(ctx context.Context, _ []entity.Batch) error {
		if err := s.checkOutstanding(ctx, iss, reqs); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("create return record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.LogOperation(ctx, DocumentType, rec.ID, domain.AuditActionApply, rec); err != nil {
		logger.Warn(ctx, "audit log failed", "document", rec.Number, "error", err)
	}

	logger.Info(ctx, "stock returned",
		"id", rec.ID,
		"number", rec.Number,
		"issue_id", issueID,
		"lines", len(rec.Lines),
	)

	return rec, nil
}

// ReverseReturn undoes a return document in full, re-debiting every batch
// by the amount the return had credited. If the stock was re-issued in
// the meantime the reversal fails with CONFLICT and nothing changes.
func (s *Service) ReverseReturn(ctx context.Context, returnID id.ID) (*ReturnRecord, error) {
	rec, err := s.repo.Get(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if rec.Reversed {
		return nil, apperror.NewConflict("return is already reversed").
			WithDetail("return_id", returnID.String())
	}

	deltas := make([]batch.Delta, 0, len(rec.Lines))
	for _, line := range rec.Lines {
		deltas = append(deltas, batch.Delta{BatchID: line.BatchID, Quantity: line.Quantity.Neg()})
	}

	now := time.Now().UTC()
	recorder := batch.Recorder{ID: rec.ID, Type: DocumentType}
	_, err = s.batches.ApplyDeltas(ctx, recorder, deltas, func(ctx context.Context, _ []entity.Batch) error {
		if err := s.repo.MarkReversed(ctx, rec.ID, now); err != nil {
			return fmt.Errorf("mark reversed: %w", err)
		}
		return nil
	})
	if err != nil {
		if apperror.IsInsufficientStock(err) {
			return nil, apperror.NewConflict("reversal would drive batch stock negative").
				WithDetail("return_id", returnID.String()).
				WithCause(err)
		}
		return nil, err
	}

	rec.Reversed = true
	rec.ReversedAt = &now

	if err := s.audit.LogOperation(ctx, DocumentType, rec.ID, domain.AuditActionReverse, rec); err != nil {
		logger.Warn(ctx, "audit log failed", "document", rec.Number, "error", err)
	}

	logger.Info(ctx, "return reversed",
		"id", rec.ID,
		"number", rec.Number,
	)

	return rec, nil
}

// checkOutstanding verifies that, per batch, prior non-reversed returns
// plus the requested credit stay within the quantity the issue drew from
// that batch.
func (s *Service) checkOutstanding(ctx context.Context, iss *issue.IssueRecord, reqs []LineRequest) error {
	prior, err := s.repo.ListByIssue(ctx, iss.ID)
	if err != nil {
		return fmt.Errorf("list prior returns: %w", err)
	}

	returned := make(map[id.ID]types.Quantity)
	for _, p := range prior {
		if p.Reversed {
			continue
		}
		for _, line := range p.Lines {
			returned[line.BatchID] += line.Quantity
		}
	}

	requested := make(map[id.ID]types.Quantity)
	for _, req := range reqs {
		requested[req.BatchID] += req.Quantity
	}

	for batchID, qty := range requested {
		issued := iss.IssuedTo(batchID)
		outstanding := issued - returned[batchID]
		if qty > outstanding {
			if outstanding.IsNegative() {
				outstanding = 0
			}
			return apperror.NewOverReturn(
				iss.ID.String(),
				batchID.String(),
				qty.String(),
				outstanding.String(),
			)
		}
	}
	return nil
}

// GetByID retrieves a return record with lines.
func (s *Service) GetByID(ctx context.Context, recID id.ID) (*ReturnRecord, error) {
	return s.repo.Get(ctx, recID)
}

// List retrieves return records with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*ReturnRecord], error) {
	return s.repo.List(ctx, filter)
}
