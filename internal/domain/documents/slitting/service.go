package slitting

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
	"rollstock/internal/domain/ledger/batch"
	"rollstock/pkg/logger"
)

// Service cuts quantity from a parent batch into child batches. The
// debit, the child creation and the record itself commit together, so a
// failed cut leaves the parent untouched.
type Service struct {
	repo      Repository
	batches   *batch.Service
	numerator numerator.Generator
	audit     domain.AuditLogger
}

// NewService creates a new slitting service.
func NewService(repo Repository, batches *batch.Service, gen numerator.Generator, audit domain.AuditLogger) *Service {
	if audit == nil {
		audit = domain.NopAudit{}
	}
	return &Service{
		repo:      repo,
		batches:   batches,
		numerator: gen,
		audit:     audit,
	}
}

// Process consumes the input batch's full remaining quantity and creates
// one child batch per output, carrying the parent's id as lineage.
// Outputs plus wastage must balance against the remaining quantity within
// the conservation tolerance. Outputs inherit the parent's item code and
// unit of measure unless the request overrides them.
func (s *Service) Process(ctx context.Context, req Request) (*SlittingRecord, error) {
	if err := req.Validate(ctx); err != nil {
		return nil, err
	}

	input, err := s.batches.GetByID(ctx, req.InputBatchID)
	if err != nil {
		return nil, err
	}
	consumed := input.RemainingQuantity
	if consumed.IsZero() {
		return nil, apperror.NewInsufficientStock(
			input.ID.String(),
			req.OutputTotal().String(),
			"0.0000",
		)
	}

	diff := consumed - (req.OutputTotal() + req.Wastage)
	if diff.Abs() > types.ConservationTolerance {
		return nil, apperror.NewConservation(
			input.ID.String(),
			consumed.String(),
			req.OutputTotal().String(),
			req.Wastage.String(),
		)
	}

	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("SLT"),
		&numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}

	rec := NewSlittingRecord(req.InputBatchID)
	rec.Number = number
	rec.Comment = req.Comment
	rec.ConsumedQuantity = consumed
	rec.Wastage = req.Wastage

	recorder := batch.Recorder{ID: rec.ID, Type: DocumentType}
	debit := batch.Delta{BatchID: req.InputBatchID, Quantity: consumed.Neg()}

	_, err = s.batches.ApplyDeltas(ctx, recorder, []batch.Delta{debit}, func(ctx context.Context, updated []entity.Batch) error {
		parent := updated[0]
		// The remaining quantity may have moved between the read above
		// and taking the lock. The cut is only valid when it drains the
		// batch exactly.
		if !parent.RemainingQuantity.IsZero() {
			return apperror.NewConflict("input batch changed concurrently").
				WithDetail("batch_id", parent.ID.String()).
				WithDetail("remaining", parent.RemainingQuantity.String())
		}
		parentID := parent.ID

		specs := make([]batch.CreateSpec, 0, len(req.Outputs))
		for i, out := range req.Outputs {
			itemCode := out.ItemCode
			if itemCode == "" {
				itemCode = parent.ItemCode
			}
			uom := out.UOM
			if uom == "" {
				uom = parent.UOM
			}
			specs = append(specs, batch.CreateSpec{
				Code:             ChildBatchCode(parent.Code, i+1),
				ItemCode:         itemCode,
				UOM:              uom,
				SourceDocumentID: rec.Number,
				ParentBatchID:    &parentID,
				Quantity:         out.Quantity,
				Attributes:       out.Attributes,
			})
		}

		created, err := s.batches.CreateBatches(ctx, recorder, specs, nil)
		if err != nil {
			return err
		}

		for i, b := range created {
			rec.Lines = append(rec.Lines, Line{
				LineID:     id.New(),
				LineNo:     i + 1,
				ItemCode:   b.ItemCode,
				UOM:        b.UOM,
				Quantity:   b.ReceivedQuantity,
				BatchID:    b.ID,
				Attributes: b.Attributes,
			})
		}

		if err := s.repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("create slitting record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.LogOperation(ctx, DocumentType, rec.ID, domain.AuditActionApply, rec); err != nil {
		logger.Warn(ctx, "audit log failed", "document", rec.Number, "error", err)
	}

	logger.Info(ctx, "batch slit",
		"id", rec.ID,
		"number", rec.Number,
		"input_batch_id", req.InputBatchID,
		"outputs", len(rec.Lines),
		"wastage", req.Wastage,
	)

	return rec, nil
}

// GetByID retrieves a slitting record with lines.
func (s *Service) GetByID(ctx context.Context, recID id.ID) (*SlittingRecord, error) {
	return s.repo.Get(ctx, recID)
}

// ListByInputBatch retrieves the cuts that consumed from a batch.
func (s *Service) ListByInputBatch(ctx context.Context, batchID id.ID) ([]*SlittingRecord, error) {
	return s.repo.ListByInputBatch(ctx, batchID)
}

// List retrieves slitting records with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*SlittingRecord], error) {
	return s.repo.List(ctx, filter)
}

// ChildBatchCode derives a child batch code from the parent code and the
// output position.
func ChildBatchCode(parentCode string, outputNo int) string {
	return fmt.Sprintf("%s/S%d", parentCode, outputNo)
}
