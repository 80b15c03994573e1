package issue

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

// Service is the allocation engine: it issues quantity to a consumer,
// either against explicitly chosen batches or by FIFO selection.
type Service struct {
	repo      Repository
	batches   *batch.Service
	numerator numerator.Generator
	audit     domain.AuditLogger
}

// NewService creates a new issue service.
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

// IssueExplicit debits the exact batches the caller chose. If any line
// would overdraw its batch the whole call fails with INSUFFICIENT_STOCK
// naming that batch, and no batch is changed.
func (s *Service) IssueExplicit(ctx context.Context, consumerRef string, reqs []LineRequest) (*IssueRecord, error) {
	if err := ValidateRequests(ctx, consumerRef, reqs); err != nil {
		return nil, err
	}

	rec := NewIssueRecord(consumerRef)
	return s.apply(ctx, rec, reqs)
}

// IssueAuto selects available batches for the item oldest first and
// consumes them until the requested quantity is satisfied. If the item's
// total available quantity is short the call fails without touching any
// batch.
func (s *Service) IssueAuto(ctx context.Context, consumerRef, itemCode string, requested types.Quantity, policy SelectionPolicy) (*IssueRecord, error) {
	if consumerRef == "" {
		return nil, apperror.NewValidation("consumer reference is required").
			WithDetail("field", "consumerRef")
	}
	if itemCode == "" {
		return nil, apperror.NewValidation("item code is required").
			WithDetail("field", "itemCode")
	}
	if !requested.IsPositive() {
		return nil, apperror.NewValidation("requested quantity must be positive").
			WithDetail("field", "quantity")
	}
	if policy == "" {
		policy = PolicyFIFO
	}
	if policy != PolicyFIFO {
		return nil, apperror.NewValidation("unknown selection policy").
			WithDetail("policy", string(policy))
	}

	available, err := s.batches.ListAvailable(ctx, itemCode)
	if err != nil {
		return nil, fmt.Errorf("list available: %w", err)
	}

	reqs := make([]LineRequest, 0, len(available))
	short := requested
	for _, b := range available {
		if !short.IsPositive() {
			break
		}
		take := b.RemainingQuantity
		if take > short {
			take = short
		}
		reqs = append(reqs, LineRequest{BatchID: b.ID, Quantity: take})
		short -= take
	}
	if short.IsPositive() {
		return nil, apperror.NewInsufficientStockForItem(
			itemCode,
			requested.String(),
			(requested - short).String(),
		)
	}

	rec := NewIssueRecord(consumerRef)
	rec.Policy = policy
	return s.apply(ctx, rec, reqs)
}

// apply numbers the record, debits all batches all-or-nothing and
// persists the record in the same transaction.
func (s *Service) apply(ctx context.Context, rec *IssueRecord, reqs []LineRequest) (*IssueRecord, error) {
	number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("ISS"),
		&numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate number: %w", err)
	}
	rec.Number = number

	deltas := make([]batch.Delta, 0, len(reqs))
	for _, req := range reqs {
		deltas = append(deltas, batch.Delta{BatchID: req.BatchID, Quantity: req.Quantity.Neg()})
	}

	recorder := batch.Recorder{ID: rec.ID, Type: DocumentType}
	_, err = s.batches.ApplyDeltas(ctx, recorder, deltas, func(ctx context.Context, updated []entity.Batch) error {
		itemByBatch := make(map[id.ID]string, len(updated))
		for _, b := range updated {
			itemByBatch[b.ID] = b.ItemCode
		}
		for i, req := range reqs {
			rec.Lines = append(rec.Lines, Line{
				LineID:   id.New(),
				LineNo:   i + 1,
				BatchID:  req.BatchID,
				ItemCode: itemByBatch[req.BatchID],
				Quantity: req.Quantity,
			})
		}
		if err := s.repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("create issue record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.audit.LogOperation(ctx, DocumentType, rec.ID, domain.AuditActionApply, rec); err != nil {
		logger.Warn(ctx, "audit log failed", "document", rec.Number, "error", err)
	}

	logger.Info(ctx, "stock issued",
		"id", rec.ID,
		"number", rec.Number,
		"consumer", rec.ConsumerRef,
		"lines", len(rec.Lines),
	)

	return rec, nil
}

// GetByID retrieves an issue record with lines.
func (s *Service) GetByID(ctx context.Context, recID id.ID) (*IssueRecord, error) {
	return s.repo.Get(ctx, recID)
}

// List retrieves issue records with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*IssueRecord], error) {
	return s.repo.List(ctx, filter)
}
