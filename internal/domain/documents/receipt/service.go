package receipt

import (
	"context"
	"fmt"
	"time"

	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/core/numerator"
	"rollstock/internal/domain"
	"rollstock/internal/domain/ledger/batch"
	"rollstock/pkg/logger"
)

// Service turns goods receipt documents into batches.
type Service struct {
	repo      Repository
	batches   *batch.Service
	numerator numerator.Generator
	audit     domain.AuditLogger
}

// NewService creates a new goods receipt service.
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

// Process validates the document, splits every line across its physical
// units and creates the resulting batches atomically with the document
// itself. The last unit of a line absorbs the fixed-point remainder so
// the created batches sum exactly to the received quantity.
func (s *Service) Process(ctx context.Context, doc *GoodsReceipt) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if doc.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("GRN"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	specs := make([]batch.CreateSpec, 0, len(doc.Lines))
	lineOfSpec := make([]int, 0, len(doc.Lines))
	for li := range doc.Lines {
		line := &doc.Lines[li]
		parts := line.ReceivedQuantity.SplitEven(line.UnitCount)
		for ui, part := range parts {
			specs = append(specs, batch.CreateSpec{
				Code:             BatchCode(doc.Number, line.LineNo, ui+1),
				ItemCode:         line.ItemCode,
				UOM:              line.UOM,
				SourceDocumentID: doc.Number,
				Quantity:         part,
				Attributes:       line.Attributes,
			})
			lineOfSpec = append(lineOfSpec, li)
		}
	}

	rec := batch.Recorder{ID: doc.ID, Type: DocumentType}
	_, err := s.batches.CreateBatches(ctx, rec, specs, func(ctx context.Context, created []entity.Batch) error {
		for si, b := range created {
			line := &doc.Lines[lineOfSpec[si]]
			line.BatchIDs = append(line.BatchIDs, b.ID)
		}
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create receipt: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.audit.LogOperation(ctx, DocumentType, doc.ID, domain.AuditActionApply, doc); err != nil {
		logger.Warn(ctx, "audit log failed", "document", doc.Number, "error", err)
	}

	logger.Info(ctx, "goods receipt processed",
		"id", doc.ID,
		"number", doc.Number,
		"batches", len(specs),
	)

	return nil
}

// GetByID retrieves a goods receipt with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*GoodsReceipt, error) {
	return s.repo.Get(ctx, docID)
}

// List retrieves goods receipts with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*GoodsReceipt], error) {
	return s.repo.List(ctx, filter)
}
