package batch

import (
	"context"
	"fmt"
	"time"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/core/tx"
	"rollstock/internal/core/types"
	"rollstock/internal/domain"
	"rollstock/pkg/logger"
)

// Service is the batch store. Every quantity mutation in the system goes
// through ApplyDeltas (or the wrappers built on it), which serializes
// access per batch id, validates 0 <= remaining <= received before any
// write reaches storage, and journals each applied delta.
type Service struct {
	repo      Repository
	movements MovementRepository
	txm       tx.Manager
	locks     *lockTable
}

// NewService creates a new batch store service.
func NewService(repo Repository, movements MovementRepository, txm tx.Manager) *Service {
	return &Service{
		repo:      repo,
		movements: movements,
		txm:       txm,
		locks:     newLockTable(),
	}
}

// CreateSpec describes a batch to create.
type CreateSpec struct {
	Code             string
	ItemCode         string
	UOM              string
	SourceDocumentID string
	ParentBatchID    *id.ID
	Quantity         types.Quantity
	Attributes       entity.Attributes
}

// Delta is one signed quantity change against one batch.
// Negative debits, positive credits.
type Delta struct {
	BatchID  id.ID
	Quantity types.Quantity
}

// Recorder identifies the document on whose behalf a mutation runs.
type Recorder struct {
	ID   id.ID
	Type string
}

// CreateBatch validates and stores a single new batch.
func (s *Service) CreateBatch(ctx context.Context, rec Recorder, spec CreateSpec) (entity.Batch, error) {
	created, err := s.CreateBatches(ctx, rec, []CreateSpec{spec}, nil)
	if err != nil {
		return entity.Batch{}, err
	}
	return created[0], nil
}

// CreateBatches validates and stores new batches atomically. The optional
// within callback runs inside the same transaction, after the batches are
// stored; document services use it to persist their own records with the
// generated batch ids.
func (s *Service) CreateBatches(ctx context.Context, rec Recorder, specs []CreateSpec, within func(ctx context.Context, created []entity.Batch) error) ([]entity.Batch, error) {
	if len(specs) == 0 {
		return nil, apperror.NewValidation("at least one batch is required")
	}

	batches := make([]entity.Batch, 0, len(specs))
	journal := make([]entity.BatchMovement, 0, len(specs))
	for i, spec := range specs {
		if err := validateSpec(i, spec); err != nil {
			return nil, err
		}
		b := s.newBatch(spec)
		batches = append(batches, b)
		journal = append(journal, entity.NewBatchMovement(b.ID, rec.ID, rec.Type, spec.Quantity))
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for i := range batches {
			if err := s.repo.Create(ctx, &batches[i]); err != nil {
				return fmt.Errorf("create batch %s: %w", batches[i].Code, err)
			}
		}
		if err := s.movements.CreateMovements(ctx, journal); err != nil {
			return fmt.Errorf("journal movements: %w", err)
		}
		if within != nil {
			return within(ctx, batches)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "batches created",
		"count", len(batches),
		"recorder_id", rec.ID,
		"recorder_type", rec.Type,
	)

	return batches, nil
}

// ApplyDelta applies one signed delta to one batch.
func (s *Service) ApplyDelta(ctx context.Context, rec Recorder, d Delta) (entity.Batch, error) {
	updated, err := s.ApplyDeltas(ctx, rec, []Delta{d}, nil)
	if err != nil {
		return entity.Batch{}, err
	}
	return updated[0], nil
}

// ApplyDeltas applies a set of deltas with all-or-nothing semantics.
//
// Locks for every target batch are acquired up front in a fixed global
// order, then all resulting quantities are validated before the first
// write, so no partially applied state is ever visible, in storage or to
// readers holding the same locks. The optional within callback receives
// the batches with their post-delta quantities and runs inside the
// transaction; if it fails, nothing is kept.
func (s *Service) ApplyDeltas(ctx context.Context, rec Recorder, deltas []Delta, within func(ctx context.Context, updated []entity.Batch) error) ([]entity.Batch, error) {
	if len(deltas) == 0 {
		return nil, apperror.NewValidation("at least one delta is required")
	}
	lockIDs := make([]id.ID, 0, len(deltas))
	for i, d := range deltas {
		if d.Quantity.IsZero() {
			return nil, apperror.NewValidation(fmt.Sprintf("delta %d: quantity must be non-zero", i))
		}
		if id.IsNil(d.BatchID) {
			return nil, apperror.NewValidation(fmt.Sprintf("delta %d: batch id is required", i))
		}
		lockIDs = append(lockIDs, d.BatchID)
	}

	unlock := s.locks.lock(lockIDs)
	defer unlock()

	var updated []entity.Batch
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.applyLocked(ctx, rec, deltas, within)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "batch deltas applied",
		"count", len(deltas),
		"recorder_id", rec.ID,
		"recorder_type", rec.Type,
	)

	return updated, nil
}

// applyLocked runs with all target batch locks held.
func (s *Service) applyLocked(ctx context.Context, rec Recorder, deltas []Delta, within func(ctx context.Context, updated []entity.Batch) error) ([]entity.Batch, error) {
	// Load each batch once; evaluate deltas cumulatively in input order.
	loaded := make(map[id.ID]*entity.Batch, len(deltas))
	order := make([]id.ID, 0, len(deltas))
	for _, d := range deltas {
		if _, ok := loaded[d.BatchID]; ok {
			continue
		}
		b, err := s.repo.Get(ctx, d.BatchID)
		if err != nil {
			return nil, err
		}
		loaded[d.BatchID] = b
		order = append(order, d.BatchID)
	}

	journal := make([]entity.BatchMovement, 0, len(deltas))
	for _, d := range deltas {
		b := loaded[d.BatchID]
		next := b.RemainingQuantity + d.Quantity
		if next.IsNegative() {
			return nil, apperror.NewInsufficientStock(
				b.ID.String(),
				d.Quantity.Abs().String(),
				b.RemainingQuantity.String(),
			)
		}
		if next > b.ReceivedQuantity {
			return nil, apperror.NewOverCredit(
				b.ID.String(),
				d.Quantity.String(),
				(b.ReceivedQuantity - b.RemainingQuantity).String(),
			)
		}
		b.RemainingQuantity = next
		journal = append(journal, entity.NewBatchMovement(b.ID, rec.ID, rec.Type, d.Quantity))
	}

	updated := make([]entity.Batch, 0, len(order))
	for _, batchID := range order {
		updated = append(updated, *loaded[batchID])
	}

	if within != nil {
		if err := within(ctx, updated); err != nil {
			return nil, err
		}
	}

	for _, batchID := range order {
		b := loaded[batchID]
		b.Touch()
		if err := s.repo.Save(ctx, b); err != nil {
			return nil, fmt.Errorf("save batch %s: %w", b.Code, err)
		}
	}
	if err := s.movements.CreateMovements(ctx, journal); err != nil {
		return nil, fmt.Errorf("journal movements: %w", err)
	}

	// Refresh version/timestamp fields after save.
	for i, batchID := range order {
		updated[i] = *loaded[batchID]
	}
	return updated, nil
}

// GetByID retrieves a batch. The per-batch lock is taken for the read so
// a caller never observes a multi-line mutation in flight.
func (s *Service) GetByID(ctx context.Context, batchID id.ID) (entity.Batch, error) {
	unlock := s.locks.lock([]id.ID{batchID})
	defer unlock()

	b, err := s.repo.Get(ctx, batchID)
	if err != nil {
		return entity.Batch{}, err
	}
	return *b, nil
}

// ListByItemCode returns batches for an item, oldest first.
func (s *Service) ListByItemCode(ctx context.Context, itemCode string, filter domain.ListFilter) ([]entity.Batch, error) {
	return s.repo.ListByItemCode(ctx, itemCode, filter)
}

// ListAvailable returns batches with remaining stock for an item in FIFO
// order.
func (s *Service) ListAvailable(ctx context.Context, itemCode string) ([]entity.Batch, error) {
	return s.repo.ListAvailable(ctx, itemCode)
}

// List returns batches matching the filter.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[entity.Batch], error) {
	return s.repo.List(ctx, filter)
}

// Movements returns a batch's journal, oldest first.
func (s *Service) Movements(ctx context.Context, batchID id.ID) ([]entity.BatchMovement, error) {
	return s.movements.ListByBatch(ctx, batchID)
}

// Availability sums remaining quantity over an item's open batches.
func (s *Service) Availability(ctx context.Context, itemCode string) (types.Quantity, error) {
	batches, err := s.repo.ListAvailable(ctx, itemCode)
	if err != nil {
		return 0, fmt.Errorf("list available: %w", err)
	}
	var total types.Quantity
	for _, b := range batches {
		total += b.RemainingQuantity
	}
	return total, nil
}

func (s *Service) newBatch(spec CreateSpec) entity.Batch {
	b := entity.Batch{
		ID:                id.New(),
		Code:              spec.Code,
		ItemCode:          spec.ItemCode,
		UOM:               spec.UOM,
		SourceDocumentID:  spec.SourceDocumentID,
		ParentBatchID:     spec.ParentBatchID,
		ReceivedQuantity:  spec.Quantity,
		RemainingQuantity: spec.Quantity,
		Attributes:        spec.Attributes.Clone(),
		Version:           1,
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	return b
}

func validateSpec(i int, spec CreateSpec) error {
	if spec.Code == "" {
		return apperror.NewValidation(fmt.Sprintf("batch %d: code is required", i))
	}
	if spec.ItemCode == "" {
		return apperror.NewValidation(fmt.Sprintf("batch %d: item code is required", i))
	}
	if spec.UOM == "" {
		return apperror.NewValidation(fmt.Sprintf("batch %d: uom is required", i))
	}
	if !spec.Quantity.IsPositive() {
		return apperror.NewValidation(fmt.Sprintf("batch %d: quantity must be positive", i))
	}
	return nil
}
