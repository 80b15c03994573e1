package memory

import (
	"context"
	"sort"
	"time"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/domain"
	"rollstock/internal/domain/ledger/batch"
)

// BatchRepository is a map-backed batch.Repository.
type BatchRepository struct {
	base
	batches map[id.ID]entity.Batch
	byCode  map[string]id.ID
}

// NewBatchRepository creates an empty batch repository.
func NewBatchRepository() *BatchRepository {
	return &BatchRepository{
		batches: make(map[id.ID]entity.Batch),
		byCode:  make(map[string]id.ID),
	}
}

var _ batch.Repository = (*BatchRepository)(nil)

func (r *BatchRepository) Create(ctx context.Context, b *entity.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.batches[b.ID]; ok {
		return apperror.NewDuplicate("batch", "id", b.ID.String())
	}
	if _, ok := r.byCode[b.Code]; ok {
		return apperror.NewDuplicate("batch", "code", b.Code)
	}

	stored := *b
	stored.Attributes = b.Attributes.Clone()
	r.batches[b.ID] = stored
	r.byCode[b.Code] = b.ID
	return nil
}

func (r *BatchRepository) Get(ctx context.Context, batchID id.ID) (*entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.batches[batchID]
	if !ok {
		return nil, apperror.NewNotFound("batch", batchID.String())
	}
	out := stored
	out.Attributes = stored.Attributes.Clone()
	return &out, nil
}

func (r *BatchRepository) Save(ctx context.Context, b *entity.Batch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.batches[b.ID]
	if !ok {
		return apperror.NewNotFound("batch", b.ID.String())
	}
	// Touch has already bumped the incoming version.
	if b.Version != stored.Version+1 {
		return apperror.NewConflict("batch was modified concurrently").
			WithDetail("batch_id", b.ID.String())
	}

	next := *b
	next.Attributes = b.Attributes.Clone()
	r.batches[b.ID] = next
	return nil
}

func (r *BatchRepository) ListByItemCode(ctx context.Context, itemCode string, filter domain.ListFilter) ([]entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.Batch
	for _, b := range r.batches {
		if b.ItemCode != itemCode {
			continue
		}
		if !matchSearch(filter.Search, b.Code) {
			continue
		}
		b.Attributes = b.Attributes.Clone()
		out = append(out, b)
	}
	sortBatchesFIFO(out)
	return paginate(out, filter.Limit, filter.Offset), nil
}

func (r *BatchRepository) ListAvailable(ctx context.Context, itemCode string) ([]entity.Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.Batch
	for _, b := range r.batches {
		if b.ItemCode != itemCode || !b.RemainingQuantity.IsPositive() {
			continue
		}
		b.Attributes = b.Attributes.Clone()
		out = append(out, b)
	}
	sortBatchesFIFO(out)
	return out, nil
}

func (r *BatchRepository) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[entity.Batch], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.Batch
	for _, b := range r.batches {
		if !matchSearch(filter.Search, b.Code, b.ItemCode) {
			continue
		}
		b.Attributes = b.Attributes.Clone()
		out = append(out, b)
	}
	sortByCreatedAt(out, filter.OrderBy, func(b entity.Batch) time.Time { return b.CreatedAt })
	total := int64(len(out))
	return domain.ListResult[entity.Batch]{
		Items:      paginate(out, filter.Limit, filter.Offset),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// sortBatchesFIFO orders oldest first, falling back to code for batches
// created in the same instant (receipt lines share a timestamp).
func sortBatchesFIFO(batches []entity.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		if batches[i].CreatedAt.Equal(batches[j].CreatedAt) {
			return batches[i].Code < batches[j].Code
		}
		return batches[i].CreatedAt.Before(batches[j].CreatedAt)
	})
}

// MovementRepository is a map-backed batch.MovementRepository.
type MovementRepository struct {
	base
	movements []entity.BatchMovement
}

// NewMovementRepository creates an empty movement journal.
func NewMovementRepository() *MovementRepository {
	return &MovementRepository{}
}

var _ batch.MovementRepository = (*MovementRepository)(nil)

func (r *MovementRepository) CreateMovements(ctx context.Context, movements []entity.BatchMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *MovementRepository) ListByBatch(ctx context.Context, batchID id.ID) ([]entity.BatchMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.BatchMovement
	for _, m := range r.movements {
		if m.BatchID == batchID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *MovementRepository) ListByRecorder(ctx context.Context, recorderID id.ID) ([]entity.BatchMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entity.BatchMovement
	for _, m := range r.movements {
		if m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}
