package memory

import (
	"context"
	"time"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/id"
	"rollstock/internal/domain"
	"rollstock/internal/domain/documents/slitting"
)

// SlittingRepository is a map-backed slitting.Repository.
type SlittingRepository struct {
	base
	recs map[id.ID]*slitting.SlittingRecord
}

// NewSlittingRepository creates an empty slitting repository.
func NewSlittingRepository() *SlittingRepository {
	return &SlittingRepository{recs: make(map[id.ID]*slitting.SlittingRecord)}
}

var _ slitting.Repository = (*SlittingRepository)(nil)

func (r *SlittingRepository) Create(ctx context.Context, rec *slitting.SlittingRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recs[rec.ID]; ok {
		return apperror.NewDuplicate("slitting", "id", rec.ID.String())
	}
	r.recs[rec.ID] = cloneSlitting(rec)
	return nil
}

func (r *SlittingRepository) Get(ctx context.Context, recID id.ID) (*slitting.SlittingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.recs[recID]
	if !ok {
		return nil, apperror.NewNotFound("slitting", recID.String())
	}
	return cloneSlitting(rec), nil
}

func (r *SlittingRepository) ListByInputBatch(ctx context.Context, batchID id.ID) ([]*slitting.SlittingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*slitting.SlittingRecord
	for _, rec := range r.recs {
		if rec.InputBatchID == batchID {
			out = append(out, cloneSlitting(rec))
		}
	}
	sortByCreatedAt(out, "created_at", func(rec *slitting.SlittingRecord) time.Time { return rec.CreatedAt })
	return out, nil
}

func (r *SlittingRepository) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*slitting.SlittingRecord], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*slitting.SlittingRecord
	for _, rec := range r.recs {
		if !matchSearch(filter.Search, rec.Number) {
			continue
		}
		out = append(out, cloneSlitting(rec))
	}
	sortByCreatedAt(out, orderNewestFirst(filter.OrderBy), func(rec *slitting.SlittingRecord) time.Time { return rec.CreatedAt })
	total := int64(len(out))
	return domain.ListResult[*slitting.SlittingRecord]{
		Items:      paginate(out, filter.Limit, filter.Offset),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func cloneSlitting(rec *slitting.SlittingRecord) *slitting.SlittingRecord {
	out := *rec
	out.Lines = make([]slitting.Line, len(rec.Lines))
	for i, line := range rec.Lines {
		line.Attributes = line.Attributes.Clone()
		out.Lines[i] = line
	}
	return &out
}
