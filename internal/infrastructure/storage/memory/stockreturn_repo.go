package memory

import (
	"context"
	"time"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/id"
	"rollstock/internal/domain"
	"rollstock/internal/domain/documents/stockreturn"
)

// ReturnRepository is a map-backed stockreturn.Repository.
type ReturnRepository struct {
	base
	recs map[id.ID]*stockreturn.ReturnRecord
}

// NewReturnRepository creates an empty return repository.
func NewReturnRepository() *ReturnRepository {
	return &ReturnRepository{recs: make(map[id.ID]*stockreturn.ReturnRecord)}
}

var _ stockreturn.Repository = (*ReturnRepository)(nil)

func (r *ReturnRepository) Create(ctx context.Context, rec *stockreturn.ReturnRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recs[rec.ID]; ok {
		return apperror.NewDuplicate("return", "id", rec.ID.String())
	}
	r.recs[rec.ID] = cloneReturn(rec)
	return nil
}

func (r *ReturnRepository) Get(ctx context.Context, recID id.ID) (*stockreturn.ReturnRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.recs[recID]
	if !ok {
		return nil, apperror.NewNotFound("return", recID.String())
	}
	return cloneReturn(rec), nil
}

func (r *ReturnRepository) ListByIssue(ctx context.Context, issueID id.ID) ([]*stockreturn.ReturnRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*stockreturn.ReturnRecord
	for _, rec := range r.recs {
		if rec.IssueID == issueID {
			out = append(out, cloneReturn(rec))
		}
	}
	sortByCreatedAt(out, "created_at", func(rec *stockreturn.ReturnRecord) time.Time { return rec.CreatedAt })
	return out, nil
}

func (r *ReturnRepository) MarkReversed(ctx context.Context, recID id.ID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.recs[recID]
	if !ok {
		return apperror.NewNotFound("return", recID.String())
	}
	if rec.Reversed {
		return apperror.NewConflict("return is already reversed").
			WithDetail("return_id", recID.String())
	}
	rec.Reversed = true
	rec.ReversedAt = &at
	return nil
}

func (r *ReturnRepository) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*stockreturn.ReturnRecord], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*stockreturn.ReturnRecord
	for _, rec := range r.recs {
		if !matchSearch(filter.Search, rec.Number) {
			continue
		}
		out = append(out, cloneReturn(rec))
	}
	sortByCreatedAt(out, orderNewestFirst(filter.OrderBy), func(rec *stockreturn.ReturnRecord) time.Time { return rec.CreatedAt })
	total := int64(len(out))
	return domain.ListResult[*stockreturn.ReturnRecord]{
		Items:      paginate(out, filter.Limit, filter.Offset),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func cloneReturn(rec *stockreturn.ReturnRecord) *stockreturn.ReturnRecord {
	out := *rec
	out.Lines = append([]stockreturn.Line(nil), rec.Lines...)
	if rec.ReversedAt != nil {
		at := *rec.ReversedAt
		out.ReversedAt = &at
	}
	return &out
}
