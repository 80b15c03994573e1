package memory

import (
	"context"
	"time"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/id"
	"rollstock/internal/domain"
	"rollstock/internal/domain/documents/issue"
)

// IssueRepository is a map-backed issue.Repository.
type IssueRepository struct {
	base
	recs map[id.ID]*issue.IssueRecord
}

// NewIssueRepository creates an empty issue repository.
func NewIssueRepository() *IssueRepository {
	return &IssueRepository{recs: make(map[id.ID]*issue.IssueRecord)}
}

var _ issue.Repository = (*IssueRepository)(nil)

func (r *IssueRepository) Create(ctx context.Context, rec *issue.IssueRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.recs[rec.ID]; ok {
		return apperror.NewDuplicate("issue", "id", rec.ID.String())
	}
	r.recs[rec.ID] = cloneIssue(rec)
	return nil
}

func (r *IssueRepository) Get(ctx context.Context, recID id.ID) (*issue.IssueRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.recs[recID]
	if !ok {
		return nil, apperror.NewNotFound("issue", recID.String())
	}
	return cloneIssue(rec), nil
}

func (r *IssueRepository) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*issue.IssueRecord], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*issue.IssueRecord
	for _, rec := range r.recs {
		if !matchSearch(filter.Search, rec.Number, rec.ConsumerRef) {
			continue
		}
		out = append(out, cloneIssue(rec))
	}
	sortByCreatedAt(out, orderNewestFirst(filter.OrderBy), func(rec *issue.IssueRecord) time.Time { return rec.CreatedAt })
	total := int64(len(out))
	return domain.ListResult[*issue.IssueRecord]{
		Items:      paginate(out, filter.Limit, filter.Offset),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

func cloneIssue(rec *issue.IssueRecord) *issue.IssueRecord {
	out := *rec
	out.Lines = append([]issue.Line(nil), rec.Lines...)
	return &out
}
