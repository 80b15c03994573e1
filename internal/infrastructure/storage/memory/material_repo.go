package memory

import (
	"context"
	"time"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/id"
	"rollstock/internal/domain"
	"rollstock/internal/domain/catalogs/material"
)

// MaterialRepository is a map-backed material.Repository.
type MaterialRepository struct {
	base
	items  map[id.ID]*material.Material
	byCode map[string]id.ID
}

// NewMaterialRepository creates an empty material repository.
func NewMaterialRepository() *MaterialRepository {
	return &MaterialRepository{
		items:  make(map[id.ID]*material.Material),
		byCode: make(map[string]id.ID),
	}
}

var _ material.Repository = (*MaterialRepository)(nil)

func (r *MaterialRepository) Create(ctx context.Context, m *material.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[m.ID]; ok {
		return apperror.NewDuplicate("material", "id", m.ID.String())
	}
	if _, ok := r.byCode[m.Code]; ok {
		return apperror.NewDuplicate("material", "code", m.Code)
	}

	stored := *m
	r.items[m.ID] = &stored
	r.byCode[m.Code] = m.ID
	return nil
}

func (r *MaterialRepository) Update(ctx context.Context, m *material.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.items[m.ID]
	if !ok {
		return apperror.NewNotFound("material", m.ID.String())
	}
	if prev.Code != m.Code {
		if _, taken := r.byCode[m.Code]; taken {
			return apperror.NewDuplicate("material", "code", m.Code)
		}
		delete(r.byCode, prev.Code)
		r.byCode[m.Code] = m.ID
	}

	stored := *m
	r.items[m.ID] = &stored
	return nil
}

func (r *MaterialRepository) Get(ctx context.Context, materialID id.ID) (*material.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.items[materialID]
	if !ok {
		return nil, apperror.NewNotFound("material", materialID.String())
	}
	out := *m
	return &out, nil
}

func (r *MaterialRepository) GetByCode(ctx context.Context, code string) (*material.Material, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	materialID, ok := r.byCode[code]
	if !ok {
		return nil, apperror.NewNotFound("material", code)
	}
	out := *r.items[materialID]
	return &out, nil
}

func (r *MaterialRepository) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*material.Material], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*material.Material
	for _, m := range r.items {
		if m.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		if !matchSearch(filter.Search, m.Code, m.Name) {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	sortByCreatedAt(out, orderNewestFirst(filter.OrderBy), func(m *material.Material) time.Time { return m.CreatedAt })
	total := int64(len(out))
	return domain.ListResult[*material.Material]{
		Items:      paginate(out, filter.Limit, filter.Offset),
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}
