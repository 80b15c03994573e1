package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/id"
	"rollstock/internal/domain"
	"rollstock/internal/domain/catalogs/material"
)

const materialsTable = "cat_materials"

var materialColumns = []string{
	"id", "version", "code", "name", "deletion_mark", "created_at", "updated_at",
	"type", "uom", "width_mm", "gsm", "micron", "hsn_code", "default_rate", "description",
}

// MaterialRepo implements material.Repository.
type MaterialRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewMaterialRepo creates a new material catalog repository.
func NewMaterialRepo(txm *TxManager) *MaterialRepo {
	return &MaterialRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ material.Repository = (*MaterialRepo)(nil)

func (r *MaterialRepo) Create(ctx context.Context, m *material.Material) error {
	sql, args, err := r.builder.Insert(materialsTable).
		Columns(materialColumns...).
		Values(
			m.ID, m.Version, m.Code, m.Name, m.DeletionMark, m.CreatedAt, m.UpdatedAt,
			m.Type, m.UOM, m.WidthMM, m.GSM, m.Micron, m.HSNCode, m.DefaultRate, m.Description,
		).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("material", "code", m.Code)
		}
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

func (r *MaterialRepo) Update(ctx context.Context, m *material.Material) error {
	sql, args, err := r.builder.Update(materialsTable).
		Set("code", m.Code).
		Set("name", m.Name).
		Set("deletion_mark", m.DeletionMark).
		Set("updated_at", m.UpdatedAt).
		Set("version", m.Version).
		Set("type", m.Type).
		Set("uom", m.UOM).
		Set("width_mm", m.WidthMM).
		Set("gsm", m.GSM).
		Set("micron", m.Micron).
		Set("hsn_code", m.HSNCode).
		Set("default_rate", m.DefaultRate).
		Set("description", m.Description).
		Where(squirrel.Eq{"id": m.ID}).
		Where(squirrel.Eq{"version": m.Version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("material", "code", m.Code)
		}
		return fmt.Errorf("update material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("material was modified concurrently").
			WithDetail("material_id", m.ID.String())
	}
	return nil
}

func (r *MaterialRepo) Get(ctx context.Context, materialID id.ID) (*material.Material, error) {
	return r.getOne(ctx, squirrel.Eq{"id": materialID}, materialID.String())
}

func (r *MaterialRepo) GetByCode(ctx context.Context, code string) (*material.Material, error) {
	return r.getOne(ctx, squirrel.Eq{"code": code}, code)
}

func (r *MaterialRepo) getOne(ctx context.Context, where squirrel.Eq, ref string) (*material.Material, error) {
	sql, args, err := r.builder.Select(materialColumns...).
		From(materialsTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var m material.Material
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &m, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("material", ref)
		}
		return nil, fmt.Errorf("select material: %w", err)
	}
	return &m, nil
}

func (r *MaterialRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*material.Material], error) {
	result := domain.ListResult[*material.Material]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	where := squirrel.And{}
	if !filter.IncludeDeleted {
		where = append(where, squirrel.Eq{"deletion_mark": false})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"name": pattern},
		})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(materialsTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count materials: %w", err)
	}

	q := r.builder.Select(materialColumns...).
		From(materialsTable).
		Where(where).
		OrderBy(orderClause(filter.OrderBy))
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select materials: %w", err)
	}
	return result, nil
}
