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
	"rollstock/internal/domain/documents/slitting"
)

const (
	slittingsTable     = "doc_slittings"
	slittingLinesTable = "doc_slitting_lines"
)

// SlittingRepo implements slitting.Repository.
type SlittingRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewSlittingRepo creates a new slitting repository.
func NewSlittingRepo(txm *TxManager) *SlittingRepo {
	return &SlittingRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ slitting.Repository = (*SlittingRepo)(nil)

func (r *SlittingRepo) Create(ctx context.Context, rec *slitting.SlittingRecord) error {
	querier := r.txm.GetQuerier(ctx)

	sql, args, err := r.builder.Insert(slittingsTable).
		Columns("id", "number", "date", "comment", "created_at",
			"input_batch_id", "consumed_quantity", "wastage").
		Values(rec.ID, rec.Number, rec.Date, rec.Comment, rec.CreatedAt,
			rec.InputBatchID, rec.ConsumedQuantity, rec.Wastage).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("slitting", "number", rec.Number)
		}
		return fmt.Errorf("insert slitting: %w", err)
	}

	q := r.builder.Insert(slittingLinesTable).
		Columns("line_id", "document_id", "line_no", "item_code", "uom", "quantity", "batch_id", "attributes")
	for _, line := range rec.Lines {
		q = q.Values(line.LineID, rec.ID, line.LineNo, line.ItemCode, line.UOM, line.Quantity, line.BatchID, line.Attributes)
	}
	sql, args, err = q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert slitting lines: %w", err)
	}
	return nil
}

func (r *SlittingRepo) Get(ctx context.Context, recID id.ID) (*slitting.SlittingRecord, error) {
	sql, args, err := r.builder.
		Select("id", "number", "date", "comment", "created_at",
			"input_batch_id", "consumed_quantity", "wastage").
		From(slittingsTable).
		Where(squirrel.Eq{"id": recID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec slitting.SlittingRecord
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rec, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("slitting", recID.String())
		}
		return nil, fmt.Errorf("select slitting: %w", err)
	}

	lines, err := r.getLines(ctx, recID)
	if err != nil {
		return nil, err
	}
	rec.Lines = lines
	return &rec, nil
}

func (r *SlittingRepo) ListByInputBatch(ctx context.Context, batchID id.ID) ([]*slitting.SlittingRecord, error) {
	sql, args, err := r.builder.
		Select("id", "number", "date", "comment", "created_at",
			"input_batch_id", "consumed_quantity", "wastage").
		From(slittingsTable).
		Where(squirrel.Eq{"input_batch_id": batchID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var recs []*slitting.SlittingRecord
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &recs, sql, args...); err != nil {
		return nil, fmt.Errorf("select slittings: %w", err)
	}
	for _, rec := range recs {
		lines, err := r.getLines(ctx, rec.ID)
		if err != nil {
			return nil, err
		}
		rec.Lines = lines
	}
	return recs, nil
}

func (r *SlittingRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*slitting.SlittingRecord], error) {
	result := domain.ListResult[*slitting.SlittingRecord]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	where := squirrel.And{}
	if filter.Search != "" {
		where = append(where, squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(slittingsTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count slittings: %w", err)
	}

	q := r.builder.
		Select("id", "number", "date", "comment", "created_at",
			"input_batch_id", "consumed_quantity", "wastage").
		From(slittingsTable).
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
		return result, fmt.Errorf("select slittings: %w", err)
	}

	for _, rec := range result.Items {
		lines, err := r.getLines(ctx, rec.ID)
		if err != nil {
			return result, err
		}
		rec.Lines = lines
	}
	return result, nil
}

func (r *SlittingRepo) getLines(ctx context.Context, recID id.ID) ([]slitting.Line, error) {
	sql, args, err := r.builder.
		Select("line_id", "line_no", "item_code", "uom", "quantity", "batch_id", "attributes").
		From(slittingLinesTable).
		Where(squirrel.Eq{"document_id": recID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []slitting.Line
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get slitting lines: %w", err)
	}
	return lines, nil
}
