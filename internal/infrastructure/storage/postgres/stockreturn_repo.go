package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/id"
	"rollstock/internal/domain"
	"rollstock/internal/domain/documents/stockreturn"
)

const (
	returnsTable     = "doc_returns"
	returnLinesTable = "doc_return_lines"
)

// ReturnRepo implements stockreturn.Repository.
type ReturnRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewReturnRepo creates a new return repository.
func NewReturnRepo(txm *TxManager) *ReturnRepo {
	return &ReturnRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ stockreturn.Repository = (*ReturnRepo)(nil)

func (r *ReturnRepo) Create(ctx context.Context, rec *stockreturn.ReturnRecord) error {
	querier := r.txm.GetQuerier(ctx)

	sql, args, err := r.builder.Insert(returnsTable).
		Columns("id", "number", "date", "comment", "created_at", "issue_id", "reversed", "reversed_at").
		Values(rec.ID, rec.Number, rec.Date, rec.Comment, rec.CreatedAt, rec.IssueID, rec.Reversed, rec.ReversedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("return", "number", rec.Number)
		}
		return fmt.Errorf("insert return: %w", err)
	}

	q := r.builder.Insert(returnLinesTable).
		Columns("line_id", "document_id", "line_no", "batch_id", "quantity")
	for _, line := range rec.Lines {
		q = q.Values(line.LineID, rec.ID, line.LineNo, line.BatchID, line.Quantity)
	}
	sql, args, err = q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert return lines: %w", err)
	}
	return nil
}

func (r *ReturnRepo) Get(ctx context.Context, recID id.ID) (*stockreturn.ReturnRecord, error) {
	sql, args, err := r.builder.
		Select("id", "number", "date", "comment", "created_at", "issue_id", "reversed", "reversed_at").
		From(returnsTable).
		Where(squirrel.Eq{"id": recID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec stockreturn.ReturnRecord
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rec, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("return", recID.String())
		}
		return nil, fmt.Errorf("select return: %w", err)
	}

	lines, err := r.getLines(ctx, recID)
	if err != nil {
		return nil, err
	}
	rec.Lines = lines
	return &rec, nil
}

func (r *ReturnRepo) ListByIssue(ctx context.Context, issueID id.ID) ([]*stockreturn.ReturnRecord, error) {
	sql, args, err := r.builder.
		Select("id", "number", "date", "comment", "created_at", "issue_id", "reversed", "reversed_at").
		From(returnsTable).
		Where(squirrel.Eq{"issue_id": issueID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var recs []*stockreturn.ReturnRecord
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &recs, sql, args...); err != nil {
		return nil, fmt.Errorf("select returns: %w", err)
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

func (r *ReturnRepo) MarkReversed(ctx context.Context, recID id.ID, at time.Time) error {
	sql, args, err := r.builder.Update(returnsTable).
		Set("reversed", true).
		Set("reversed_at", at).
		Where(squirrel.Eq{"id": recID}).
		Where(squirrel.Eq{"reversed": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark reversed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("return is already reversed or missing").
			WithDetail("return_id", recID.String())
	}
	return nil
}

func (r *ReturnRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*stockreturn.ReturnRecord], error) {
	result := domain.ListResult[*stockreturn.ReturnRecord]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	where := squirrel.And{}
	if filter.Search != "" {
		where = append(where, squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(returnsTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count returns: %w", err)
	}

	q := r.builder.
		Select("id", "number", "date", "comment", "created_at", "issue_id", "reversed", "reversed_at").
		From(returnsTable).
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
		return result, fmt.Errorf("select returns: %w", err)
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

func (r *ReturnRepo) getLines(ctx context.Context, recID id.ID) ([]stockreturn.Line, error) {
	sql, args, err := r.builder.
		Select("line_id", "line_no", "batch_id", "quantity").
		From(returnLinesTable).
		Where(squirrel.Eq{"document_id": recID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []stockreturn.Line
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get return lines: %w", err)
	}
	return lines, nil
}
