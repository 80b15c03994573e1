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
	"rollstock/internal/domain/documents/issue"
)

const (
	issuesTable     = "doc_issues"
	issueLinesTable = "doc_issue_lines"
)

// IssueRepo implements issue.Repository.
type IssueRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewIssueRepo creates a new issue repository.
func NewIssueRepo(txm *TxManager) *IssueRepo {
	return &IssueRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ issue.Repository = (*IssueRepo)(nil)

func (r *IssueRepo) Create(ctx context.Context, rec *issue.IssueRecord) error {
	querier := r.txm.GetQuerier(ctx)

	sql, args, err := r.builder.Insert(issuesTable).
		Columns("id", "number", "date", "comment", "created_at", "consumer_ref", "policy").
		Values(rec.ID, rec.Number, rec.Date, rec.Comment, rec.CreatedAt, rec.ConsumerRef, rec.Policy).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("issue", "number", rec.Number)
		}
		return fmt.Errorf("insert issue: %w", err)
	}

	q := r.builder.Insert(issueLinesTable).
		Columns("line_id", "document_id", "line_no", "batch_id", "item_code", "quantity")
	for _, line := range rec.Lines {
		q = q.Values(line.LineID, rec.ID, line.LineNo, line.BatchID, line.ItemCode, line.Quantity)
	}
	sql, args, err = q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert issue lines: %w", err)
	}
	return nil
}

func (r *IssueRepo) Get(ctx context.Context, recID id.ID) (*issue.IssueRecord, error) {
	sql, args, err := r.builder.
		Select("id", "number", "date", "comment", "created_at", "consumer_ref", "policy").
		From(issuesTable).
		Where(squirrel.Eq{"id": recID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rec issue.IssueRecord
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &rec, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("issue", recID.String())
		}
		return nil, fmt.Errorf("select issue: %w", err)
	}

	lines, err := r.getLines(ctx, recID)
	if err != nil {
		return nil, err
	}
	rec.Lines = lines
	return &rec, nil
}

func (r *IssueRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*issue.IssueRecord], error) {
	result := domain.ListResult[*issue.IssueRecord]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	where := squirrel.And{}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"consumer_ref": pattern},
		})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(issuesTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count issues: %w", err)
	}

	q := r.builder.
		Select("id", "number", "date", "comment", "created_at", "consumer_ref", "policy").
		From(issuesTable).
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
		return result, fmt.Errorf("select issues: %w", err)
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

func (r *IssueRepo) getLines(ctx context.Context, recID id.ID) ([]issue.Line, error) {
	sql, args, err := r.builder.
		Select("line_id", "line_no", "batch_id", "item_code", "quantity").
		From(issueLinesTable).
		Where(squirrel.Eq{"document_id": recID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []issue.Line
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get issue lines: %w", err)
	}
	return lines, nil
}
