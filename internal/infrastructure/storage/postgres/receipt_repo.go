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
	"rollstock/internal/domain/documents/receipt"
)

const (
	receiptsTable     = "doc_goods_receipts"
	receiptLinesTable = "doc_goods_receipt_lines"
)

// ReceiptRepo implements receipt.Repository. Documents are applied once,
// so Create is the only write path.
type ReceiptRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewReceiptRepo creates a new goods receipt repository.
func NewReceiptRepo(txm *TxManager) *ReceiptRepo {
	return &ReceiptRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ receipt.Repository = (*ReceiptRepo)(nil)

func (r *ReceiptRepo) Create(ctx context.Context, doc *receipt.GoodsReceipt) error {
	querier := r.txm.GetQuerier(ctx)

	sql, args, err := r.builder.Insert(receiptsTable).
		Columns("id", "number", "date", "comment", "created_at", "supplier_ref", "supplier_doc_number").
		Values(doc.ID, doc.Number, doc.Date, doc.Comment, doc.CreatedAt, doc.SupplierRef, doc.SupplierDocNumber).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("goods receipt", "number", doc.Number)
		}
		return fmt.Errorf("insert receipt: %w", err)
	}

	q := r.builder.Insert(receiptLinesTable).Columns(
		"line_id", "document_id", "line_no", "item_code", "uom",
		"ordered_quantity", "received_quantity", "unit_count", "unit_rate",
		"attributes", "batch_ids",
	)
	for _, line := range doc.Lines {
		q = q.Values(
			line.LineID, doc.ID, line.LineNo, line.ItemCode, line.UOM,
			line.OrderedQuantity, line.ReceivedQuantity, line.UnitCount, line.UnitRate,
			line.Attributes, line.BatchIDs,
		)
	}
	sql, args, err = q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert receipt lines: %w", err)
	}
	return nil
}

func (r *ReceiptRepo) Get(ctx context.Context, docID id.ID) (*receipt.GoodsReceipt, error) {
	sql, args, err := r.builder.
		Select("id", "number", "date", "comment", "created_at", "supplier_ref", "supplier_doc_number").
		From(receiptsTable).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc receipt.GoodsReceipt
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &doc, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("goods receipt", docID.String())
		}
		return nil, fmt.Errorf("select receipt: %w", err)
	}

	lines, err := r.getLines(ctx, docID)
	if err != nil {
		return nil, err
	}
	doc.Lines = lines
	return &doc, nil
}

func (r *ReceiptRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*receipt.GoodsReceipt], error) {
	result := domain.ListResult[*receipt.GoodsReceipt]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	where := squirrel.And{}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"supplier_ref": pattern},
		})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").From(receiptsTable).Where(where).ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count receipts: %w", err)
	}

	q := r.builder.
		Select("id", "number", "date", "comment", "created_at", "supplier_ref", "supplier_doc_number").
		From(receiptsTable).
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
		return result, fmt.Errorf("select receipts: %w", err)
	}

	for _, doc := range result.Items {
		lines, err := r.getLines(ctx, doc.ID)
		if err != nil {
			return result, err
		}
		doc.Lines = lines
	}
	return result, nil
}

func (r *ReceiptRepo) getLines(ctx context.Context, docID id.ID) ([]receipt.Line, error) {
	sql, args, err := r.builder.Select(
		"line_id", "line_no", "item_code", "uom",
		"ordered_quantity", "received_quantity", "unit_count", "unit_rate",
		"attributes", "batch_ids",
	).
		From(receiptLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []receipt.Line
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get receipt lines: %w", err)
	}
	return lines, nil
}
