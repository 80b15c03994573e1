package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/domain"
	"rollstock/internal/domain/ledger/batch"
)

const (
	batchesTable   = "batches"
	movementsTable = "batch_movements"
)

var batchColumns = []string{
	"id", "code", "item_code", "uom", "source_document_id", "parent_batch_id",
	"received_quantity", "remaining_quantity", "attributes",
	"version", "created_at", "updated_at",
}

// BatchRepo implements batch.Repository on PostgreSQL.
type BatchRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewBatchRepo creates a new batch repository.
func NewBatchRepo(txm *TxManager) *BatchRepo {
	return &BatchRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ batch.Repository = (*BatchRepo)(nil)

func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	sql, args, err := r.builder.Insert(batchesTable).
		Columns(batchColumns...).
		Values(
			b.ID, b.Code, b.ItemCode, b.UOM, b.SourceDocumentID, b.ParentBatchID,
			b.ReceivedQuantity, b.RemainingQuantity, b.Attributes,
			b.Version, b.CreatedAt, b.UpdatedAt,
		).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("batch", "code", b.Code)
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *BatchRepo) Get(ctx context.Context, batchID id.ID) (*entity.Batch, error) {
	sql, args, err := r.builder.Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Eq{"id": batchID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b entity.Batch
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &b, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("batch", batchID.String())
		}
		return nil, fmt.Errorf("select batch: %w", err)
	}
	return &b, nil
}

// Save persists the quantity fields with optimistic locking: the update
// matches the pre-Touch version and fails with CONFLICT when another
// writer got there first.
func (r *BatchRepo) Save(ctx context.Context, b *entity.Batch) error {
	sql, args, err := r.builder.Update(batchesTable).
		Set("remaining_quantity", b.RemainingQuantity).
		Set("version", b.Version).
		Set("updated_at", b.UpdatedAt).
		Where(squirrel.Eq{"id": b.ID}).
		Where(squirrel.Eq{"version": b.Version - 1}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewConflict("batch was modified concurrently").
			WithDetail("batch_id", b.ID.String())
	}
	return nil
}

func (r *BatchRepo) ListByItemCode(ctx context.Context, itemCode string, filter domain.ListFilter) ([]entity.Batch, error) {
	q := r.builder.Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Eq{"item_code": itemCode}).
		OrderBy("created_at", "code")

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"code": "%" + filter.Search + "%"})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []entity.Batch
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}
	return batches, nil
}

func (r *BatchRepo) ListAvailable(ctx context.Context, itemCode string) ([]entity.Batch, error) {
	sql, args, err := r.builder.Select(batchColumns...).
		From(batchesTable).
		Where(squirrel.Eq{"item_code": itemCode}).
		Where(squirrel.Gt{"remaining_quantity": 0}).
		OrderBy("created_at", "code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var batches []entity.Batch
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("select available batches: %w", err)
	}
	return batches, nil
}

func (r *BatchRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[entity.Batch], error) {
	var result domain.ListResult[entity.Batch]

	where := squirrel.And{}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"item_code": pattern},
		})
	}

	countSQL, countArgs, err := r.builder.Select("COUNT(*)").
		From(batchesTable).
		Where(where).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count batches: %w", err)
	}

	q := r.builder.Select(batchColumns...).
		From(batchesTable).
		Where(where).
		OrderBy(orderClause(filter.OrderBy))
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select batches: %w", err)
	}

	result.Limit = filter.Limit
	result.Offset = filter.Offset
	return result, nil
}

// MovementRepo implements batch.MovementRepository on PostgreSQL.
type MovementRepo struct {
	txm     *TxManager
	builder squirrel.StatementBuilderType
}

// NewMovementRepo creates a new movement journal repository.
func NewMovementRepo(txm *TxManager) *MovementRepo {
	return &MovementRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ batch.MovementRepository = (*MovementRepo)(nil)

var movementColumns = []string{
	"line_id", "batch_id", "recorder_id", "recorder_type",
	"record_type", "quantity", "created_at",
}

func (r *MovementRepo) CreateMovements(ctx context.Context, movements []entity.BatchMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// COPY when inside a transaction.
	if tx := r.txm.GetTx(ctx); tx != nil {
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.BatchID, m.RecorderID, m.RecorderType,
				m.RecordType, m.Quantity, m.CreatedAt,
			})
		}
		_, err := tx.CopyFrom(ctx, pgx.Identifier{movementsTable}, movementColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(movementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(
			m.LineID, m.BatchID, m.RecorderID, m.RecorderType,
			m.RecordType, m.Quantity, m.CreatedAt,
		)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

func (r *MovementRepo) ListByBatch(ctx context.Context, batchID id.ID) ([]entity.BatchMovement, error) {
	return r.list(ctx, squirrel.Eq{"batch_id": batchID})
}

func (r *MovementRepo) ListByRecorder(ctx context.Context, recorderID id.ID) ([]entity.BatchMovement, error) {
	return r.list(ctx, squirrel.Eq{"recorder_id": recorderID})
}

func (r *MovementRepo) list(ctx context.Context, where squirrel.Eq) ([]entity.BatchMovement, error) {
	sql, args, err := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(where).
		OrderBy("created_at", "line_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.BatchMovement
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}
