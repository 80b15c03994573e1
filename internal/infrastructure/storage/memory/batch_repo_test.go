package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/core/types"
	"rollstock/internal/domain"
)

func makeBatch(code string, createdAt time.Time, remaining string) entity.Batch {
	qty := types.MustParseQuantity(remaining)
	return entity.Batch{
		ID:                id.New(),
		Code:              code,
		ItemCode:          "BOPP-20",
		UOM:               "KG",
		ReceivedQuantity:  qty,
		RemainingQuantity: qty,
		Version:           1,
		CreatedAt:         createdAt,
		UpdatedAt:         createdAt,
	}
}

func TestBatchRepository_SaveOptimisticLocking(t *testing.T) {
	repo := NewBatchRepository()
	ctx := context.Background()

	b := makeBatch("B1", time.Now().UTC(), "500")
	require.NoError(t, repo.Create(ctx, &b))

	// A save must carry exactly stored version + 1.
	stale := b
	stale.RemainingQuantity = types.MustParseQuantity("400")
	err := repo.Save(ctx, &stale)
	require.True(t, apperror.IsConflict(err))

	current := b
	current.RemainingQuantity = types.MustParseQuantity("400")
	current.Version = 2
	require.NoError(t, repo.Save(ctx, &current))

	got, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Equal(t, types.MustParseQuantity("400"), got.RemainingQuantity)
}

func TestBatchRepository_DuplicateCode(t *testing.T) {
	repo := NewBatchRepository()
	ctx := context.Background()

	b := makeBatch("B1", time.Now().UTC(), "500")
	require.NoError(t, repo.Create(ctx, &b))

	dup := makeBatch("B1", time.Now().UTC(), "100")
	err := repo.Create(ctx, &dup)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestBatchRepository_GetClones(t *testing.T) {
	repo := NewBatchRepository()
	ctx := context.Background()

	b := makeBatch("B1", time.Now().UTC(), "500")
	b.Attributes = entity.Attributes{"width_mm": 1000}
	require.NoError(t, repo.Create(ctx, &b))

	first, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	first.RemainingQuantity = types.MustParseQuantity("1")
	first.Attributes["width_mm"] = 0

	// Mutating a returned copy must not leak into the store.
	second, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("500"), second.RemainingQuantity)
	assert.Equal(t, 1000, second.Attributes["width_mm"])
}

func TestBatchRepository_ListAvailableFIFO(t *testing.T) {
	repo := NewBatchRepository()
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	newest := makeBatch("B3", base.Add(2*time.Hour), "100")
	oldest := makeBatch("B1", base, "100")
	middle := makeBatch("B2", base.Add(time.Hour), "100")
	empty := makeBatch("B0", base.Add(-time.Hour), "100")
	empty.RemainingQuantity = 0

	for _, b := range []entity.Batch{newest, oldest, middle, empty} {
		cp := b
		require.NoError(t, repo.Create(ctx, &cp))
	}

	out, err := repo.ListAvailable(ctx, "BOPP-20")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "B1", out[0].Code)
	assert.Equal(t, "B2", out[1].Code)
	assert.Equal(t, "B3", out[2].Code)
}

func TestBatchRepository_ListAvailableCodeTiebreak(t *testing.T) {
	repo := NewBatchRepository()
	ctx := context.Background()

	// Same timestamp, as for units of one receipt line.
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	for _, code := range []string{"GRN-1-1-2", "GRN-1-1-1", "GRN-1-1-3"} {
		b := makeBatch(code, now, "100")
		require.NoError(t, repo.Create(ctx, &b))
	}

	out, err := repo.ListAvailable(ctx, "BOPP-20")
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "GRN-1-1-1", out[0].Code)
	assert.Equal(t, "GRN-1-1-2", out[1].Code)
	assert.Equal(t, "GRN-1-1-3", out[2].Code)
}

func TestBatchRepository_ListPagination(t *testing.T) {
	repo := NewBatchRepository()
	ctx := context.Background()

	base := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		b := makeBatch("B"+string(rune('1'+i)), base.Add(time.Duration(i)*time.Minute), "100")
		require.NoError(t, repo.Create(ctx, &b))
	}

	filter := domain.ListFilter{Limit: 2, Offset: 2, OrderBy: "created_at"}
	result, err := repo.List(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.TotalCount)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "B3", result.Items[0].Code)
	assert.Equal(t, "B4", result.Items[1].Code)
}

func TestMovementRepository_ListByBatch(t *testing.T) {
	repo := NewMovementRepository()
	ctx := context.Background()

	batchID := id.New()
	otherID := id.New()
	recorder := id.New()

	moves := []entity.BatchMovement{
		entity.NewBatchMovement(batchID, recorder, "GoodsReceipt", types.MustParseQuantity("500")),
		entity.NewBatchMovement(otherID, recorder, "GoodsReceipt", types.MustParseQuantity("100")),
		entity.NewBatchMovement(batchID, recorder, "Issue", types.MustParseQuantity("-300")),
	}
	require.NoError(t, repo.CreateMovements(ctx, moves))

	out, err := repo.ListByBatch(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, entity.RecordTypeReceipt, out[0].RecordType)
	assert.Equal(t, types.MustParseQuantity("500"), out[0].SignedQuantity())
	assert.Equal(t, entity.RecordTypeExpense, out[1].RecordType)
	assert.Equal(t, types.MustParseQuantity("-300"), out[1].SignedQuantity())

	byRecorder, err := repo.ListByRecorder(ctx, recorder)
	require.NoError(t, err)
	assert.Len(t, byRecorder, 3)
}
