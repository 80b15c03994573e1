package slitting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/id"
	"rollstock/internal/core/tx"
	"rollstock/internal/core/types"
	"rollstock/internal/domain/documents/slitting"
	"rollstock/internal/domain/ledger/batch"
	"rollstock/internal/infrastructure/storage/memory"
)

type fixture struct {
	batches   *batch.Service
	slittings *slitting.Service
}

func newFixture() *fixture {
	batches := batch.NewService(memory.NewBatchRepository(), memory.NewMovementRepository(), tx.Passthrough{})
	return &fixture{
		batches:   batches,
		slittings: slitting.NewService(memory.NewSlittingRepository(), batches, memory.NewNumerator(), memory.NewAuditLog()),
	}
}

func (f *fixture) parentBatch(t *testing.T, code, qty string) entity.Batch {
	t.Helper()
	b, err := f.batches.CreateBatch(context.Background(), batch.Recorder{Type: "GoodsReceipt"}, batch.CreateSpec{
		Code:       code,
		ItemCode:   "BOPP-20",
		UOM:        "KG",
		Quantity:   types.MustParseQuantity(qty),
		Attributes: entity.Attributes{"width_mm": 1000},
	})
	require.NoError(t, err)
	return b
}

func TestProcess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	parent := f.parentBatch(t, "GRN-2026-00001-1-1", "300")

	rec, err := f.slittings.Process(ctx, slitting.Request{
		InputBatchID: parent.ID,
		Wastage:      types.MustParseQuantity("10"),
		Outputs: []slitting.OutputRequest{
			{Quantity: types.MustParseQuantity("140"), Attributes: entity.Attributes{"width_mm": 450}},
			{Quantity: types.MustParseQuantity("150"), Attributes: entity.Attributes{"width_mm": 500}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, rec.Number, "SLT-")
	assert.Equal(t, types.MustParseQuantity("300"), rec.ConsumedQuantity)
	assert.Equal(t, types.MustParseQuantity("10"), rec.Wastage)
	require.Len(t, rec.Lines, 2)

	// The parent is fully consumed.
	got, err := f.batches.GetByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.True(t, got.RemainingQuantity.IsZero())

	// Children carry lineage and inherit item code and UOM.
	for i, line := range rec.Lines {
		child, err := f.batches.GetByID(ctx, line.BatchID)
		require.NoError(t, err)
		assert.Equal(t, "BOPP-20", child.ItemCode)
		assert.Equal(t, "KG", child.UOM)
		require.NotNil(t, child.ParentBatchID)
		assert.Equal(t, parent.ID, *child.ParentBatchID)
		assert.Equal(t, slitting.ChildBatchCode(parent.Code, i+1), child.Code)
		assert.Equal(t, rec.Number, child.SourceDocumentID)
	}
	assert.Equal(t, types.MustParseQuantity("140"), rec.Lines[0].Quantity)
	assert.Equal(t, types.MustParseQuantity("150"), rec.Lines[1].Quantity)
}

func TestProcess_AfterPartialIssue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	parent := f.parentBatch(t, "B1", "500")

	// Issue 200 out, the cut consumes what is left.
	_, err := f.batches.ApplyDelta(ctx, batch.Recorder{Type: "Issue"}, batch.Delta{
		BatchID:  parent.ID,
		Quantity: types.MustParseQuantity("-200"),
	})
	require.NoError(t, err)

	rec, err := f.slittings.Process(ctx, slitting.Request{
		InputBatchID: parent.ID,
		Wastage:      types.MustParseQuantity("10"),
		Outputs: []slitting.OutputRequest{
			{Quantity: types.MustParseQuantity("140")},
			{Quantity: types.MustParseQuantity("150")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("300"), rec.ConsumedQuantity)
}

func TestProcess_ConservationViolation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	parent := f.parentBatch(t, "B1", "300")

	// 140 + 150 + 5 leaves 5 unaccounted, far past the 0.01 tolerance.
	_, err := f.slittings.Process(ctx, slitting.Request{
		InputBatchID: parent.ID,
		Wastage:      types.MustParseQuantity("5"),
		Outputs: []slitting.OutputRequest{
			{Quantity: types.MustParseQuantity("140")},
			{Quantity: types.MustParseQuantity("150")},
		},
	})
	require.True(t, apperror.IsConservation(err))

	got, err := f.batches.GetByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("300"), got.RemainingQuantity)
}

func TestProcess_ConservationWithinTolerance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	parent := f.parentBatch(t, "B1", "300")

	// Off by exactly 0.01, which the tolerance admits.
	rec, err := f.slittings.Process(ctx, slitting.Request{
		InputBatchID: parent.ID,
		Wastage:      types.MustParseQuantity("9.99"),
		Outputs: []slitting.OutputRequest{
			{Quantity: types.MustParseQuantity("140")},
			{Quantity: types.MustParseQuantity("150")},
		},
	})
	require.NoError(t, err)
	assert.Len(t, rec.Lines, 2)
}

func TestProcess_FullyConsumedParent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	parent := f.parentBatch(t, "B1", "300")

	_, err := f.slittings.Process(ctx, slitting.Request{
		InputBatchID: parent.ID,
		Wastage:      types.MustParseQuantity("10"),
		Outputs: []slitting.OutputRequest{
			{Quantity: types.MustParseQuantity("140")},
			{Quantity: types.MustParseQuantity("150")},
		},
	})
	require.NoError(t, err)

	// The batch is drained; a second cut has nothing to consume.
	_, err = f.slittings.Process(ctx, slitting.Request{
		InputBatchID: parent.ID,
		Outputs: []slitting.OutputRequest{
			{Quantity: types.MustParseQuantity("1")},
		},
	})
	require.True(t, apperror.IsInsufficientStock(err))
}

func TestProcess_UnknownInputBatch(t *testing.T) {
	f := newFixture()

	_, err := f.slittings.Process(context.Background(), slitting.Request{
		InputBatchID: id.New(),
		Outputs: []slitting.OutputRequest{
			{Quantity: types.MustParseQuantity("100")},
		},
	})
	require.True(t, apperror.IsNotFound(err))
}

func TestProcess_OutputOverrides(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	parent := f.parentBatch(t, "B1", "100")

	rec, err := f.slittings.Process(ctx, slitting.Request{
		InputBatchID: parent.ID,
		Outputs: []slitting.OutputRequest{
			{ItemCode: "BOPP-20-SLIT", UOM: "KG", Quantity: types.MustParseQuantity("100")},
		},
	})
	require.NoError(t, err)
	require.Len(t, rec.Lines, 1)
	assert.Equal(t, "BOPP-20-SLIT", rec.Lines[0].ItemCode)

	total, err := f.batches.Availability(ctx, "BOPP-20-SLIT")
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("100"), total)
}

func TestProcess_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	parent := f.parentBatch(t, "B1", "100")

	tests := []struct {
		name string
		req  slitting.Request
	}{
		{"nil input batch", slitting.Request{
			Outputs: []slitting.OutputRequest{{Quantity: types.MustParseQuantity("100")}},
		}},
		{"no outputs", slitting.Request{
			InputBatchID: parent.ID,
		}},
		{"negative wastage", slitting.Request{
			InputBatchID: parent.ID,
			Wastage:      types.MustParseQuantity("-5"),
			Outputs:      []slitting.OutputRequest{{Quantity: types.MustParseQuantity("105")}},
		}},
		{"zero output quantity", slitting.Request{
			InputBatchID: parent.ID,
			Outputs:      []slitting.OutputRequest{{Quantity: types.MustParseQuantity("0")}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.slittings.Process(ctx, tt.req)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestListByInputBatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := f.parentBatch(t, "B1", "100")
	second := f.parentBatch(t, "B2", "100")

	for _, b := range []entity.Batch{first, second} {
		_, err := f.slittings.Process(ctx, slitting.Request{
			InputBatchID: b.ID,
			Outputs: []slitting.OutputRequest{
				{Quantity: types.MustParseQuantity("100")},
			},
		})
		require.NoError(t, err)
	}

	recs, err := f.slittings.ListByInputBatch(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, first.ID, recs[0].InputBatchID)

	none, err := f.slittings.ListByInputBatch(ctx, id.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
