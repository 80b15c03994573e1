package issue_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/tx"
	"rollstock/internal/core/types"
	"rollstock/internal/domain/documents/issue"
	"rollstock/internal/domain/ledger/batch"
	"rollstock/internal/infrastructure/storage/memory"
)

type fixture struct {
	batches *batch.Service
	issues  *issue.Service
}

func newFixture() *fixture {
	batches := batch.NewService(memory.NewBatchRepository(), memory.NewMovementRepository(), tx.Passthrough{})
	return &fixture{
		batches: batches,
		issues:  issue.NewService(memory.NewIssueRepository(), batches, memory.NewNumerator(), memory.NewAuditLog()),
	}
}

func (f *fixture) seedBatch(t *testing.T, code, qty string) batch.CreateSpec {
	t.Helper()
	spec := batch.CreateSpec{
		Code:     code,
		ItemCode: "BOPP-20",
		UOM:      "KG",
		Quantity: types.MustParseQuantity(qty),
	}
	return spec
}

func (f *fixture) mustCreateBatch(t *testing.T, code, qty string) types.Quantity {
	t.Helper()
	_, err := f.batches.CreateBatch(context.Background(),
		batch.Recorder{Type: "GoodsReceipt"}, f.seedBatch(t, code, qty))
	require.NoError(t, err)
	return types.MustParseQuantity(qty)
}

func TestIssueExplicit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.batches.CreateBatch(ctx, batch.Recorder{Type: "GoodsReceipt"}, f.seedBatch(t, "B1", "500"))
	require.NoError(t, err)

	rec, err := f.issues.IssueExplicit(ctx, "WO-PRINT-17", []issue.LineRequest{
		{BatchID: b.ID, Quantity: types.MustParseQuantity("300")},
	})
	require.NoError(t, err)
	assert.Contains(t, rec.Number, "ISS-")
	require.Len(t, rec.Lines, 1)
	assert.Equal(t, b.ID, rec.Lines[0].BatchID)
	assert.Equal(t, "BOPP-20", rec.Lines[0].ItemCode)
	assert.Equal(t, types.MustParseQuantity("300"), rec.Lines[0].Quantity)

	got, err := f.batches.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("200"), got.RemainingQuantity)
}

func TestIssueExplicit_InsufficientLeavesStockUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.batches.CreateBatch(ctx, batch.Recorder{Type: "GoodsReceipt"}, f.seedBatch(t, "B1", "500"))
	require.NoError(t, err)

	_, err = f.issues.IssueExplicit(ctx, "WO-PRINT-17", []issue.LineRequest{
		{BatchID: b.ID, Quantity: types.MustParseQuantity("600")},
	})
	require.True(t, apperror.IsInsufficientStock(err))

	got, err := f.batches.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("500"), got.RemainingQuantity)
}

func TestIssueExplicit_MultiLineAllOrNothing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b1, err := f.batches.CreateBatch(ctx, batch.Recorder{Type: "GoodsReceipt"}, f.seedBatch(t, "B1", "500"))
	require.NoError(t, err)
	b2, err := f.batches.CreateBatch(ctx, batch.Recorder{Type: "GoodsReceipt"}, f.seedBatch(t, "B2", "50"))
	require.NoError(t, err)

	_, err = f.issues.IssueExplicit(ctx, "WO-PRINT-17", []issue.LineRequest{
		{BatchID: b1.ID, Quantity: types.MustParseQuantity("100")},
		{BatchID: b2.ID, Quantity: types.MustParseQuantity("60")},
	})
	require.True(t, apperror.IsInsufficientStock(err))

	got1, err := f.batches.GetByID(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("500"), got1.RemainingQuantity)
	got2, err := f.batches.GetByID(ctx, b2.ID)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("50"), got2.RemainingQuantity)
}

func TestIssueAuto_FIFO(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.mustCreateBatch(t, "B1", "500")
	f.mustCreateBatch(t, "B2", "500")

	// 600 spans the oldest batch fully and dips into the next.
	rec, err := f.issues.IssueAuto(ctx, "WO-PRINT-17", "BOPP-20", types.MustParseQuantity("600"), issue.PolicyFIFO)
	require.NoError(t, err)
	require.Len(t, rec.Lines, 2)
	assert.Equal(t, types.MustParseQuantity("500"), rec.Lines[0].Quantity)
	assert.Equal(t, types.MustParseQuantity("100"), rec.Lines[1].Quantity)
	assert.Equal(t, issue.PolicyFIFO, rec.Policy)

	total, err := f.batches.Availability(ctx, "BOPP-20")
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("400"), total)
}

func TestIssueAuto_ExactFit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.mustCreateBatch(t, "B1", "500")

	rec, err := f.issues.IssueAuto(ctx, "WO-PRINT-17", "BOPP-20", types.MustParseQuantity("500"), issue.PolicyFIFO)
	require.NoError(t, err)
	require.Len(t, rec.Lines, 1)

	total, err := f.batches.Availability(ctx, "BOPP-20")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestIssueAuto_ShortItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.mustCreateBatch(t, "B1", "300")
	f.mustCreateBatch(t, "B2", "100")

	_, err := f.issues.IssueAuto(ctx, "WO-PRINT-17", "BOPP-20", types.MustParseQuantity("600"), issue.PolicyFIFO)
	require.True(t, apperror.IsInsufficientStock(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "BOPP-20", appErr.Details["item_code"])

	// Nothing was consumed.
	total, err := f.batches.Availability(ctx, "BOPP-20")
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("400"), total)
}

func TestIssueAuto_UnknownPolicy(t *testing.T) {
	f := newFixture()

	_, err := f.issues.IssueAuto(context.Background(), "WO-PRINT-17", "BOPP-20",
		types.MustParseQuantity("10"), issue.SelectionPolicy("LIFO"))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestIssueExplicit_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.issues.IssueExplicit(ctx, "", []issue.LineRequest{})
	require.Error(t, err)

	_, err = f.issues.IssueExplicit(ctx, "WO-1", nil)
	require.Error(t, err)
}

func TestGetByID_RoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.batches.CreateBatch(ctx, batch.Recorder{Type: "GoodsReceipt"}, f.seedBatch(t, "B1", "500"))
	require.NoError(t, err)

	rec, err := f.issues.IssueExplicit(ctx, "WO-PRINT-17", []issue.LineRequest{
		{BatchID: b.ID, Quantity: types.MustParseQuantity("100")},
	})
	require.NoError(t, err)

	got, err := f.issues.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Number, got.Number)
	assert.Equal(t, "WO-PRINT-17", got.ConsumerRef)
	require.Len(t, got.Lines, 1)
}
