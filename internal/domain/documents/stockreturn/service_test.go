package stockreturn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/id"
	"rollstock/internal/core/tx"
	"rollstock/internal/core/types"
	"rollstock/internal/domain/documents/issue"
	"rollstock/internal/domain/documents/stockreturn"
	"rollstock/internal/domain/ledger/batch"
	"rollstock/internal/infrastructure/storage/memory"
)

type fixture struct {
	batches *batch.Service
	issues  *issue.Service
	returns *stockreturn.Service
}

func newFixture() *fixture {
	batches := batch.NewService(memory.NewBatchRepository(), memory.NewMovementRepository(), tx.Passthrough{})
	issueRepo := memory.NewIssueRepository()
	gen := memory.NewNumerator()
	audit := memory.NewAuditLog()
	return &fixture{
		batches: batches,
		issues:  issue.NewService(issueRepo, batches, gen, audit),
		returns: stockreturn.NewService(memory.NewReturnRepository(), issueRepo, batches, gen, audit),
	}
}

// issuedBatch seeds one batch and issues part of it, returning the batch
// id and the issue record.
func (f *fixture) issuedBatch(t *testing.T, received, issued string) (id.ID, *issue.IssueRecord) {
	t.Helper()
	ctx := context.Background()

	b, err := f.batches.CreateBatch(ctx, batch.Recorder{Type: "GoodsReceipt"}, batch.CreateSpec{
		Code:     "B-" + id.New().String()[28:],
		ItemCode: "BOPP-20",
		UOM:      "KG",
		Quantity: types.MustParseQuantity(received),
	})
	require.NoError(t, err)

	rec, err := f.issues.IssueExplicit(ctx, "WO-PRINT-17", []issue.LineRequest{
		{BatchID: b.ID, Quantity: types.MustParseQuantity(issued)},
	})
	require.NoError(t, err)
	return b.ID, rec
}

func TestProcessReturn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	batchID, iss := f.issuedBatch(t, "500", "300")

	rec, err := f.returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: batchID, Quantity: types.MustParseQuantity("100")},
	})
	require.NoError(t, err)
	assert.Contains(t, rec.Number, "RET-")
	assert.Equal(t, iss.ID, rec.IssueID)
	assert.False(t, rec.Reversed)

	got, err := f.batches.GetByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("300"), got.RemainingQuantity)
}

func TestProcessReturn_OverReturn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	batchID, iss := f.issuedBatch(t, "500", "300")

	// More than was issued.
	_, err := f.returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: batchID, Quantity: types.MustParseQuantity("400")},
	})
	require.True(t, apperror.IsOverReturn(err))

	got, err := f.batches.GetByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("200"), got.RemainingQuantity)
}

func TestProcessReturn_CumulativeOverReturn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	batchID, iss := f.issuedBatch(t, "500", "300")

	_, err := f.returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: batchID, Quantity: types.MustParseQuantity("200")},
	})
	require.NoError(t, err)

	// 200 already returned, outstanding is 100.
	_, err = f.returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: batchID, Quantity: types.MustParseQuantity("150")},
	})
	require.True(t, apperror.IsOverReturn(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "100.0000", appErr.Details["outstanding"])

	// Exactly the outstanding amount still goes through.
	_, err = f.returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: batchID, Quantity: types.MustParseQuantity("100")},
	})
	require.NoError(t, err)

	got, err := f.batches.GetByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("500"), got.RemainingQuantity)
}

func TestProcessReturn_UnknownIssue(t *testing.T) {
	f := newFixture()

	_, err := f.returns.ProcessReturn(context.Background(), id.New(), []stockreturn.LineRequest{
		{BatchID: id.New(), Quantity: types.MustParseQuantity("10")},
	})
	require.True(t, apperror.IsNotFound(err))
}

func TestProcessReturn_BatchNotInIssue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, iss := f.issuedBatch(t, "500", "300")
	other, otherIss := f.issuedBatch(t, "100", "50")
	_ = otherIss

	// The batch exists but this issue drew nothing from it.
	_, err := f.returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: other, Quantity: types.MustParseQuantity("10")},
	})
	require.True(t, apperror.IsOverReturn(err))
}

func TestReverseReturn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	batchID, iss := f.issuedBatch(t, "500", "300")

	rec, err := f.returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: batchID, Quantity: types.MustParseQuantity("100")},
	})
	require.NoError(t, err)

	reversed, err := f.returns.ReverseReturn(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, reversed.Reversed)
	require.NotNil(t, reversed.ReversedAt)

	// The credit is undone.
	got, err := f.batches.GetByID(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("200"), got.RemainingQuantity)

	// A reversed return no longer counts against outstanding.
	_, err = f.returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: batchID, Quantity: types.MustParseQuantity("300")},
	})
	require.NoError(t, err)
}

func TestReverseReturn_Twice(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	batchID, iss := f.issuedBatch(t, "500", "300")
	rec, err := f.returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: batchID, Quantity: types.MustParseQuantity("100")},
	})
	require.NoError(t, err)

	_, err = f.returns.ReverseReturn(ctx, rec.ID)
	require.NoError(t, err)

	_, err = f.returns.ReverseReturn(ctx, rec.ID)
	require.True(t, apperror.IsConflict(err))
}

func TestReverseReturn_StockReissuedConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	batchID, iss := f.issuedBatch(t, "500", "500")

	rec, err := f.returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: batchID, Quantity: types.MustParseQuantity("100")},
	})
	require.NoError(t, err)

	// The returned 100 is issued out again; reversing would now drive
	// the batch negative.
	_, err = f.issues.IssueExplicit(ctx, "WO-PRINT-18", []issue.LineRequest{
		{BatchID: batchID, Quantity: types.MustParseQuantity("100")},
	})
	require.NoError(t, err)

	_, err = f.returns.ReverseReturn(ctx, rec.ID)
	require.True(t, apperror.IsConflict(err))

	got, getErr := f.returns.GetByID(ctx, rec.ID)
	require.NoError(t, getErr)
	assert.False(t, got.Reversed)
}

func TestProcessReturn_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	batchID, iss := f.issuedBatch(t, "500", "300")

	tests := []struct {
		name    string
		issueID id.ID
		reqs    []stockreturn.LineRequest
	}{
		{"nil issue", id.Nil(), []stockreturn.LineRequest{{BatchID: batchID, Quantity: types.MustParseQuantity("10")}}},
		{"no lines", iss.ID, nil},
		{"nil batch", iss.ID, []stockreturn.LineRequest{{Quantity: types.MustParseQuantity("10")}}},
		{"zero quantity", iss.ID, []stockreturn.LineRequest{{BatchID: batchID}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.returns.ProcessReturn(ctx, tt.issueID, tt.reqs)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}
