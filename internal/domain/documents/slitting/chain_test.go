package slitting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollstock/internal/core/entity"
	"rollstock/internal/core/tx"
	"rollstock/internal/core/types"
	"rollstock/internal/domain/documents/issue"
	"rollstock/internal/domain/documents/receipt"
	"rollstock/internal/domain/documents/slitting"
	"rollstock/internal/domain/documents/stockreturn"
	"rollstock/internal/domain/ledger/batch"
	"rollstock/internal/infrastructure/storage/memory"
)

// TestReceiveIssueReturnSlitChain walks the full document chain:
// receive 1000 kg as two rolls, issue 300 from the first, return 100,
// then slit the roll's remaining 300 into 140 + 150 with 10 wastage.
func TestReceiveIssueReturnSlitChain(t *testing.T) {
	ctx := context.Background()

	batches := batch.NewService(memory.NewBatchRepository(), memory.NewMovementRepository(), tx.Passthrough{})
	issueRepo := memory.NewIssueRepository()
	gen := memory.NewNumerator()
	receipts := receipt.NewService(memory.NewReceiptRepository(), batches, gen, nil)
	issues := issue.NewService(issueRepo, batches, gen, nil)
	returns := stockreturn.NewService(memory.NewReturnRepository(), issueRepo, batches, gen, nil)
	slittings := slitting.NewService(memory.NewSlittingRepository(), batches, gen, nil)

	// Receive 1000 kg across two rolls: A(500), B(500).
	grn := receipt.NewGoodsReceipt("SUP-001")
	grn.AddLine(receipt.Line{
		ItemCode:         "BOPP-20",
		UOM:              "KG",
		ReceivedQuantity: types.MustParseQuantity("1000"),
		UnitCount:        2,
		Attributes:       entity.Attributes{"width_mm": 1000},
	})
	require.NoError(t, receipts.Process(ctx, grn))
	require.Len(t, grn.Lines[0].BatchIDs, 2)
	rollA := grn.Lines[0].BatchIDs[0]
	rollB := grn.Lines[0].BatchIDs[1]

	// Issue 300 kg from A to job J1.
	iss, err := issues.IssueExplicit(ctx, "J1", []issue.LineRequest{
		{BatchID: rollA, Quantity: types.MustParseQuantity("300")},
	})
	require.NoError(t, err)

	a, err := batches.GetByID(ctx, rollA)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("200"), a.RemainingQuantity)

	// Return 100 kg against that issue.
	_, err = returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: rollA, Quantity: types.MustParseQuantity("100")},
	})
	require.NoError(t, err)

	a, err = batches.GetByID(ctx, rollA)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("300"), a.RemainingQuantity)

	// Slit A's remaining 300 into 140 + 150 with 10 wastage.
	slit, err := slittings.Process(ctx, slitting.Request{
		InputBatchID: rollA,
		Wastage:      types.MustParseQuantity("10"),
		Outputs: []slitting.OutputRequest{
			{Quantity: types.MustParseQuantity("140"), Attributes: entity.Attributes{"width_mm": 450}},
			{Quantity: types.MustParseQuantity("150"), Attributes: entity.Attributes{"width_mm": 500}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("300"), slit.ConsumedQuantity)

	// A is fully consumed; B is untouched; the children sum to 290.
	a, err = batches.GetByID(ctx, rollA)
	require.NoError(t, err)
	assert.True(t, a.RemainingQuantity.IsZero())

	b, err := batches.GetByID(ctx, rollB)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("500"), b.RemainingQuantity)

	var childTotal types.Quantity
	for _, line := range slit.Lines {
		child, err := batches.GetByID(ctx, line.BatchID)
		require.NoError(t, err)
		childTotal += child.RemainingQuantity
	}
	assert.Equal(t, types.MustParseQuantity("290"), childTotal)

	// Issuing 600 from B(500) fails and leaves B unchanged.
	_, err = issues.IssueExplicit(ctx, "J2", []issue.LineRequest{
		{BatchID: rollB, Quantity: types.MustParseQuantity("600")},
	})
	require.Error(t, err)

	b, err = batches.GetByID(ctx, rollB)
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("500"), b.RemainingQuantity)

	// Total stock: B(500) + children(290) = 790.
	total, err := batches.Availability(ctx, "BOPP-20")
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("790"), total)
}
