package receipt_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/entity"
	"rollstock/internal/core/tx"
	"rollstock/internal/core/types"
	"rollstock/internal/domain/documents/receipt"
	"rollstock/internal/domain/ledger/batch"
	"rollstock/internal/infrastructure/storage/memory"
)

type fixture struct {
	batches  *batch.Service
	receipts *receipt.Service
	audit    *memory.AuditLog
}

func newFixture() *fixture {
	batches := batch.NewService(memory.NewBatchRepository(), memory.NewMovementRepository(), tx.Passthrough{})
	audit := memory.NewAuditLog()
	return &fixture{
		batches:  batches,
		receipts: receipt.NewService(memory.NewReceiptRepository(), batches, memory.NewNumerator(), audit),
		audit:    audit,
	}
}

func filmLine(received string, units int) receipt.Line {
	return receipt.Line{
		ItemCode:         "BOPP-20",
		UOM:              "KG",
		ReceivedQuantity: types.MustParseQuantity(received),
		UnitCount:        units,
		Attributes:       entity.Attributes{"width_mm": 1000},
	}
}

func TestProcess_CreatesBatchPerUnit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := receipt.NewGoodsReceipt("SUP-001")
	doc.AddLine(filmLine("1000", 2))
	require.NoError(t, f.receipts.Process(ctx, doc))

	assert.NotEmpty(t, doc.Number)
	require.Len(t, doc.Lines[0].BatchIDs, 2)

	for _, batchID := range doc.Lines[0].BatchIDs {
		b, err := f.batches.GetByID(ctx, batchID)
		require.NoError(t, err)
		assert.Equal(t, types.MustParseQuantity("500"), b.ReceivedQuantity)
		assert.Equal(t, types.MustParseQuantity("500"), b.RemainingQuantity)
		assert.Equal(t, doc.Number, b.SourceDocumentID)
		assert.Equal(t, "BOPP-20", b.ItemCode)
	}

	b, err := f.batches.GetByID(ctx, doc.Lines[0].BatchIDs[0])
	require.NoError(t, err)
	assert.Equal(t, receipt.BatchCode(doc.Number, 1, 1), b.Code)
}

func TestProcess_SplitRemainderExact(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// 1000 / 3 has no exact decimal representation. The last unit
	// absorbs the remainder so the batches sum exactly.
	doc := receipt.NewGoodsReceipt("SUP-001")
	doc.AddLine(filmLine("1000", 3))
	require.NoError(t, f.receipts.Process(ctx, doc))
	require.Len(t, doc.Lines[0].BatchIDs, 3)

	var sum types.Quantity
	var quantities []types.Quantity
	for _, batchID := range doc.Lines[0].BatchIDs {
		b, err := f.batches.GetByID(ctx, batchID)
		require.NoError(t, err)
		sum += b.ReceivedQuantity
		quantities = append(quantities, b.ReceivedQuantity)
	}
	assert.Equal(t, types.MustParseQuantity("1000"), sum)
	assert.Equal(t, types.MustParseQuantity("333.3333"), quantities[0])
	assert.Equal(t, types.MustParseQuantity("333.3333"), quantities[1])
	assert.Equal(t, types.MustParseQuantity("333.3334"), quantities[2])
}

func TestProcess_MultiLine(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := receipt.NewGoodsReceipt("SUP-001")
	doc.AddLine(filmLine("600", 2))
	ink := receipt.Line{
		ItemCode:         "INK-CYAN",
		UOM:              "KG",
		ReceivedQuantity: types.MustParseQuantity("25"),
		UnitCount:        1,
	}
	doc.AddLine(ink)
	require.NoError(t, f.receipts.Process(ctx, doc))

	assert.Len(t, doc.Lines[0].BatchIDs, 2)
	assert.Len(t, doc.Lines[1].BatchIDs, 1)

	total, err := f.batches.Availability(ctx, "INK-CYAN")
	require.NoError(t, err)
	assert.Equal(t, types.MustParseQuantity("25"), total)
}

func TestProcess_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		doc  func() *receipt.GoodsReceipt
	}{
		{"no supplier", func() *receipt.GoodsReceipt {
			doc := receipt.NewGoodsReceipt("")
			doc.AddLine(filmLine("100", 1))
			return doc
		}},
		{"no lines", func() *receipt.GoodsReceipt {
			return receipt.NewGoodsReceipt("SUP-001")
		}},
		{"zero quantity", func() *receipt.GoodsReceipt {
			doc := receipt.NewGoodsReceipt("SUP-001")
			doc.AddLine(filmLine("0", 1))
			return doc
		}},
		{"zero units", func() *receipt.GoodsReceipt {
			doc := receipt.NewGoodsReceipt("SUP-001")
			doc.AddLine(filmLine("100", 0))
			return doc
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.receipts.Process(ctx, tt.doc())
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)

			// No batches slipped through.
			total, availErr := f.batches.Availability(ctx, "BOPP-20")
			require.NoError(t, availErr)
			assert.True(t, total.IsZero())
		})
	}
}

func TestProcess_SequentialNumbers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := receipt.NewGoodsReceipt("SUP-001")
	first.AddLine(filmLine("100", 1))
	require.NoError(t, f.receipts.Process(ctx, first))

	second := receipt.NewGoodsReceipt("SUP-001")
	second.AddLine(filmLine("100", 1))
	require.NoError(t, f.receipts.Process(ctx, second))

	assert.NotEqual(t, first.Number, second.Number)
	assert.Contains(t, first.Number, "GRN-")
}

func TestProcess_Audited(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := receipt.NewGoodsReceipt("SUP-001")
	doc.AddLine(filmLine("100", 1))
	require.NoError(t, f.receipts.Process(ctx, doc))

	entries := f.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, receipt.DocumentType, entries[0].EntityType)
	assert.Equal(t, doc.ID, entries[0].EntityID)
}

func TestGetByID_RoundTrip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	doc := receipt.NewGoodsReceipt("SUP-001")
	doc.SupplierDocNumber = "INV-4821"
	doc.AddLine(filmLine("200", 2))
	require.NoError(t, f.receipts.Process(ctx, doc))

	got, err := f.receipts.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Number, got.Number)
	assert.Equal(t, "INV-4821", got.SupplierDocNumber)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, doc.Lines[0].BatchIDs, got.Lines[0].BatchIDs)
}
