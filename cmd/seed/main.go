// Package main provides a CLI tool for seeding the database with demo data.
//
// It exercises the full document chain: materials, a goods receipt split
// into roll batches, an auto-selected issue, a partial return and a
// slitting of one roll into narrower reels.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"rollstock/internal/core/entity"
	"rollstock/internal/core/types"
	"rollstock/internal/domain/catalogs/material"
	"rollstock/internal/domain/documents/issue"
	"rollstock/internal/domain/documents/receipt"
	"rollstock/internal/domain/documents/slitting"
	"rollstock/internal/domain/documents/stockreturn"
	"rollstock/internal/domain/ledger/batch"
	"rollstock/internal/infrastructure/storage/postgres"
	"rollstock/pkg/logger"
	pgnumerator "rollstock/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)
	audit, err := postgres.NewAuditStore(txm)
	if err != nil {
		log.Fatalw("failed to create audit store", "error", err)
	}
	gen := pgnumerator.New(pool)

	batches := batch.NewService(postgres.NewBatchRepo(txm), postgres.NewMovementRepo(txm), txm)
	materials := material.NewService(postgres.NewMaterialRepo(txm), gen)
	receipts := receipt.NewService(postgres.NewReceiptRepo(txm), batches, gen, audit)
	issues := issue.NewService(postgres.NewIssueRepo(txm), batches, gen, audit)
	returns := stockreturn.NewService(postgres.NewReturnRepo(txm), postgres.NewIssueRepo(txm), batches, gen, audit)
	slittings := slitting.NewService(postgres.NewSlittingRepo(txm), batches, gen, audit)

	if err := seedMaterials(ctx, materials); err != nil {
		log.Fatalw("failed to seed materials", "error", err)
	}
	log.Info("materials seeded")

	if err := seedDocumentChain(ctx, log, receipts, issues, returns, slittings); err != nil {
		log.Fatalw("failed to seed document chain", "error", err)
	}

	log.Info("seeding complete")
}

func seedMaterials(ctx context.Context, svc *material.Service) error {
	bopp := material.NewMaterial("BOPP-20", "BOPP Film 20 micron", material.TypeFilm, "KG")
	bopp.WidthMM = decimal.NewFromInt(1000)
	bopp.Micron = decimal.NewFromInt(20)
	bopp.GSM = decimal.NewFromFloat(18.2)
	bopp.DefaultRate = decimal.NewFromFloat(142.50)

	ink := material.NewMaterial("INK-CYAN", "Process Cyan Ink", material.TypeInk, "KG")
	ink.DefaultRate = decimal.NewFromFloat(310)

	adhesive := material.NewMaterial("ADH-SF", "Solvent-Free Adhesive", material.TypeAdhesive, "KG")
	adhesive.DefaultRate = decimal.NewFromFloat(265)

	for _, m := range []*material.Material{bopp, ink, adhesive} {
		if err := svc.Create(ctx, m); err != nil {
			return fmt.Errorf("create material %s: %w", m.Code, err)
		}
	}
	return nil
}

func seedDocumentChain(
	ctx context.Context,
	log *logger.Logger,
	receipts *receipt.Service,
	issues *issue.Service,
	returns *stockreturn.Service,
	slittings *slitting.Service,
) error {
	// 1000 kg of film delivered as two rolls of 500 kg each.
	grn := receipt.NewGoodsReceipt("SUP-001")
	grn.SupplierDocNumber = "INV-4821"
	rate, _ := types.NewMoneyFromString("142.50")
	grn.AddLine(receipt.Line{
		ItemCode:         "BOPP-20",
		UOM:              "KG",
		OrderedQuantity:  types.MustParseQuantity("1000"),
		ReceivedQuantity: types.MustParseQuantity("1000"),
		UnitCount:        2,
		UnitRate:         rate,
		Attributes: entity.Attributes{
			"width_mm": 1000,
			"micron":   20,
		},
	})
	if err := receipts.Process(ctx, grn); err != nil {
		return fmt.Errorf("process receipt: %w", err)
	}
	log.Infow("goods receipt created", "number", grn.Number, "batches", len(grn.Lines[0].BatchIDs))

	// Issue 300 kg to printing, FIFO picks the older roll first.
	iss, err := issues.IssueAuto(ctx, "WO-PRINT-17", "BOPP-20", types.MustParseQuantity("300"), issue.PolicyFIFO)
	if err != nil {
		return fmt.Errorf("issue stock: %w", err)
	}
	log.Infow("issue created", "number", iss.Number, "lines", len(iss.Lines))

	// 100 kg comes back unused.
	ret, err := returns.ProcessReturn(ctx, iss.ID, []stockreturn.LineRequest{
		{BatchID: iss.Lines[0].BatchID, Quantity: types.MustParseQuantity("100")},
	})
	if err != nil {
		return fmt.Errorf("process return: %w", err)
	}
	log.Infow("return created", "number", ret.Number)

	// The first roll now has 300 kg remaining. Slit it fully into two
	// narrower reels plus edge trim.
	inputBatch := iss.Lines[0].BatchID
	slit, err := slittings.Process(ctx, slitting.Request{
		InputBatchID: inputBatch,
		Wastage:      types.MustParseQuantity("10"),
		Comment:      "slit for WO-PRINT-17",
		Outputs: []slitting.OutputRequest{
			{Quantity: types.MustParseQuantity("140"), Attributes: entity.Attributes{"width_mm": 450}},
			{Quantity: types.MustParseQuantity("150"), Attributes: entity.Attributes{"width_mm": 500}},
		},
	})
	if err != nil {
		return fmt.Errorf("process slitting: %w", err)
	}
	log.Infow("slitting created", "number", slit.Number, "outputs", len(slit.Lines))

	return nil
}
