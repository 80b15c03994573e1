// Package main is the entry point for the rollstock API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	corenum "rollstock/internal/core/numerator"
	"rollstock/internal/core/tx"
	"rollstock/internal/domain"
	"rollstock/internal/domain/catalogs/material"
	"rollstock/internal/domain/documents/issue"
	"rollstock/internal/domain/documents/receipt"
	"rollstock/internal/domain/documents/slitting"
	"rollstock/internal/domain/documents/stockreturn"
	"rollstock/internal/domain/ledger/batch"
	v1 "rollstock/internal/infrastructure/http/v1"
	"rollstock/internal/infrastructure/http/v1/handlers"
	"rollstock/internal/infrastructure/storage/memory"
	"rollstock/internal/infrastructure/storage/postgres"
	"rollstock/pkg/logger"
	pgnumerator "rollstock/pkg/numerator"
)

// repositories groups the storage implementations behind the domain
// interfaces so the same wiring serves both backends.
type repositories struct {
	batches   batch.Repository
	movements batch.MovementRepository
	receipts  receipt.Repository
	issues    issue.Repository
	returns   stockreturn.Repository
	slittings slitting.Repository
	materials material.Repository

	txm       tx.Manager
	numerator corenum.Generator
	audit     domain.AuditLogger
	pinger    handlers.Pinger
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var repos repositories
	var cleanup func()

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		repos, cleanup, err = setupPostgres(ctx, dsn)
		if err != nil {
			log.Fatalw("failed to set up postgres backend", "error", err)
		}
		defer cleanup()
		log.Info("storage backend: postgres")
	} else {
		repos = setupMemory()
		log.Info("storage backend: in-memory (set DATABASE_URL for postgres)")
	}

	batchService := batch.NewService(repos.batches, repos.movements, repos.txm)
	receiptService := receipt.NewService(repos.receipts, batchService, repos.numerator, repos.audit)
	issueService := issue.NewService(repos.issues, batchService, repos.numerator, repos.audit)
	returnService := stockreturn.NewService(repos.returns, repos.issues, batchService, repos.numerator, repos.audit)
	slittingService := slitting.NewService(repos.slittings, batchService, repos.numerator, repos.audit)
	materialService := material.NewService(repos.materials, repos.numerator)

	router := v1.NewRouter(v1.RouterConfig{
		Logger:    log,
		Pinger:    repos.pinger,
		Batches:   batchService,
		Receipts:  receiptService,
		Issues:    issueService,
		Returns:   returnService,
		Slittings: slittingService,
		Materials: materialService,
	})

	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func setupPostgres(ctx context.Context, dsn string) (repositories, func(), error) {
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		return repositories{}, nil, err
	}

	txm := postgres.NewTxManager(pool)

	audit, err := postgres.NewAuditStore(txm)
	if err != nil {
		pool.Close()
		return repositories{}, nil, err
	}

	return repositories{
		batches:   postgres.NewBatchRepo(txm),
		movements: postgres.NewMovementRepo(txm),
		receipts:  postgres.NewReceiptRepo(txm),
		issues:    postgres.NewIssueRepo(txm),
		returns:   postgres.NewReturnRepo(txm),
		slittings: postgres.NewSlittingRepo(txm),
		materials: postgres.NewMaterialRepo(txm),
		txm:       txm,
		numerator: pgnumerator.New(pool),
		audit:     audit,
		pinger:    pool,
	}, pool.Close, nil
}

func setupMemory() repositories {
	return repositories{
		batches:   memory.NewBatchRepository(),
		movements: memory.NewMovementRepository(),
		receipts:  memory.NewReceiptRepository(),
		issues:    memory.NewIssueRepository(),
		returns:   memory.NewReturnRepository(),
		slittings: memory.NewSlittingRepository(),
		materials: memory.NewMaterialRepository(),
		txm:       tx.Passthrough{},
		numerator: memory.NewNumerator(),
		audit:     memory.NewAuditLog(),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
