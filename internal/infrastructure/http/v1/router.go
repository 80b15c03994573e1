package v1

import (
	"github.com/gin-gonic/gin"

	"rollstock/internal/domain/catalogs/material"
	"rollstock/internal/domain/documents/issue"
	"rollstock/internal/domain/documents/receipt"
	"rollstock/internal/domain/documents/slitting"
	"rollstock/internal/domain/documents/stockreturn"
	"rollstock/internal/domain/ledger/batch"
	"rollstock/internal/infrastructure/http/v1/handlers"
	"rollstock/internal/infrastructure/http/v1/middleware"
	"rollstock/pkg/logger"
)

// RouterConfig carries everything the HTTP layer needs.
type RouterConfig struct {
	Logger *logger.Logger
	Pinger handlers.Pinger

	Batches   *batch.Service
	Receipts  *receipt.Service
	Issues    *issue.Service
	Returns   *stockreturn.Service
	Slittings *slitting.Service
	Materials *material.Service
}

// NewRouter builds the gin engine with the full middleware chain and
// all v1 routes registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.Trace(),
		middleware.Logger(cfg.Logger),
		middleware.ErrorHandler(),
	)

	health := router.Group("/health")
	handlers.NewHealthHandler(cfg.Pinger).RegisterRoutes(health)

	base := handlers.NewBaseHandler()
	api := router.Group("/api/v1")
	handlers.NewBatchHandler(base, cfg.Batches).RegisterRoutes(api)
	handlers.NewReceiptHandler(base, cfg.Receipts).RegisterRoutes(api)
	handlers.NewIssueHandler(base, cfg.Issues).RegisterRoutes(api)
	handlers.NewReturnHandler(base, cfg.Returns).RegisterRoutes(api)
	handlers.NewSlittingHandler(base, cfg.Slittings).RegisterRoutes(api)
	handlers.NewMaterialHandler(base, cfg.Materials).RegisterRoutes(api)

	return router
}
