package handlers

import (
	"github.com/gin-gonic/gin"

	"rollstock/internal/core/apperror"
	"rollstock/internal/domain/ledger/batch"
	"rollstock/internal/infrastructure/http/v1/dto"
)

// BatchHandler exposes batch queries. Batches are never mutated through
// this surface; quantity changes go through documents.
type BatchHandler struct {
	*BaseHandler
	service *batch.Service
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(base *BaseHandler, service *batch.Service) *BatchHandler {
	return &BatchHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers batch routes.
func (h *BatchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	batches := rg.Group("/batches")
	{
		batches.GET("", h.List)
		batches.GET("/:id", h.Get)
		batches.GET("/:id/movements", h.Movements)
	}
	rg.GET("/items/:itemCode/availability", h.Availability)
	rg.GET("/items/:itemCode/batches", h.ListByItem)
}

// List returns batches matching the filter.
func (h *BatchHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(c.Request.Context(), q.Filter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{
		Items:      dto.NewBatchResponses(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get returns one batch.
func (h *BatchHandler) Get(c *gin.Context) {
	batchID, ok := h.ParseID(c, c.Param("id"), "id")
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewBatchResponse(b))
}

// Movements returns a batch's journal, oldest first.
func (h *BatchHandler) Movements(c *gin.Context) {
	batchID, ok := h.ParseID(c, c.Param("id"), "id")
	if !ok {
		return
	}

	movements, err := h.service.Movements(c.Request.Context(), batchID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewMovementResponses(movements))
}

// ListByItem returns an item's batches, oldest first.
func (h *BatchHandler) ListByItem(c *gin.Context) {
	itemCode := c.Param("itemCode")
	if itemCode == "" {
		h.Error(c, apperror.NewValidation("item code is required"))
		return
	}
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	batches, err := h.service.ListByItemCode(c.Request.Context(), itemCode, q.Filter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewBatchResponses(batches))
}

// Availability returns the total remaining quantity for an item.
func (h *BatchHandler) Availability(c *gin.Context) {
	itemCode := c.Param("itemCode")
	if itemCode == "" {
		h.Error(c, apperror.NewValidation("item code is required"))
		return
	}

	total, err := h.service.Availability(c.Request.Context(), itemCode)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.AvailabilityResponse{ItemCode: itemCode, Total: total})
}
