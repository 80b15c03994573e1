package handlers

import (
	"github.com/gin-gonic/gin"

	"rollstock/internal/core/apperror"
	"rollstock/internal/core/types"
	"rollstock/internal/domain/documents/receipt"
	"rollstock/internal/infrastructure/http/v1/dto"
)

// ReceiptHandler handles goods receipt documents.
type ReceiptHandler struct {
	*BaseHandler
	service *receipt.Service
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(base *BaseHandler, service *receipt.Service) *ReceiptHandler {
	return &ReceiptHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers receipt routes.
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	receipts := rg.Group("/goods-receipts")
	{
		receipts.POST("", h.Create)
		receipts.GET("", h.List)
		receipts.GET("/:id", h.Get)
	}
}

// Create applies a goods receipt and creates its batches.
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req dto.CreateReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := receipt.NewGoodsReceipt(req.SupplierRef)
	doc.SupplierDocNumber = req.SupplierDocNumber
	doc.Comment = req.Comment
	for _, lr := range req.Lines {
		rate := types.ZeroMoney()
		if lr.UnitRate != "" {
			parsed, err := types.NewMoneyFromString(lr.UnitRate)
			if err != nil {
				h.Error(c, apperror.NewValidation("invalid unit rate").WithDetail("value", lr.UnitRate))
				return
			}
			rate = parsed
		}
		doc.AddLine(receipt.Line{
			ItemCode:         lr.ItemCode,
			UOM:              lr.UOM,
			OrderedQuantity:  lr.OrderedQuantity,
			ReceivedQuantity: lr.ReceivedQuantity,
			UnitCount:        lr.UnitCount,
			UnitRate:         rate,
			Attributes:       lr.Attributes,
		})
	}

	if err := h.service.Process(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Get returns one goods receipt with lines.
func (h *ReceiptHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c, c.Param("id"), "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List returns goods receipts matching the filter.
func (h *ReceiptHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(c.Request.Context(), q.Filter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result))
}
