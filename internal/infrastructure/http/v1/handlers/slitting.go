package handlers

import (
	"github.com/gin-gonic/gin"

	"rollstock/internal/domain/documents/slitting"
	"rollstock/internal/infrastructure/http/v1/dto"
)

// SlittingHandler handles slitting documents.
type SlittingHandler struct {
	*BaseHandler
	service *slitting.Service
}

// NewSlittingHandler creates a new slitting handler.
func NewSlittingHandler(base *BaseHandler, service *slitting.Service) *SlittingHandler {
	return &SlittingHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers slitting routes.
func (h *SlittingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	slittings := rg.Group("/slittings")
	{
		slittings.POST("", h.Create)
		slittings.GET("", h.List)
		slittings.GET("/:id", h.Get)
	}
}

// Create cuts a batch into child batches.
func (h *SlittingHandler) Create(c *gin.Context) {
	var req dto.CreateSlittingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inputID, ok := h.ParseID(c, req.InputBatchID, "inputBatchId")
	if !ok {
		return
	}

	sreq := slitting.Request{
		InputBatchID: inputID,
		Wastage:      req.Wastage,
		Comment:      req.Comment,
	}
	for _, out := range req.Outputs {
		sreq.Outputs = append(sreq.Outputs, slitting.OutputRequest{
			ItemCode:   out.ItemCode,
			UOM:        out.UOM,
			Quantity:   out.Quantity,
			Attributes: out.Attributes,
		})
	}

	rec, err := h.service.Process(c.Request.Context(), sreq)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// Get returns one slitting record with lines.
func (h *SlittingHandler) Get(c *gin.Context) {
	recID, ok := h.ParseID(c, c.Param("id"), "id")
	if !ok {
		return
	}

	rec, err := h.service.GetByID(c.Request.Context(), recID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// List returns slitting records matching the filter.
func (h *SlittingHandler) List(c *gin.Context) {
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
