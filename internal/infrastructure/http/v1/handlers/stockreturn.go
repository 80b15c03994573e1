package handlers

import (
	"github.com/gin-gonic/gin"

	"rollstock/internal/domain/documents/stockreturn"
	"rollstock/internal/infrastructure/http/v1/dto"
)

// ReturnHandler handles return documents.
type ReturnHandler struct {
	*BaseHandler
	service *stockreturn.Service
}

// NewReturnHandler creates a new return handler.
func NewReturnHandler(base *BaseHandler, service *stockreturn.Service) *ReturnHandler {
	return &ReturnHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers return routes.
func (h *ReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	returns := rg.Group("/returns")
	{
		returns.POST("", h.Create)
		returns.POST("/:id/reverse", h.Reverse)
		returns.GET("", h.List)
		returns.GET("/:id", h.Get)
	}
}

// Create returns stock against a prior issue.
func (h *ReturnHandler) Create(c *gin.Context) {
	var req dto.CreateReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	issueID, ok := h.ParseID(c, req.IssueID, "issueId")
	if !ok {
		return
	}
	reqs := make([]stockreturn.LineRequest, 0, len(req.Lines))
	for _, lr := range req.Lines {
		batchID, ok := h.ParseID(c, lr.BatchID, "batchId")
		if !ok {
			return
		}
		reqs = append(reqs, stockreturn.LineRequest{BatchID: batchID, Quantity: lr.Quantity})
	}

	rec, err := h.service.ProcessReturn(c.Request.Context(), issueID, reqs)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// Reverse undoes a return document in full.
func (h *ReturnHandler) Reverse(c *gin.Context) {
	recID, ok := h.ParseID(c, c.Param("id"), "id")
	if !ok {
		return
	}

	rec, err := h.service.ReverseReturn(c.Request.Context(), recID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, rec)
}

// Get returns one return document with lines.
func (h *ReturnHandler) Get(c *gin.Context) {
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

// List returns return documents matching the filter.
func (h *ReturnHandler) List(c *gin.Context) {
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
