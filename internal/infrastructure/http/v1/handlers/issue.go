package handlers

import (
	"github.com/gin-gonic/gin"

	"rollstock/internal/domain/documents/issue"
	"rollstock/internal/infrastructure/http/v1/dto"
)

// IssueHandler handles issue documents.
type IssueHandler struct {
	*BaseHandler
	service *issue.Service
}

// NewIssueHandler creates a new issue handler.
func NewIssueHandler(base *BaseHandler, service *issue.Service) *IssueHandler {
	return &IssueHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers issue routes.
func (h *IssueHandler) RegisterRoutes(rg *gin.RouterGroup) {
	issues := rg.Group("/issues")
	{
		issues.POST("", h.Create)
		issues.POST("/auto", h.CreateAuto)
		issues.GET("", h.List)
		issues.GET("/:id", h.Get)
	}
}

// Create issues stock against explicitly chosen batches.
func (h *IssueHandler) Create(c *gin.Context) {
	var req dto.CreateIssueRequest
	if !h.BindJSON(c, &req) {
		return
	}

	reqs := make([]issue.LineRequest, 0, len(req.Lines))
	for _, lr := range req.Lines {
		batchID, ok := h.ParseID(c, lr.BatchID, "batchId")
		if !ok {
			return
		}
		reqs = append(reqs, issue.LineRequest{BatchID: batchID, Quantity: lr.Quantity})
	}

	rec, err := h.service.IssueExplicit(c.Request.Context(), req.ConsumerRef, reqs)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// CreateAuto issues stock with automatic batch selection.
func (h *IssueHandler) CreateAuto(c *gin.Context) {
	var req dto.CreateAutoIssueRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rec, err := h.service.IssueAuto(c.Request.Context(),
		req.ConsumerRef, req.ItemCode, req.Quantity, issue.SelectionPolicy(req.Policy))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, rec)
}

// Get returns one issue with lines.
func (h *IssueHandler) Get(c *gin.Context) {
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

// List returns issues matching the filter.
func (h *IssueHandler) List(c *gin.Context) {
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
