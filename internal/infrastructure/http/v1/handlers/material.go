package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rollstock/internal/core/apperror"
	"rollstock/internal/domain/catalogs/material"
	"rollstock/internal/infrastructure/http/v1/dto"
)

// MaterialHandler handles the material catalog.
type MaterialHandler struct {
	*BaseHandler
	service *material.Service
}

// NewMaterialHandler creates a new material handler.
func NewMaterialHandler(base *BaseHandler, service *material.Service) *MaterialHandler {
	return &MaterialHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers material routes.
func (h *MaterialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	materials := rg.Group("/materials")
	{
		materials.POST("", h.Create)
		materials.GET("", h.List)
		materials.GET("/:id", h.Get)
		materials.PUT("/:id", h.Update)
		materials.DELETE("/:id", h.Delete)
	}
}

// Create stores a new material.
func (h *MaterialHandler) Create(c *gin.Context) {
	var req dto.MaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m := material.NewMaterial(req.Code, req.Name, material.MaterialType(req.Type), req.UOM)
	if !h.applyRequest(c, m, req) {
		return
	}

	if err := h.service.Create(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, m)
}

// Update stores changes to an existing material.
func (h *MaterialHandler) Update(c *gin.Context) {
	materialID, ok := h.ParseID(c, c.Param("id"), "id")
	if !ok {
		return
	}
	var req dto.MaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if req.Code != "" {
		m.Code = req.Code
	}
	m.Name = req.Name
	m.Type = material.MaterialType(req.Type)
	m.UOM = req.UOM
	if !h.applyRequest(c, m, req) {
		return
	}

	if err := h.service.Update(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// Delete soft-deletes a material.
func (h *MaterialHandler) Delete(c *gin.Context) {
	materialID, ok := h.ParseID(c, c.Param("id"), "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), materialID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// Get returns one material.
func (h *MaterialHandler) Get(c *gin.Context) {
	materialID, ok := h.ParseID(c, c.Param("id"), "id")
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, m)
}

// List returns materials matching the filter.
func (h *MaterialHandler) List(c *gin.Context) {
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

// applyRequest copies the optional decimal and text fields onto the
// material, reporting a validation error for unparseable decimals.
func (h *MaterialHandler) applyRequest(c *gin.Context, m *material.Material, req dto.MaterialRequest) bool {
	set := func(field, value string, dst *decimal.Decimal) bool {
		if value == "" {
			return true
		}
		parsed, err := decimal.NewFromString(value)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid decimal value").
				WithDetail("field", field).
				WithDetail("value", value))
			return false
		}
		*dst = parsed
		return true
	}

	if !set("widthMm", req.WidthMM, &m.WidthMM) ||
		!set("gsm", req.GSM, &m.GSM) ||
		!set("micron", req.Micron, &m.Micron) ||
		!set("defaultRate", req.DefaultRate, &m.DefaultRate) {
		return false
	}
	if req.HSNCode != "" {
		m.HSNCode = &req.HSNCode
	}
	if req.Description != "" {
		m.Description = &req.Description
	}
	return true
}
