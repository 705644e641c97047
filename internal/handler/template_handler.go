package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chicommerce/catalog-api/internal/service"
	"github.com/chicommerce/catalog-api/internal/utils"
)

// TemplateHandler handles template HTTP endpoints.
type TemplateHandler struct {
	templateService *service.TemplateService
}

// NewTemplateHandler constructs a TemplateHandler.
func NewTemplateHandler(templateService *service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// ListTemplates handles GET /templates?product_id=
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	raw := c.Query("product_id")
	if raw == "" {
		utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "product_id is required")
		return
	}
	productID, err := uuid.Parse(raw)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
		return
	}

	templates, err := h.templateService.ListTemplates(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err, "Failed to retrieve templates")
		return
	}

	utils.Success(c, http.StatusOK, "Templates retrieved", templates)
}

// GetTemplate handles GET /templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	id, ok := uuidParam(c, "id", "template")
	if !ok {
		return
	}

	tmpl, err := h.templateService.GetTemplate(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve template")
		return
	}

	utils.Success(c, http.StatusOK, "Template retrieved", tmpl)
}

// CreateTemplate handles POST /templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	tmpl, err := h.templateService.CreateTemplate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create template")
		return
	}

	utils.Success(c, http.StatusCreated, "Template created successfully", tmpl)
}

// UpdateTemplate handles PUT /templates/:id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	id, ok := uuidParam(c, "id", "template")
	if !ok {
		return
	}

	var req service.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	tmpl, err := h.templateService.UpdateTemplate(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update template")
		return
	}

	utils.Success(c, http.StatusOK, "Template updated successfully", tmpl)
}

// DeleteTemplate handles DELETE /templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	id, ok := uuidParam(c, "id", "template")
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete template")
		return
	}

	utils.Success(c, http.StatusOK, "Template deleted successfully", gin.H{"id": id})
}
