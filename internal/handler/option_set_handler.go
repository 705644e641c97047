package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chicommerce/catalog-api/internal/service"
	"github.com/chicommerce/catalog-api/internal/utils"
)

// OptionSetHandler handles option set and option HTTP endpoints. Every
// route sits behind the admin key.
type OptionSetHandler struct {
	optionSetService *service.OptionSetService
}

// NewOptionSetHandler constructs an OptionSetHandler.
func NewOptionSetHandler(optionSetService *service.OptionSetService) *OptionSetHandler {
	return &OptionSetHandler{optionSetService: optionSetService}
}

// ListOptionSets handles GET /products/:id/option-sets
func (h *OptionSetHandler) ListOptionSets(c *gin.Context) {
	productID, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	sets, err := h.optionSetService.ListOptionSets(c.Request.Context(), productID, c.Query("active_only") == "true")
	if err != nil {
		respondError(c, err, "Failed to retrieve option sets")
		return
	}

	utils.Success(c, http.StatusOK, "Option sets retrieved", sets)
}

// CreateOptionSet handles POST /products/:id/option-sets
func (h *OptionSetHandler) CreateOptionSet(c *gin.Context) {
	productID, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	var req service.CreateOptionSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	set, err := h.optionSetService.CreateOptionSet(c.Request.Context(), productID, &req)
	if err != nil {
		respondError(c, err, "Failed to create option set")
		return
	}

	utils.Success(c, http.StatusCreated, "Option set created successfully", set)
}

// GetOptionSet handles GET /option-sets/:id
func (h *OptionSetHandler) GetOptionSet(c *gin.Context) {
	id, ok := uuidParam(c, "id", "option set")
	if !ok {
		return
	}

	set, err := h.optionSetService.GetOptionSet(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve option set")
		return
	}

	utils.Success(c, http.StatusOK, "Option set retrieved", set)
}

// UpdateOptionSet handles PUT /option-sets/:id
func (h *OptionSetHandler) UpdateOptionSet(c *gin.Context) {
	id, ok := uuidParam(c, "id", "option set")
	if !ok {
		return
	}

	var req service.UpdateOptionSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	set, err := h.optionSetService.UpdateOptionSet(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update option set")
		return
	}

	utils.Success(c, http.StatusOK, "Option set updated successfully", set)
}

// DeleteOptionSet handles DELETE /option-sets/:id
func (h *OptionSetHandler) DeleteOptionSet(c *gin.Context) {
	id, ok := uuidParam(c, "id", "option set")
	if !ok {
		return
	}

	if err := h.optionSetService.DeleteOptionSet(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete option set")
		return
	}

	utils.Success(c, http.StatusOK, "Option set deleted successfully", gin.H{"id": id})
}

// ListOptions handles GET /option-sets/:id/options
func (h *OptionSetHandler) ListOptions(c *gin.Context) {
	setID, ok := uuidParam(c, "id", "option set")
	if !ok {
		return
	}

	options, err := h.optionSetService.ListOptions(c.Request.Context(), setID)
	if err != nil {
		respondError(c, err, "Failed to retrieve options")
		return
	}

	utils.Success(c, http.StatusOK, "Options retrieved", options)
}

// CreateOption handles POST /option-sets/:id/options
func (h *OptionSetHandler) CreateOption(c *gin.Context) {
	setID, ok := uuidParam(c, "id", "option set")
	if !ok {
		return
	}

	var req service.CreateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	option, err := h.optionSetService.CreateOption(c.Request.Context(), setID, &req)
	if err != nil {
		respondError(c, err, "Failed to create option")
		return
	}

	utils.Success(c, http.StatusCreated, "Option created successfully", option)
}

// GetOption handles GET /options/:id
func (h *OptionSetHandler) GetOption(c *gin.Context) {
	id, ok := uuidParam(c, "id", "option")
	if !ok {
		return
	}

	option, err := h.optionSetService.GetOption(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve option")
		return
	}

	utils.Success(c, http.StatusOK, "Option retrieved", option)
}

// UpdateOption handles PUT /options/:id
func (h *OptionSetHandler) UpdateOption(c *gin.Context) {
	id, ok := uuidParam(c, "id", "option")
	if !ok {
		return
	}

	var req service.UpdateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	option, err := h.optionSetService.UpdateOption(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update option")
		return
	}

	utils.Success(c, http.StatusOK, "Option updated successfully", option)
}

// DeleteOption handles DELETE /options/:id
func (h *OptionSetHandler) DeleteOption(c *gin.Context) {
	id, ok := uuidParam(c, "id", "option")
	if !ok {
		return
	}

	if err := h.optionSetService.DeleteOption(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete option")
		return
	}

	utils.Success(c, http.StatusOK, "Option deleted successfully", gin.H{"id": id})
}
