package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chicommerce/catalog-api/internal/middleware"
	"github.com/chicommerce/catalog-api/internal/service"
	"github.com/chicommerce/catalog-api/internal/utils"
)

// CustomizationHandler handles customization session endpoints.
type CustomizationHandler struct {
	customizationService *service.CustomizationService
}

// NewCustomizationHandler constructs a CustomizationHandler.
func NewCustomizationHandler(customizationService *service.CustomizationService) *CustomizationHandler {
	return &CustomizationHandler{customizationService: customizationService}
}

// StartSession handles POST /customization-sessions
func (h *CustomizationHandler) StartSession(c *gin.Context) {
	var req service.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.customizationService.StartSession(c.Request.Context(), middleware.GetSessionID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to start customization session")
		return
	}

	utils.Success(c, http.StatusCreated, "Customization session started", session)
}

// GetSession handles GET /customization-sessions/:product_id
func (h *CustomizationHandler) GetSession(c *gin.Context) {
	productID, ok := uuidParam(c, "product_id", "product")
	if !ok {
		return
	}

	session, err := h.customizationService.GetActive(c.Request.Context(), middleware.GetSessionID(c), productID)
	if err != nil {
		respondError(c, err, "Failed to retrieve customization session")
		return
	}

	utils.Success(c, http.StatusOK, "Customization session retrieved", session)
}

// UpdateSession handles PUT /customization-sessions/:product_id
func (h *CustomizationHandler) UpdateSession(c *gin.Context) {
	productID, ok := uuidParam(c, "product_id", "product")
	if !ok {
		return
	}

	var req service.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.customizationService.UpdateActive(c.Request.Context(), middleware.GetSessionID(c), productID, &req)
	if err != nil {
		respondError(c, err, "Failed to update customization session")
		return
	}

	utils.Success(c, http.StatusOK, "Customization session updated", session)
}
