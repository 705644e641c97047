package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chicommerce/catalog-api/internal/middleware"
	"github.com/chicommerce/catalog-api/internal/service"
	"github.com/chicommerce/catalog-api/internal/utils"
)

// CartHandler handles cart endpoints for the cookie session.
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler constructs a CartHandler.
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.GetCart(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		respondError(c, err, "Failed to retrieve cart")
		return
	}

	utils.Success(c, http.StatusOK, "Cart retrieved", view)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req service.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := h.cartService.AddItem(c.Request.Context(), middleware.GetSessionID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to add item to cart")
		return
	}

	utils.Success(c, http.StatusCreated, "Item added to cart", item)
}

// UpdateItem handles PUT /cart/items/:item_id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id", "cart item")
	if !ok {
		return
	}

	var req service.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := h.cartService.UpdateItem(c.Request.Context(), middleware.GetSessionID(c), itemID, &req)
	if err != nil {
		respondError(c, err, "Failed to update cart item")
		return
	}

	utils.Success(c, http.StatusOK, "Cart item updated", item)
}

// RemoveItem handles DELETE /cart/items/:item_id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id", "cart item")
	if !ok {
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), middleware.GetSessionID(c), itemID); err != nil {
		respondError(c, err, "Failed to remove cart item")
		return
	}

	utils.Success(c, http.StatusOK, "Item removed from cart", gin.H{"id": itemID})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	view, err := h.cartService.ClearCart(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		respondError(c, err, "Failed to clear cart")
		return
	}

	utils.Success(c, http.StatusOK, "Cart cleared", view)
}
