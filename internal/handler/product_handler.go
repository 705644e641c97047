package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/service"
	"github.com/chicommerce/catalog-api/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProductHandler handles product HTTP endpoints.
type ProductHandler struct {
	productService *service.ProductService
	exportService  *service.ExportService
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(productService *service.ProductService, exportService *service.ExportService) *ProductHandler {
	return &ProductHandler{productService: productService, exportService: exportService}
}

// ListProducts handles GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	filter := models.ProductFilter{
		ActiveOnly: true,
		Search:     c.Query("search"),
		Page:       1,
		Limit:      50,
	}
	if page := c.Query("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil {
			filter.Page = p
		}
	}
	if limit := c.Query("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil {
			filter.Limit = l
		}
	}
	if activeOnly := c.Query("active_only"); activeOnly != "" {
		filter.ActiveOnly = activeOnly != "false"
	}

	result, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to retrieve products")
		return
	}

	utils.SuccessWithPagination(c, http.StatusOK, "Products retrieved", result.Products, result.Page, result.Limit, result.TotalItems)
}

// GetProduct handles GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	detail, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve product")
		return
	}

	utils.Success(c, http.StatusOK, "Product retrieved", detail)
}

// CreateProduct handles POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create product")
		return
	}

	utils.Success(c, http.StatusCreated, "Product created successfully", product)
}

// UpdateProduct handles PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err, "Failed to update product")
		return
	}

	utils.Success(c, http.StatusOK, "Product updated successfully", product)
}

// DeleteProduct handles DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := uuidParam(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete product")
		return
	}

	utils.Success(c, http.StatusOK, "Product deleted successfully", gin.H{"id": id})
}

// ExportProducts handles GET /products/export
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exportService.WriteProducts(c.Request.Context(), &buf); err != nil {
		respondError(c, err, "Failed to export products")
		return
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
