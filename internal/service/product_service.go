package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/chicommerce/catalog-api/internal/models"
	"github.com/chicommerce/catalog-api/internal/repository"
	"github.com/chicommerce/catalog-api/internal/utils"
	"github.com/chicommerce/catalog-api/internal/validation"
)

const maxProductNameLength = 255

// ProductService handles product CRUD and the product detail view.
type ProductService struct {
	productRepo  *repository.ProductRepository
	templateRepo *repository.TemplateRepository
	cache        ProductDetailCache
}

// NewProductService constructs a ProductService. cache may be nil.
func NewProductService(productRepo *repository.ProductRepository, templateRepo *repository.TemplateRepository, cache ProductDetailCache) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		templateRepo: templateRepo,
		cache:        cache,
	}
}

// CreateProductRequest represents the request to create a new product.
type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description *string          `json:"description"`
	BasePrice   *decimal.Decimal `json:"basePrice" binding:"required"`
	Media       types.JSONText   `json:"media"`
	IsActive    *bool            `json:"isActive"`
}

// UpdateProductRequest represents a partial product update.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	BasePrice   *decimal.Decimal `json:"basePrice"`
	Media       types.JSONText   `json:"media"`
	IsActive    *bool            `json:"isActive"`
}

// CreateProduct validates and stores a new product. Products are active
// unless the request says otherwise.
func (s *ProductService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, error) {
	name, err := validation.ValidateName("name", req.Name, maxProductNameLength)
	if err != nil {
		return nil, err
	}
	if req.BasePrice == nil {
		return nil, utils.InvalidRequest("basePrice is required")
	}
	if err := validation.ValidateBasePrice(*req.BasePrice); err != nil {
		return nil, err
	}
	media, err := validation.ObjectJSON("media", req.Media)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        name,
		Description: req.Description,
		BasePrice:   *req.BasePrice,
		Media:       media,
		IsActive:    true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	log.Info().Str("product_id", product.ID.String()).Str("name", product.Name).Msg("product created")
	return product, nil
}

// GetProduct returns the product with its default template. Products
// without templates carry a nil default template.
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.ProductDetail, error) {
	if s.cache != nil {
		if detail, err := s.cache.Get(ctx, id); err == nil {
			return detail, nil
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &models.ProductDetail{Product: *product}

	tmpl, err := s.templateRepo.GetDefault(ctx, id)
	switch {
	case err == nil:
		detail.DefaultTemplate = tmpl
	case !errors.Is(err, utils.ErrNotFound):
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, detail); err != nil {
			log.Warn().Err(err).Str("product_id", id.String()).Msg("product cache write failed")
		}
	}
	return detail, nil
}

// ListProducts returns a page of products.
func (s *ProductService) ListProducts(ctx context.Context, filter models.ProductFilter) (*models.ProductListResult, error) {
	return s.productRepo.List(ctx, filter)
}

// UpdateProduct applies a partial update.
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := validation.ValidateName("name", *req.Name, maxProductNameLength)
		if err != nil {
			return nil, err
		}
		product.Name = name
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.BasePrice != nil {
		if err := validation.ValidateBasePrice(*req.BasePrice); err != nil {
			return nil, err
		}
		product.BasePrice = *req.BasePrice
	}
	if req.Media != nil {
		media, err := validation.ObjectJSON("media", req.Media)
		if err != nil {
			return nil, err
		}
		product.Media = media
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	invalidateProduct(ctx, s.cache, id)
	log.Info().Str("product_id", id.String()).Msg("product updated")
	return product, nil
}

// DeleteProduct removes a product unless a cart item still references it.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		var inUse *utils.ProductInUseError
		if errors.As(err, &inUse) {
			log.Info().Str("product_id", id.String()).Int("cart_items", inUse.Count).Msg("product deletion blocked")
		}
		return err
	}
	invalidateProduct(ctx, s.cache, id)
	log.Info().Str("product_id", id.String()).Msg("product deleted")
	return nil
}
