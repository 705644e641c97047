package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/chicommerce/catalog-api/internal/models"
)

// ProductDetailCache caches product detail views. *cache.ProductCache
// satisfies it; a nil cache disables caching.
type ProductDetailCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.ProductDetail, error)
	Set(ctx context.Context, detail *models.ProductDetail) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// invalidateProduct drops a cached detail. Failures are logged only: the
// entry expires on its own TTL.
func invalidateProduct(ctx context.Context, c ProductDetailCache, id uuid.UUID) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx, id); err != nil {
		log.Warn().Err(err).Str("product_id", id.String()).Msg("product cache invalidation failed")
	}
}
