package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chicommerce/catalog-api/internal/models"
)

// ProductCache stores product detail views (product plus default template)
// as JSON with a fixed TTL.
type ProductCache struct {
	redis *RedisClient
	ttl   time.Duration
}

// NewProductCache creates a new ProductCache.
func NewProductCache(redis *RedisClient, ttl time.Duration) *ProductCache {
	return &ProductCache{redis: redis, ttl: ttl}
}

// ProductDetailKey returns the Redis key of a product detail entry.
func ProductDetailKey(id uuid.UUID) string {
	return fmt.Sprintf("catalog:product:%s", id)
}

// Get returns the cached detail or ErrCacheMiss.
func (c *ProductCache) Get(ctx context.Context, id uuid.UUID) (*models.ProductDetail, error) {
	raw, err := c.redis.Get(ctx, ProductDetailKey(id))
	if err != nil {
		return nil, err
	}

	var detail models.ProductDetail
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product detail: %w", err)
	}
	return &detail, nil
}

// Set stores a detail view.
func (c *ProductCache) Set(ctx context.Context, detail *models.ProductDetail) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal product detail: %w", err)
	}
	return c.redis.Set(ctx, ProductDetailKey(detail.ID), string(raw), c.ttl)
}

// Invalidate drops the cached detail of a product.
func (c *ProductCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.redis.Delete(ctx, ProductDetailKey(id))
}
