package cache

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicommerce/catalog-api/internal/config"
)

func TestProductDetailKey(t *testing.T) {
	id := uuid.MustParse("6f1c2b1e-8a55-4c0e-9b8e-0f6a1c2d3e4f")
	assert.Equal(t, "catalog:product:6f1c2b1e-8a55-4c0e-9b8e-0f6a1c2d3e4f", ProductDetailKey(id))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	_, err := NewRedisClient(&config.RedisConfig{Host: "127.0.0.1", Port: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis connection failed")
}
