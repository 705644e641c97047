package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chicommerce/catalog-api/internal/utils"
)

// Version is reported by the root and health endpoints.
const Version = "1.0.0"

var startTime = time.Now()

// Pinger is satisfied by the database stats repository and the Redis client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides the health and root endpoints.
type HealthHandler struct {
	db        Pinger
	cache     Pinger
	apiPrefix string
}

// NewHealthHandler creates a new HealthHandler. cache may be nil.
func NewHealthHandler(db Pinger, cache Pinger, apiPrefix string) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, apiPrefix: apiPrefix}
}

// GetHealth responds with service, database and cache status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	dbStatus := "connected"
	if err := h.db.Ping(ctx); err != nil {
		status = "degraded"
		dbStatus = "disconnected"
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "connected"
		if err := h.cache.Ping(ctx); err != nil {
			cacheStatus = "disconnected"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	utils.Success(c, code, "Service is "+status, gin.H{
		"status":   status,
		"version":  Version,
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": dbStatus,
		"cache":    cacheStatus,
	})
}

// GetRoot describes the service.
func (h *HealthHandler) GetRoot(c *gin.Context) {
	utils.Success(c, http.StatusOK, "Customizable Product Catalog API", gin.H{
		"name":    "catalog-api",
		"version": Version,
		"docs":    h.apiPrefix,
	})
}
