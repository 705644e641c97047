package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/chicommerce/catalog-api/internal/utils"
)

// APIKeyHeader carries the admin key on administrative routes.
const APIKeyHeader = "X-API-Key"

// AdminAuthMiddleware guards administrative routes with a single admin key.
// The configured key may be stored either in plain text or as a bcrypt hash.
type AdminAuthMiddleware struct {
	adminKey    string
	hashed      bool
	rateLimiter *InvalidAuthRateLimiter
}

// NewAdminAuthMiddleware constructs an AdminAuthMiddleware. limit is the
// number of rejected keys allowed per client IP per minute.
func NewAdminAuthMiddleware(adminKey string, limit int) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{
		adminKey:    adminKey,
		hashed:      strings.HasPrefix(adminKey, "$2"),
		rateLimiter: NewInvalidAuthRateLimiter(limit),
	}
}

// Handle returns a Gin middleware function that enforces the admin key.
func (m *AdminAuthMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(APIKeyHeader))
		if key == "" {
			m.handleAuthError(c, http.StatusUnauthorized, utils.ErrMissingAPIKey.Error(), "API key is required")
			return
		}
		if !m.valid(key) {
			m.handleAuthError(c, http.StatusForbidden, utils.ErrInvalidAPIKey.Error(), "Invalid API key")
			return
		}

		c.Set("is_admin", true)
		c.Next()
	}
}

func (m *AdminAuthMiddleware) valid(key string) bool {
	if m.hashed {
		return bcrypt.CompareHashAndPassword([]byte(m.adminKey), []byte(key)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(m.adminKey), []byte(key)) == 1
}

func (m *AdminAuthMiddleware) handleAuthError(c *gin.Context, status int, code, message string) {
	// Apply rate limit for invalid auth attempts
	if !m.rateLimiter.Allow(c.ClientIP()) {
		utils.Error(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Too many invalid authentication attempts")
		c.Abort()
		return
	}

	utils.Error(c, status, code, message)
	c.Abort()
}

// IsAdmin reports whether the request passed admin authentication.
func IsAdmin(c *gin.Context) bool {
	return c.GetBool("is_admin")
}
