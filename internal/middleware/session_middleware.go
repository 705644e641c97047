package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/chicommerce/catalog-api/internal/config"
	"github.com/chicommerce/catalog-api/internal/utils"
)

const sessionIDKey = "session_id"

// SessionMiddleware binds every request to an anonymous client session kept
// in a signed cookie. A missing, expired or tampered cookie starts a new
// session.
type SessionMiddleware struct {
	cfg config.SessionConfig
}

// NewSessionMiddleware constructs a SessionMiddleware.
func NewSessionMiddleware(cfg config.SessionConfig) *SessionMiddleware {
	return &SessionMiddleware{cfg: cfg}
}

// Handle returns a Gin middleware function that resolves the session id.
func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(m.cfg.CookieName); err == nil && raw != "" {
			if sid, err := utils.ParseSessionToken(raw, m.cfg.Secret); err == nil {
				c.Set(sessionIDKey, sid)
				c.Next()
				return
			}
		}

		sid, err := utils.NewSessionID()
		if err != nil {
			log.Error().Err(err).Msg("Failed to generate session id")
			utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start session")
			c.Abort()
			return
		}
		token, err := utils.IssueSessionToken(sid, m.cfg.Secret, m.cfg.TTL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to sign session token")
			utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to start session")
			c.Abort()
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(m.cfg.CookieName, token, int(m.cfg.TTL.Seconds()), "/", "", m.cfg.Secure, true)
		c.Set(sessionIDKey, sid)
		c.Next()
	}
}

// GetSessionID returns the session id resolved by SessionMiddleware.
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
