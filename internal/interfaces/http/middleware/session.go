// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/charmaway/storefront/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionIDKey = "session_id"

// GuestSession makes sure every visitor carries a session cookie. The id keys guest carts
// and staged checkouts.
func GuestSession(cfg *config.Config) gin.HandlerFunc {
	name := cfg.Shop.SessionCookieName

	return func(c *gin.Context) {
		id, err := c.Cookie(name)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(name, id, cfg.Shop.SessionCookieMaxAge, "/", "", cfg.IsProduction(), true)
		}

		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// GetSessionID returns the guest session id set by GuestSession
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
