// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"net/http"

	"github.com/charmaway/storefront/internal/config"
	"github.com/charmaway/storefront/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

const (
	customerIDKey = "customer_id"
	emailKey      = "customer_email"
	isAdminKey    = "is_admin"
	claimsKey     = "token_claims"
)

// AuthMiddleware requires a valid access token
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		tokenString := auth.ExtractTokenFromHeader(authHeader)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format",
			})
			return
		}

		claims, err := jwtManager.ValidateAccessToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// AdminMiddleware ensures the customer is an admin. Must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetCustomerIDFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			return
		}

		if !IsAdminFromContext(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
			})
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware identifies the customer when a valid token is sent and
// lets anonymous requests through otherwise
func OptionalAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	jwtManager := auth.NewJWTManager(cfg)

	return func(c *gin.Context) {
		tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.Next()
			return
		}

		if claims, err := jwtManager.ValidateAccessToken(tokenString); err == nil {
			setClaims(c, claims)
		}

		c.Next()
	}
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(customerIDKey, claims.CustomerID)
	c.Set(emailKey, claims.Email)
	c.Set(isAdminKey, claims.IsAdmin)
	c.Set(claimsKey, claims)
}

// GetCustomerIDFromContext extracts the authenticated customer ID
func GetCustomerIDFromContext(c *gin.Context) (uint, bool) {
	id, ok := c.Get(customerIDKey)
	if !ok {
		return 0, false
	}
	customerID, ok := id.(uint)
	return customerID, ok && customerID > 0
}

// GetEmailFromContext extracts the authenticated customer email
func GetEmailFromContext(c *gin.Context) (string, bool) {
	email, ok := c.Get(emailKey)
	if !ok {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// IsAdminFromContext checks the admin flag of the token
func IsAdminFromContext(c *gin.Context) bool {
	return c.GetBool(isAdminKey)
}
