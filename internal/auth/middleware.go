package auth

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ctxAccountID = "account_id"
	ctxMobile    = "mobile"
)

// AuthMiddleware validates JWT tokens and protects routes
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		// Extract token from "Bearer <token>" format
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header format. Expected: Bearer <token>",
			})
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			log.Printf("[Auth] token validation failed: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(ctxAccountID, claims.AccountID)
		c.Set(ctxMobile, claims.Mobile)

		c.Next()
	}
}

// GetAccountID retrieves the authenticated account ID from the context
func GetAccountID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ctxAccountID)
	if !exists {
		return 0, false
	}

	id, ok := v.(uint)
	return id, ok
}

// GetMobile retrieves the authenticated mobile number from the context
func GetMobile(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxMobile)
	if !exists {
		return "", false
	}

	mobile, ok := v.(string)
	return mobile, ok
}
