package auth

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the admin session cookie
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := GetSession(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		if session.IsExpired() {
			DeleteSession(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please log in again"})
			c.Abort()
			return
		}

		c.Set("username", session.Username)
		c.Next()
	}
}

// APIKeyMiddleware guards the mobile-app routes with the shared app key
// sent in the X-API-Key header
func APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := os.Getenv("APP_API_KEY")
		if expected == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "API key not configured"})
			c.Abort()
			return
		}

		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// CronAuthMiddleware guards the cron trigger endpoints with a shared secret,
// accepted either as an x-cron-secret header or an Authorization bearer token
func CronAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := os.Getenv("CRON_SECRET")
		if expected == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cron secret not configured"})
			c.Abort()
			return
		}

		secret := c.GetHeader("x-cron-secret")
		if secret == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				secret = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if subtle.ConstantTimeCompare([]byte(secret), []byte(expected)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		c.Next()
	}
}
