package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SharedSecretAuth protects machine-triggered endpoints (the reconciliation
// trigger) with a bearer shared secret. It fails closed: with no secret
// configured every request gets 503.
func SharedSecretAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())

		if secret == "" {
			logger.Error("Shared secret is not configured, rejecting request")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "endpoint not configured"})
			return
		}

		token, ok := bearerToken(c)
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			logger.Warn("Shared secret missing or invalid")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthorized"})
			return
		}

		c.Next()
	}
}
