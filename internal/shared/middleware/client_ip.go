package middleware

import (
	"content-backend/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

const clientIPKey = "client_ip"

// ClientIPMiddleware resolves the caller's IP once per request so the
// logger and the rate limiter agree on it.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIPKey, utils.ExtractClientIP(c))
		c.Next()
	}
}

// ClientIP returns the IP stored by ClientIPMiddleware, resolving it on the
// spot when the middleware did not run.
func ClientIP(c *gin.Context) string {
	if ip := c.GetString(clientIPKey); ip != "" {
		return ip
	}
	return utils.ExtractClientIP(c)
}
