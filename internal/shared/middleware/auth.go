package middleware

import (
	"strings"

	"content-backend/internal/shared/response"
	"content-backend/pkg/jwt"
	"content-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

const ClaimsKey = "claims"

// AdminAuth guards content mutations: a valid bearer access token with the
// admin or editor role is required.
func AdminAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}

		// 2. Verify
		claims, err := manager.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			logger.Debug("[Auth] token rejected", map[string]interface{}{
				"request_id": c.GetString(RequestIDKey),
				"error":      err.Error(),
			})
			response.Unauthorized(c, "invalid token")
			return
		}

		// 3. Role
		if !claims.CanWrite() {
			response.Forbidden(c, "access denied: editor role required")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
