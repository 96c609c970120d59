package main

import (
	"context"

	"content-backend/internal/shared/middleware"
	"content-backend/pkg/container"

	"github.com/gin-gonic/gin"
)

func SetupRouter(ctx context.Context, c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.ClientIPMiddleware(),
		middleware.Logger(),
		middleware.CORS(c.Config.App.CORSOrigins...),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", c.PostHandler.Health)

		setupBlogRoutes(ctx, v1, c)
	}

	return router
}

// setupBlogRoutes - reads are public, writes go through auth (when enabled)
// and the per-IP rate limiter (when RPS > 0).
func setupBlogRoutes(ctx context.Context, rg *gin.RouterGroup, c *container.Container) {
	h := c.PostHandler

	var guards []gin.HandlerFunc
	if c.Config.RateLimit.RPS > 0 {
		limiter := middleware.NewIPRateLimiter(ctx, c.Config.RateLimit.RPS, c.Config.RateLimit.Burst)
		guards = append(guards, limiter.Middleware())
	}
	if c.Config.Auth.Enabled {
		guards = append(guards, middleware.AdminAuth(c.JWTManager))
	}

	blog := rg.Group("/blog")
	{
		blog.GET("", h.Get)

		write := blog.Group("", guards...)
		write.POST("", h.Create)
		write.PUT("", h.Update)
		write.DELETE("", h.Delete)
		write.GET("/export", h.Export)
	}
}
