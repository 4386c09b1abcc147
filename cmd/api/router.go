package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
	"library-backend/pkg/container"
)

// newRateLimiter returns nil when RATE_LIMIT_RPS <= 0.
func newRateLimiter(c *container.Container) *middleware.RateLimiter {
	if c.Config.Limit.RPS <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(c.Config.Limit.RPS, c.Config.Limit.Burst)
}

func SetupRouter(c *container.Container, limiter *middleware.RateLimiter) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ClientIP(),
		middleware.CurrentUser(c.CatalogService),
	)

	setupGraphQLRoutes(router, c, limiter)
	setupSubscriptionRoutes(router, c)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))
	}

	return router
}

// ========================================
// GRAPHQL ROUTES
// ========================================
func setupGraphQLRoutes(router *gin.Engine, c *container.Container, limiter *middleware.RateLimiter) {
	gql := router.Group("/graphql")
	if limiter != nil {
		gql.Use(limiter.Middleware())
	}
	{
		gql.POST("", c.GraphQLHandler.Serve)
		gql.GET("", c.GraphQLHandler.Serve)
	}
}

// ========================================
// SUBSCRIPTION ROUTES
// ========================================
func setupSubscriptionRoutes(router *gin.Engine, c *container.Container) {
	subs := router.Group("/subscriptions")
	{
		subs.GET("/books", c.SSEHandler.Stream)
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":      "ok",
			"timestamp":   time.Now().Format(time.RFC3339),
			"version":     appCtx.Config.App.Version,
			"subscribers": appCtx.Hub.SubscriberCount(),
		}

		// Check store
		storeStatus := "ok"
		if appCtx.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				storeStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		// Check redis
		redisStatus := "disabled"
		if appCtx.Cache != nil {
			redisStatus = "ok"
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		health["services"] = gin.H{
			"store": gin.H{"driver": appCtx.Config.Store.Driver, "status": storeStatus},
			"redis": redisStatus,
		}

		statusCode := http.StatusOK
		if storeStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		response.Success(c, statusCode, health)
	}
}
