// cmd/worker/startup.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-backend/pkg/container"
)

// startServices runs the startup checks and the probe server.
func startServices(ctx context.Context, c *container.Container) error {
	log.Info().Msg("[Worker] library worker starting")

	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Redis Connection", c.Redis.HealthCheck},
		{"Lockout Cache", c.Cache.Ping},
	}

	for _, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := check.fn(checkCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("[Worker] check ok")
	}

	go startHealthCheckServer(ctx, c)
	return nil
}

// startHealthCheckServer serves /health and /ready for container probes.
func startHealthCheckServer(ctx context.Context, c *container.Container) {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(g *gin.Context) {
		g.JSON(http.StatusOK, gin.H{"status": "UP", "service": "library-worker"})
	})
	router.GET("/ready", func(g *gin.Context) {
		pingCtx, cancel := context.WithTimeout(g.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.Cache.Ping(pingCtx); err != nil {
			g.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_READY", "error": err.Error()})
			return
		}
		g.JSON(http.StatusOK, gin.H{"status": "READY"})
	})

	srv := &http.Server{
		Addr:              ":" + c.Config.Worker.HealthPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", srv.Addr).Msg("[Health] starting health check server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("[Health] failed to start")
	}
}
