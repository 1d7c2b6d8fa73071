package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abduss/moviesapi/internal/logger"
)

const readinessTimeout = 5 * time.Second

// Pinger is a dependency that can report its own availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

func registerHealthRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		checks := []struct {
			name   string
			pinger Pinger
		}{
			{"postgres", deps.DB},
			{"minio", deps.ObjectStore},
		}

		// Probes run concurrently; the first failure in check order is reported.
		failures := make([]error, len(checks))
		var g errgroup.Group
		for i, check := range checks {
			if check.pinger == nil {
				continue
			}
			g.Go(func() error {
				failures[i] = check.pinger.Ping(ctx)
				return nil
			})
		}
		_ = g.Wait()

		for i, err := range failures {
			if err == nil {
				continue
			}
			logger.FromContext(c).Warn("readiness check failed", zap.String("component", checks[i].name), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "degraded",
				"component": checks[i].name,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
