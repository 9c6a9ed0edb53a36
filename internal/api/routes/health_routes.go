package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HealthChecker is implemented by the database and the Redis client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CacheStats is optionally implemented by the cache for /health/cache.
type CacheStats interface {
	HealthChecker
	Stats() map[string]interface{}
}

// SetupHealthRoutes registers health check and metrics endpoints.
// cache may be nil when Redis is disabled.
func SetupHealthRoutes(router *gin.Engine, db HealthChecker, cache CacheStats) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
		})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status:    "unavailable",
				Timestamp: time.Now().UTC(),
				Details:   map[string]interface{}{"database": err.Error()},
			})
			return
		}
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "ready",
			Timestamp: time.Now().UTC(),
		})
	})

	router.GET("/health/cache", func(c *gin.Context) {
		if cache == nil {
			c.JSON(http.StatusOK, HealthResponse{Status: "disabled", Timestamp: time.Now().UTC()})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		if err := cache.HealthCheck(ctx); err != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		c.JSON(code, HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC(),
			Details:   cache.Stats(),
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
