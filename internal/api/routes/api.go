package routes

import (
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// NewAPIGroup mounts /api behind authentication and request metrics.
// Extra middleware (rate limiting) runs after authentication.
func NewAPIGroup(router *gin.Engine, authMiddleware gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.RouterGroup {
	api := router.Group("/api")
	api.Use(middleware.CollectMetrics())
	api.Use(authMiddleware)
	api.Use(extra...)
	return api
}
