package routes

import (
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/handlers"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

type SprintRoutes struct {
	sprints *handlers.SprintHandler
	tasks   *handlers.TaskHandler
	breaker *middleware.CircuitBreaker
}

func NewSprintRoutes(sprints *handlers.SprintHandler, tasks *handlers.TaskHandler, breaker *middleware.CircuitBreaker) *SprintRoutes {
	return &SprintRoutes{sprints: sprints, tasks: tasks, breaker: breaker}
}

func (r *SprintRoutes) RegisterRoutes(api *gin.RouterGroup, cache *middleware.CacheMiddleware) {
	sprints := api.Group("/sprints")
	sprints.Use(r.breaker.CircuitBreakerMiddleware())

	sprints.GET("", cache.CacheResponse(), r.sprints.ListSprints)
	sprints.GET("/:id", cache.CacheResponse(), r.sprints.GetSprint)
	sprints.GET("/:id/backlog", cache.CacheResponse(), r.tasks.SprintBacklog)
	sprints.GET("/:id/tasks", cache.CacheResponse(), r.tasks.ListSprintTasks)

	sprints.POST("", cache.CacheInvalidate(), r.sprints.CreateSprint)
	sprints.PATCH("/:id/status", cache.CacheInvalidate(), r.sprints.UpdateSprintStatus)
	sprints.POST("/:id/projects", cache.CacheInvalidate(), r.sprints.LinkProject)
	sprints.DELETE("/:id/projects/:projectId", cache.CacheInvalidate(), r.sprints.UnlinkProject)
}
