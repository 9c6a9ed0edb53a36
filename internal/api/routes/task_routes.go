package routes

import (
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/handlers"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// TaskRoutes handles the setup of task, board and timer routes
type TaskRoutes struct {
	tasks   *handlers.TaskHandler
	timers  *handlers.TimerHandler
	breaker *middleware.CircuitBreaker
}

func NewTaskRoutes(tasks *handlers.TaskHandler, timers *handlers.TimerHandler, breaker *middleware.CircuitBreaker) *TaskRoutes {
	return &TaskRoutes{tasks: tasks, timers: timers, breaker: breaker}
}

// RegisterRoutes registers all task-related routes
func (r *TaskRoutes) RegisterRoutes(api *gin.RouterGroup, cache *middleware.CacheMiddleware) {
	tasks := api.Group("/tasks")
	tasks.Use(r.breaker.CircuitBreakerMiddleware())

	// Read operations with caching
	tasks.GET("", cache.CacheResponse(), r.tasks.ListTasks)
	tasks.GET("/:id", cache.CacheResponse(), r.tasks.GetTask)
	tasks.GET("/:id/activity", cache.CacheResponse(), r.tasks.GetTaskActivity)

	// Write operations with cache invalidation
	tasks.POST("", cache.CacheInvalidate(), r.tasks.CreateTask)
	tasks.POST("/move", cache.CacheInvalidate(), r.tasks.MoveTask)
	tasks.PATCH("/:id/status", cache.CacheInvalidate(), r.tasks.UpdateTaskStatus)
	tasks.DELETE("/:id", cache.CacheInvalidate(), r.tasks.DeleteTask)

	// Timers change actualMinutes, so they invalidate too. Timer reads are never cached.
	tasks.POST("/:id/start-timer", cache.CacheInvalidate(), r.timers.StartTimer)
	tasks.POST("/:id/pause-timer", cache.CacheInvalidate(), r.timers.PauseTimer)
	tasks.POST("/:id/stop-timer", cache.CacheInvalidate(), r.timers.StopTimer)
	tasks.GET("/:id/active-timer", r.timers.GetActiveTimer)
	tasks.GET("/:id/time-entries", r.timers.ListTimeEntries)
	tasks.GET("/:id/time-summary", r.timers.GetTimeSummary)

	api.GET("/backlog", r.breaker.CircuitBreakerMiddleware(), cache.CacheResponse(), r.tasks.ListBacklog)
}
