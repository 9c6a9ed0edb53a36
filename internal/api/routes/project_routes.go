package routes

import (
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/handlers"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/middleware"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type ProjectRoutes struct {
	handler *handlers.ProjectHandler
}

func NewProjectRoutes(handler *handlers.ProjectHandler) *ProjectRoutes {
	return &ProjectRoutes{handler: handler}
}

func (r *ProjectRoutes) RegisterRoutes(api *gin.RouterGroup, cache *middleware.CacheMiddleware) {
	staff := middleware.RequireRoles(string(user.RoleAdmin), string(user.RoleTeam))

	projects := api.Group("/projects")
	projects.GET("", cache.CacheResponse(), r.handler.ListProjects)
	projects.GET("/:id", cache.CacheResponse(), r.handler.GetProject)
	projects.GET("/:id/milestones", cache.CacheResponse(), r.handler.ListMilestones)
	projects.POST("", staff, cache.CacheInvalidate(), r.handler.CreateProject)
	projects.POST("/:id/milestones", staff, cache.CacheInvalidate(), r.handler.CreateMilestone)
}
