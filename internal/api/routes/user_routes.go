package routes

import (
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/handlers"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/middleware"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserRoutes struct {
	handler *handlers.UserHandler
}

func NewUserRoutes(handler *handlers.UserHandler) *UserRoutes {
	return &UserRoutes{handler: handler}
}

func (r *UserRoutes) RegisterRoutes(api *gin.RouterGroup) {
	admin := middleware.RequireRoles(string(user.RoleAdmin))

	users := api.Group("/users")
	users.GET("/me", r.handler.GetCurrentUser)
	users.GET("/:id", r.handler.GetUser)
	users.GET("", admin, r.handler.ListUsers)
	users.POST("", admin, r.handler.CreateUser)
	users.PATCH("/:id/commission-access", admin, r.handler.UpdateCommissionAccess)
}
