package routes

import (
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/handlers"
	"github.com/gin-gonic/gin"
)

// CommissionRoutes are never response-cached: the payload depends on the caller.
type CommissionRoutes struct {
	handler *handlers.CommissionHandler
}

func NewCommissionRoutes(handler *handlers.CommissionHandler) *CommissionRoutes {
	return &CommissionRoutes{handler: handler}
}

func (r *CommissionRoutes) RegisterRoutes(api *gin.RouterGroup) {
	commissions := api.Group("/commissions")
	commissions.GET("", r.handler.ListCommissions)
	commissions.GET("/:userId", r.handler.GetCommission)
	commissions.PUT("/:userId", r.handler.UpsertCommission)
}
