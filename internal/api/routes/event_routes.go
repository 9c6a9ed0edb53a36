package routes

import (
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/api/handlers"
	"github.com/gin-gonic/gin"
)

type EventRoutes struct {
	handler *handlers.EventHandler
}

func NewEventRoutes(handler *handlers.EventHandler) *EventRoutes {
	return &EventRoutes{handler: handler}
}

// RegisterRoutes keeps the stream out of the circuit breaker and response cache.
func (r *EventRoutes) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/events/ws", r.handler.Stream)
}
