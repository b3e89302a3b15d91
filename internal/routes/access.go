package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bsead/budget-pro/internal/handlers"
)

type AccessRoutes struct {
	handler *handlers.AccessHandler
}

func NewAccessRoutes(handler *handlers.AccessHandler) *AccessRoutes {
	return &AccessRoutes{handler: handler}
}

func (r *AccessRoutes) RegisterRoutes(router *gin.RouterGroup) {
	me := router.Group("/me")
	{
		me.GET("/destination", r.handler.GetDestination)
	}
}
