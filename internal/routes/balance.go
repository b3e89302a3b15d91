package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bsead/budget-pro/internal/handlers"
)

type BalanceRoutes struct {
	handler *handlers.BalanceHandler
}

func NewBalanceRoutes(handler *handlers.BalanceHandler) *BalanceRoutes {
	return &BalanceRoutes{handler: handler}
}

func (r *BalanceRoutes) RegisterRoutes(router *gin.RouterGroup) {
	balance := router.Group("/projects/:id/balance")
	{
		balance.GET("", r.handler.GetBalance)
		balance.GET("/stream", r.handler.StreamBalance)
	}
}
