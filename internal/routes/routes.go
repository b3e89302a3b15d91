package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bsead/budget-pro/internal/handlers"
)

// Guards are the middlewares every route group picks from.
type Guards struct {
	Authenticate gin.HandlerFunc
	RequireAdmin gin.HandlerFunc
}

func RegisterRoutes(router *gin.Engine, guards Guards, accessHandler *handlers.AccessHandler, projectHandler *handlers.ProjectHandler, expenseHandler *handlers.ExpenseHandler, balanceHandler *handlers.BalanceHandler) {
	api := router.Group("/api/v1")
	api.Use(guards.Authenticate) // every API route requires a verified token

	accessRoutes := NewAccessRoutes(accessHandler)
	accessRoutes.RegisterRoutes(api)

	projectRoutes := NewProjectRoutes(projectHandler, guards.RequireAdmin)
	projectRoutes.RegisterRoutes(api)

	expenseRoutes := NewExpenseRoutes(expenseHandler)
	expenseRoutes.RegisterRoutes(api)

	balanceRoutes := NewBalanceRoutes(balanceHandler)
	balanceRoutes.RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
