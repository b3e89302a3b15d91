package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/bsead/budget-pro/internal/handlers"
)

type ExpenseRoutes struct {
	handler *handlers.ExpenseHandler
}

func NewExpenseRoutes(handler *handlers.ExpenseHandler) *ExpenseRoutes {
	return &ExpenseRoutes{handler: handler}
}

func (r *ExpenseRoutes) RegisterRoutes(router *gin.RouterGroup) {
	byProject := router.Group("/projects/:id/expenses")
	{
		byProject.GET("", r.handler.ListExpenses)
		byProject.POST("", r.handler.RecordExpense)
	}

	expenses := router.Group("/expenses")
	{
		expenses.PUT("/:id", r.handler.UpdateExpense)
		expenses.DELETE("/:id", r.handler.DeleteExpense)
	}
}
