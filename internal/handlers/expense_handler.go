package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bsead/budget-pro/internal/responses"
	"github.com/bsead/budget-pro/internal/services"
	"github.com/bsead/budget-pro/internal/utils"
)

type ExpenseHandler struct {
	expenseService *services.ExpenseService
}

func NewExpenseHandler(expenseService *services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
	}
}

// ListExpenses handles GET /api/v1/projects/:id/expenses?limit=N
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	limit, err := utils.ParseLimit(c.Query("limit"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid limit")
		return
	}

	expenses, err := h.expenseService.ListExpenses(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve expenses")
		return
	}

	responses.Success(c, http.StatusOK, expenses, "Expenses retrieved successfully")
}

// RecordExpense handles POST /api/v1/projects/:id/expenses
func (h *ExpenseHandler) RecordExpense(c *gin.Context) {
	var req services.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	expense, err := h.expenseService.RecordExpense(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		responses.Error(c, err, "Failed to record expense")
		return
	}

	responses.Success(c, http.StatusCreated, expense, "Expense recorded successfully")
}

// UpdateExpense handles PUT /api/v1/expenses/:id
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	var req services.ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		responses.Error(c, err, "Failed to update expense")
		return
	}

	responses.Success(c, http.StatusOK, expense, "Expense updated successfully")
}

// DeleteExpense handles DELETE /api/v1/expenses/:id
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.expenseService.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		responses.Error(c, err, "Failed to delete expense")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Expense deleted successfully")
}
