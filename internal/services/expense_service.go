package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/models"
)

type ExpenseService struct {
	store  ledger.Store
	logger *slog.Logger
}

func NewExpenseService(store ledger.Store, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{
		store:  store,
		logger: logger,
	}
}

type ExpenseRequest struct {
	Category    models.Category `json:"category" binding:"required"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
}

func (r ExpenseRequest) fields() models.ExpenseFields {
	return models.ExpenseFields{
		Category:    r.Category,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// RecordExpense adds an expense to the project. Spending past a budget is
// allowed; it only shows up as over budget in the balance.
func (s *ExpenseService) RecordExpense(ctx context.Context, projectID string, req ExpenseRequest) (*models.Expense, error) {
	id, err := parseID("project", projectID)
	if err != nil {
		return nil, err
	}

	if err := ledger.ValidateExpense(req.fields()); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		ProjectID:   id,
		Category:    req.Category,
		Amount:      req.Amount,
		Description: req.Description,
	}
	expense.Prepare()

	if err := s.store.InsertExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to record expense: %w", err)
	}

	s.logger.Info("expense recorded", "project_id", id, "expense_id", expense.ID, "category", expense.Category, "amount", expense.Amount)
	return expense, nil
}

// ListExpenses returns the project's expenses newest first. A positive
// limit keeps only that many.
func (s *ExpenseService) ListExpenses(ctx context.Context, projectID string, limit int) ([]models.Expense, error) {
	id, err := parseID("project", projectID)
	if err != nil {
		return nil, err
	}

	// An unknown project is a 404, not an empty list.
	if _, err := s.store.QueryProject(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	expenses, err := s.store.QueryExpenses(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	if limit > 0 && len(expenses) > limit {
		expenses = expenses[:limit]
	}
	return expenses, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	id, err := parseID("expense", expenseID)
	if err != nil {
		return nil, err
	}

	expense, err := s.store.QueryExpense(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// UpdateExpense changes category, amount and description. The owning
// project never changes.
func (s *ExpenseService) UpdateExpense(ctx context.Context, expenseID string, req ExpenseRequest) (*models.Expense, error) {
	id, err := parseID("expense", expenseID)
	if err != nil {
		return nil, err
	}

	fields := req.fields()
	if err := ledger.ValidateExpense(fields); err != nil {
		return nil, err
	}

	expense, err := s.store.UpdateExpense(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	s.logger.Info("expense updated", "project_id", expense.ProjectID, "expense_id", expense.ID)
	return expense, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID string) error {
	id, err := parseID("expense", expenseID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	s.logger.Info("expense deleted", "expense_id", id)
	return nil
}
