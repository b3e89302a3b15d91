package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/models"
)

type ExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

const expenseColumns = `id, seq, project_id, category::text, amount, description, created_at`

func scanExpense(row pgx.Row, e *models.Expense) error {
	return row.Scan(
		&e.ID,
		&e.Seq,
		&e.ProjectID,
		&e.Category,
		&e.Amount,
		&e.Description,
		&e.CreatedAt,
	)
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	expense.Prepare()

	query := `
		INSERT INTO expenses (id, project_id, category, amount, description)
		VALUES ($1, $2, $3::text::expense_category_t, $4, $5)
		RETURNING seq, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		expense.ID,
		expense.ProjectID,
		string(expense.Category),
		expense.Amount,
		expense.Description,
	).Scan(&expense.Seq, &expense.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &ledger.NotFoundError{Kind: "project", ID: expense.ProjectID.String()}
		}
		return storeError("insert expense", err)
	}
	return nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	var expense models.Expense
	if err := scanExpense(r.pool.QueryRow(ctx, query, id), &expense); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ledger.NotFoundError{Kind: "expense", ID: id.String()}
		}
		return nil, storeError("query expense", err)
	}
	return &expense, nil
}

// GetByProjectID returns the project's expenses newest first.
func (r *ExpenseRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses
		WHERE project_id = $1
		ORDER BY created_at DESC, seq DESC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, storeError("query expenses", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var expense models.Expense
		if err := scanExpense(rows, &expense); err != nil {
			return nil, storeError("query expenses", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("query expenses", err)
	}
	return expenses, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, id uuid.UUID, f models.ExpenseFields) (*models.Expense, error) {
	f.Prepare()
	query := `
		UPDATE expenses SET category = $2::text::expense_category_t, amount = $3, description = $4
		WHERE id = $1
		RETURNING ` + expenseColumns

	var expense models.Expense
	err := scanExpense(r.pool.QueryRow(ctx, query, id, string(f.Category), f.Amount, f.Description), &expense)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ledger.NotFoundError{Kind: "expense", ID: id.String()}
		}
		return nil, storeError("update expense", err)
	}
	return &expense, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM expenses WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return storeError("delete expense", err)
	}

	if result.RowsAffected() == 0 {
		return &ledger.NotFoundError{Kind: "expense", ID: id.String()}
	}
	return nil
}
