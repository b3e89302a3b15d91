package models

import (
	"time"

	"github.com/google/uuid"
)

// BalanceRow is the used/remaining status of one budget line.
type BalanceRow struct {
	Budget      int64   `json:"budget"`
	Used        int64   `json:"used"`
	Remaining   int64   `json:"remaining"`
	PercentUsed float64 `json:"percent_used"`
	OverBudget  bool    `json:"over_budget"`
}

// CategoryBalance is a BalanceRow for one category.
type CategoryBalance struct {
	Category Category `json:"category"`
	BalanceRow
}

// BalanceSnapshot is the derived, point-in-time balance of a project. It
// is never persisted.
type BalanceSnapshot struct {
	ProjectID    uuid.UUID         `json:"project_id"`
	ProjectName  string            `json:"project_name"`
	Total        BalanceRow        `json:"total"`
	NearLimit    bool              `json:"near_limit"`
	Categories   []CategoryBalance `json:"categories"`
	ExpenseCount int               `json:"expense_count"`
	ComputedAt   time.Time         `json:"computed_at"`
}

// NeedsAttention returns the category rows that carry a budget or usage.
// A category with zero budget and zero usage is left out.
func (s BalanceSnapshot) NeedsAttention() []CategoryBalance {
	var rows []CategoryBalance
	for _, row := range s.Categories {
		if row.Budget == 0 && row.Used == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// Category returns the row for c.
func (s BalanceSnapshot) Category(c Category) (CategoryBalance, bool) {
	for _, row := range s.Categories {
		if row.Category == c {
			return row, true
		}
	}
	return CategoryBalance{}, false
}
