package ledger

import (
	"time"

	"github.com/bsead/budget-pro/internal/models"
)

// NearLimitPercent is the total usage above which a snapshot is flagged
// as near its limit.
const NearLimitPercent = 80.0

// Aggregate computes the balance of p from its complete expense set.
// The result does not depend on the order of expenses. ComputedAt is left
// zero so that equal inputs give equal snapshots; callers stamp it.
func Aggregate(p models.Project, expenses []models.Expense) models.BalanceSnapshot {
	used := make(map[models.Category]int64, len(models.Categories))
	var totalUsed int64
	for _, e := range expenses {
		used[e.Category] += e.Amount
		totalUsed += e.Amount
	}

	snap := models.BalanceSnapshot{
		ProjectID:    p.ID,
		ProjectName:  p.Name,
		Total:        row(p.TotalBudget, totalUsed),
		Categories:   make([]models.CategoryBalance, 0, len(models.Categories)),
		ExpenseCount: len(expenses),
	}
	snap.NearLimit = snap.Total.PercentUsed > NearLimitPercent

	for _, c := range models.Categories {
		snap.Categories = append(snap.Categories, models.CategoryBalance{
			Category:   c,
			BalanceRow: row(p.Budget(c), used[c]),
		})
	}
	return snap
}

func row(budget, used int64) models.BalanceRow {
	return models.BalanceRow{
		Budget:      budget,
		Used:        used,
		Remaining:   budget - used,
		PercentUsed: percentUsed(budget, used),
		OverBudget:  used > budget,
	}
}

// percentUsed treats spending against an empty budget as fully consumed.
func percentUsed(budget, used int64) float64 {
	if budget > 0 {
		return float64(used) / float64(budget) * 100
	}
	if used > 0 {
		return 100
	}
	return 0
}

func stamp(s models.BalanceSnapshot, now time.Time) models.BalanceSnapshot {
	s.ComputedAt = now
	return s
}
