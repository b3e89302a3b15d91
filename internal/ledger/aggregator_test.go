package ledger

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsead/budget-pro/internal/models"
)

func scenarioProject() models.Project {
	return models.Project{
		ID:   uuid.New(),
		Name: "Scenario A",
		Allocation: models.Allocation{
			TotalBudget:        10_000_000,
			BudgetMaterials:    4_000_000,
			BudgetStudentLabor: 3_000_000,
		},
	}
}

func expense(p models.Project, c models.Category, amount int64) models.Expense {
	return models.Expense{ID: uuid.New(), ProjectID: p.ID, Category: c, Amount: amount, Description: string(c)}
}

func TestAggregate_OverspentCategory(t *testing.T) {
	p := scenarioProject()
	require.True(t, Validate(p.Allocation).OK)

	snap := Aggregate(p, []models.Expense{expense(p, models.CategoryMaterials, 5_000_000)})

	materials, ok := snap.Category(models.CategoryMaterials)
	require.True(t, ok)
	assert.Equal(t, int64(5_000_000), materials.Used)
	assert.Equal(t, int64(4_000_000), materials.Budget)
	assert.Equal(t, int64(-1_000_000), materials.Remaining)
	assert.True(t, materials.OverBudget)
	assert.InDelta(t, 125.0, materials.PercentUsed, 1e-9)

	assert.Equal(t, int64(5_000_000), snap.Total.Used)
	assert.Equal(t, int64(5_000_000), snap.Total.Remaining)
	assert.False(t, snap.Total.OverBudget)
	assert.False(t, snap.NearLimit)
	assert.Equal(t, 1, snap.ExpenseCount)
}

func TestAggregate_UnbudgetedCategoryWithSpending(t *testing.T) {
	p := scenarioProject()
	snap := Aggregate(p, []models.Expense{expense(p, models.CategoryEquipment, 1)})

	equipment, _ := snap.Category(models.CategoryEquipment)
	assert.Equal(t, 100.0, equipment.PercentUsed)
	assert.True(t, equipment.OverBudget)
	assert.Equal(t, int64(-1), equipment.Remaining)
}

func TestAggregate_ZeroBudgetZeroUsageIsNotReported(t *testing.T) {
	p := scenarioProject()
	snap := Aggregate(p, nil)

	require.Len(t, snap.Categories, len(models.Categories))
	activity, ok := snap.Category(models.CategoryActivity)
	require.True(t, ok)
	assert.Equal(t, 0.0, activity.PercentUsed)
	assert.False(t, activity.OverBudget)

	var attention []models.Category
	for _, row := range snap.NeedsAttention() {
		attention = append(attention, row.Category)
	}
	assert.Equal(t, []models.Category{models.CategoryMaterials, models.CategoryStudentLabor}, attention)
}

func TestAggregate_TotalOverBudgetAndNearLimit(t *testing.T) {
	p := models.Project{ID: uuid.New(), Allocation: models.Allocation{TotalBudget: 100, BudgetAllowance: 100}}

	near := Aggregate(p, []models.Expense{expense(p, models.CategoryAllowance, 81)})
	assert.True(t, near.NearLimit)
	assert.False(t, near.Total.OverBudget)

	over := Aggregate(p, []models.Expense{expense(p, models.CategoryAllowance, 81), expense(p, models.CategoryActivity, 30)})
	assert.True(t, over.Total.OverBudget)
	assert.Equal(t, int64(-11), over.Total.Remaining)
}

func TestAggregate_OrderIndependentAndIdempotent(t *testing.T) {
	p := scenarioProject()
	rng := rand.New(rand.NewSource(42))
	var expenses []models.Expense
	var want int64
	for i := 0; i < 50; i++ {
		c := models.Categories[rng.Intn(len(models.Categories))]
		amount := rng.Int63n(300_000)
		want += amount
		expenses = append(expenses, expense(p, c, amount))
	}

	first := Aggregate(p, expenses)
	assert.Equal(t, want, first.Total.Used)
	assert.Equal(t, first, Aggregate(p, expenses))

	for i := 0; i < 10; i++ {
		shuffled := append([]models.Expense(nil), expenses...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, first, Aggregate(p, shuffled))
	}
}
