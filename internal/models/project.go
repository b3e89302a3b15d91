package models

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project is a funded research effort with a total budget and five
// earmarked sub-budgets. Amounts are in the smallest currency unit.
type Project struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	ResponsibleName  *string   `json:"responsible_name,omitempty"`
	ResponsibleEmail string    `json:"responsible_email"`
	ResponsibleID    *string   `json:"responsible_id,omitempty"`
	Allocation
	CreatedAt time.Time `json:"created_at"`
}

// Allocation is the budget part of a Project. Edits always replace the
// whole allocation.
type Allocation struct {
	TotalBudget        int64 `json:"total_budget"`
	BudgetMaterials    int64 `json:"budget_materials"`
	BudgetStudentLabor int64 `json:"budget_student_labor"`
	BudgetEquipment    int64 `json:"budget_equipment"`
	BudgetActivity     int64 `json:"budget_activity"`
	BudgetAllowance    int64 `json:"budget_allowance"`
}

// Budgets returns the five sub-budgets in Categories order.
func (a Allocation) Budgets() []int64 {
	return []int64{a.BudgetMaterials, a.BudgetStudentLabor, a.BudgetEquipment, a.BudgetActivity, a.BudgetAllowance}
}

// CategorySum is the sum of the five sub-budgets, saturated at
// math.MaxInt64. Sub-budgets are assumed non-negative.
func (a Allocation) CategorySum() int64 {
	var sum int64
	for _, b := range a.Budgets() {
		if b > math.MaxInt64-sum {
			return math.MaxInt64
		}
		sum += b
	}
	return sum
}

// Budget returns the sub-budget for c, or 0 for an unknown category.
func (a Allocation) Budget(c Category) int64 {
	switch c {
	case CategoryMaterials:
		return a.BudgetMaterials
	case CategoryStudentLabor:
		return a.BudgetStudentLabor
	case CategoryEquipment:
		return a.BudgetEquipment
	case CategoryActivity:
		return a.BudgetActivity
	case CategoryAllowance:
		return a.BudgetAllowance
	}
	return 0
}

func (p *Project) Prepare() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Name = strings.TrimSpace(p.Name)
	p.ResponsibleEmail = NormalizeEmail(p.ResponsibleEmail)
	if p.ResponsibleName != nil {
		name := strings.TrimSpace(*p.ResponsibleName)
		if name == "" {
			p.ResponsibleName = nil
		} else {
			p.ResponsibleName = &name
		}
	}
}

// NormalizeEmail is the form responsible emails are stored and matched in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
