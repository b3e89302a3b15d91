package ledger

import (
	"net/mail"
	"strings"

	"github.com/bsead/budget-pro/internal/models"
)

// ValidationResult is the outcome of Validate. OK is false when the
// allocation must not be persisted. Sum and Excess saturate at
// math.MaxInt64.
type ValidationResult struct {
	OK     bool
	Field  string
	Reason string
	Sum    int64
	Total  int64
	Excess int64
}

// Err returns nil for an accepted allocation and a *ValidationError
// otherwise.
func (r ValidationResult) Err() error {
	if r.OK {
		return nil
	}
	return &ValidationError{
		Field:  r.Field,
		Reason: r.Reason,
		Sum:    r.Sum,
		Total:  r.Total,
		Excess: r.Excess,
	}
}

// Validate checks an allocation in base units: every amount is
// non-negative and the five sub-budgets do not exceed the total.
func Validate(a models.Allocation) ValidationResult {
	fields := []struct {
		name  string
		value int64
	}{
		{"total_budget", a.TotalBudget},
		{"budget_materials", a.BudgetMaterials},
		{"budget_student_labor", a.BudgetStudentLabor},
		{"budget_equipment", a.BudgetEquipment},
		{"budget_activity", a.BudgetActivity},
		{"budget_allowance", a.BudgetAllowance},
	}
	for _, f := range fields {
		if f.value < 0 {
			return ValidationResult{Field: f.name, Reason: "must not be negative", Total: a.TotalBudget}
		}
	}

	if exceedsTotal(a) {
		sum := a.CategorySum()
		return ValidationResult{
			Reason: "category budgets exceed total budget",
			Sum:    sum,
			Total:  a.TotalBudget,
			Excess: sum - a.TotalBudget,
		}
	}
	return ValidationResult{OK: true, Sum: a.CategorySum(), Total: a.TotalBudget}
}

// exceedsTotal adds the sub-budgets against the remaining headroom, so it
// cannot overflow. All amounts must already be non-negative.
func exceedsTotal(a models.Allocation) bool {
	var acc int64
	for _, b := range a.Budgets() {
		if b > a.TotalBudget-acc {
			return true
		}
		acc += b
	}
	return false
}

// ValidateProject checks the descriptive fields of a project and then its
// allocation.
func ValidateProject(p *models.Project) error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	email := strings.TrimSpace(p.ResponsibleEmail)
	if email == "" {
		return &ValidationError{Field: "responsible_email", Reason: "is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &ValidationError{Field: "responsible_email", Reason: "is not a valid email address"}
	}
	return Validate(p.Allocation).Err()
}

// ValidateExpense checks the mutable fields of an expense.
func ValidateExpense(f models.ExpenseFields) error {
	if !f.Category.Valid() {
		return &ValidationError{Field: "category", Reason: "must be one of materials, student_labor, equipment, activity, allowance"}
	}
	if f.Amount < 0 {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if strings.TrimSpace(f.Description) == "" {
		return &ValidationError{Field: "description", Reason: "is required"}
	}
	return nil
}
