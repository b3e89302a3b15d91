package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Expense is a single recorded expenditure against one project and one
// category. ProjectID never changes after creation.
type Expense struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Category    Category  `json:"category"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	// Seq is the store's insertion order, used only to break CreatedAt ties.
	Seq int64 `json:"-"`
}

func (e *Expense) Prepare() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Description = strings.TrimSpace(e.Description)
}

// ExpenseFields are the mutable parts of an Expense.
type ExpenseFields struct {
	Category    Category
	Amount      int64
	Description string
}

func (f *ExpenseFields) Prepare() {
	f.Description = strings.TrimSpace(f.Description)
}
