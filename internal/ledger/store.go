package ledger

import (
	"context"

	"github.com/bsead/budget-pro/internal/models"
	"github.com/google/uuid"
)

// ChangeOp is the kind of expense row change reported by the store.
type ChangeOp string

const (
	ChangeInsert ChangeOp = "INSERT"
	ChangeUpdate ChangeOp = "UPDATE"
	ChangeDelete ChangeOp = "DELETE"
)

// ExpenseChange is a single change notification. Sessions only use it as
// a trigger to recompute.
type ExpenseChange struct {
	Op        ChangeOp  `json:"op"`
	ProjectID uuid.UUID `json:"project_id"`
	ExpenseID uuid.UUID `json:"expense_id"`
}

// Subscription is a live change feed for one project. Done is closed when
// the feed ends, either through Cancel (Err returns nil) or because the
// channel dropped (Err returns the cause).
type Subscription interface {
	Cancel()
	Done() <-chan struct{}
	Err() error
}

// ProjectReader is the read side a Session and the balance service need.
type ProjectReader interface {
	QueryProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	QueryExpenses(ctx context.Context, projectID uuid.UUID) ([]models.Expense, error)
}

// ChangeFeed delivers expense change notifications scoped to a project.
type ChangeFeed interface {
	SubscribeExpenseChanges(ctx context.Context, projectID uuid.UUID, onChange func(ExpenseChange)) (Subscription, error)
}

// ProjectFinder is what the Router needs.
type ProjectFinder interface {
	FindProjectsByResponsibleParty(ctx context.Context, email, identityID string) ([]models.Project, error)
}

// Store is the full Ledger Store capability. QueryProject, QueryExpense
// and the update/delete methods return a *NotFoundError for unknown ids;
// any other failure is a *StoreError.
type Store interface {
	ProjectReader
	ChangeFeed
	ProjectFinder

	ListProjects(ctx context.Context) ([]models.Project, error)
	InsertProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id uuid.UUID) error

	QueryExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	InsertExpense(ctx context.Context, e *models.Expense) error
	UpdateExpense(ctx context.Context, id uuid.UUID, f models.ExpenseFields) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
}
