package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/models"
)

// LedgerStore is the Postgres implementation of ledger.Store.
type LedgerStore struct {
	projects *ProjectRepository
	expenses *ExpenseRepository
	changes  *ChangeListener
}

var _ ledger.Store = (*LedgerStore)(nil)

func NewLedgerStore(projects *ProjectRepository, expenses *ExpenseRepository, changes *ChangeListener) *LedgerStore {
	return &LedgerStore{projects: projects, expenses: expenses, changes: changes}
}

func (s *LedgerStore) QueryProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *LedgerStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.projects.List(ctx)
}

func (s *LedgerStore) FindProjectsByResponsibleParty(ctx context.Context, email, identityID string) ([]models.Project, error) {
	return s.projects.GetByResponsibleParty(ctx, email, identityID)
}

func (s *LedgerStore) InsertProject(ctx context.Context, p *models.Project) error {
	return s.projects.Create(ctx, p)
}

func (s *LedgerStore) UpdateProject(ctx context.Context, p *models.Project) error {
	return s.projects.Update(ctx, p)
}

func (s *LedgerStore) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return s.projects.Delete(ctx, id)
}

func (s *LedgerStore) QueryExpenses(ctx context.Context, projectID uuid.UUID) ([]models.Expense, error) {
	return s.expenses.GetByProjectID(ctx, projectID)
}

func (s *LedgerStore) QueryExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	return s.expenses.GetByID(ctx, id)
}

func (s *LedgerStore) InsertExpense(ctx context.Context, e *models.Expense) error {
	return s.expenses.Create(ctx, e)
}

func (s *LedgerStore) UpdateExpense(ctx context.Context, id uuid.UUID, f models.ExpenseFields) (*models.Expense, error) {
	return s.expenses.Update(ctx, id, f)
}

func (s *LedgerStore) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return s.expenses.Delete(ctx, id)
}

func (s *LedgerStore) SubscribeExpenseChanges(ctx context.Context, projectID uuid.UUID, onChange func(ledger.ExpenseChange)) (ledger.Subscription, error) {
	return s.changes.SubscribeExpenseChanges(ctx, projectID, onChange)
}
