package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/models"
	"github.com/bsead/budget-pro/internal/utils"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func grantRequest() ProjectRequest {
	return ProjectRequest{
		Name:               " NSF Grant #2049 ",
		ResponsibleEmail:   "Kim@U.edu",
		TotalBudget:        10_000_000,
		BudgetMaterials:    4_000_000,
		BudgetStudentLabor: 3_000_000,
		BudgetEquipment:    1_000_000,
		BudgetActivity:     1_000_000,
		BudgetAllowance:    1_000_000,
	}
}

func TestProjectService_CreateNormalizesAndPersists(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := NewProjectService(store, discard)

	p, err := svc.CreateProject(context.Background(), grantRequest())
	require.NoError(t, err)
	assert.Equal(t, "NSF Grant #2049", p.Name)
	assert.Equal(t, "kim@u.edu", p.ResponsibleEmail)

	got, err := svc.GetProjectByID(context.Background(), p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, p.Allocation, got.Allocation)
}

func TestProjectService_EmailsWithPunctuationRouteToTheirProject(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := NewProjectService(store, discard)
	router := ledger.NewRouter(store, ledger.DefaultAdminRole)
	ctx := context.Background()

	for _, email := range []string{"O'Brien@u.edu", "a&b@u.edu"} {
		req := grantRequest()
		req.ResponsibleEmail = email
		p, err := svc.CreateProject(ctx, req)
		require.NoError(t, err, email)
		assert.Equal(t, models.NormalizeEmail(email), p.ResponsibleEmail)

		dest, err := router.Route(ctx, models.Identity{ID: "sub-" + email, Email: email})
		require.NoError(t, err)
		assert.Equal(t, models.DestinationProject, dest.Kind, email)
		assert.Equal(t, p.ID, dest.ProjectID)
	}
}

func TestProjectService_OverflowingAllocationIsRejected(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := NewProjectService(store, discard)
	ctx := context.Background()

	req := grantRequest()
	req.TotalBudget = 0
	req.BudgetMaterials = math.MaxInt64
	req.BudgetStudentLabor = math.MaxInt64
	req.BudgetEquipment = 2
	req.BudgetActivity = 0
	req.BudgetAllowance = 0

	_, err := svc.CreateProject(ctx, req)
	var verr *ledger.ValidationError
	require.True(t, errors.As(err, &verr), "got %v", err)

	projects, err := svc.ListProjects(ctx)
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectService_RejectedEditLeavesProjectUntouched(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := NewProjectService(store, discard)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, grantRequest())
	require.NoError(t, err)

	req := grantRequest()
	req.TotalBudget = 9_000_000
	_, err = svc.UpdateProject(ctx, p.ID.String(), req)

	var verr *ledger.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, int64(1_000_000), verr.Excess)

	got, err := svc.GetProjectByID(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000), got.TotalBudget)
}

func TestProjectService_UpdateReplacesAllocation(t *testing.T) {
	store := ledger.NewMemoryStore()
	svc := NewProjectService(store, discard)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, grantRequest())
	require.NoError(t, err)

	req := grantRequest()
	req.TotalBudget = 20_000_000
	req.BudgetMaterials = 0
	updated, err := svc.UpdateProject(ctx, p.ID.String(), req)
	require.NoError(t, err)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)

	got, err := svc.GetProjectByID(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(20_000_000), got.TotalBudget)
	assert.Zero(t, got.BudgetMaterials)
}

func TestProjectService_BadIDsAndMissingProjects(t *testing.T) {
	svc := NewProjectService(ledger.NewMemoryStore(), discard)
	ctx := context.Background()

	_, err := svc.GetProjectByID(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, utils.ErrInvalidInput))

	_, err = svc.GetProjectByID(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, ledger.ErrNotFound))

	_, err = svc.UpdateProject(ctx, uuid.NewString(), grantRequest())
	assert.True(t, errors.Is(err, ledger.ErrNotFound))

	assert.True(t, errors.Is(svc.DeleteProject(ctx, uuid.NewString()), ledger.ErrNotFound))
}

func TestProjectService_DeleteRemovesExpenses(t *testing.T) {
	store := ledger.NewMemoryStore()
	projects := NewProjectService(store, discard)
	expenses := NewExpenseService(store, discard)
	ctx := context.Background()

	p, err := projects.CreateProject(ctx, grantRequest())
	require.NoError(t, err)
	e, err := expenses.RecordExpense(ctx, p.ID.String(), ExpenseRequest{Category: models.CategoryMaterials, Amount: 100, Description: "tips"})
	require.NoError(t, err)

	require.NoError(t, projects.DeleteProject(ctx, p.ID.String()))

	_, err = expenses.GetExpense(ctx, e.ID.String())
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
	_, err = expenses.ListExpenses(ctx, p.ID.String(), 0)
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestExpenseService_RecordListAndLimit(t *testing.T) {
	store := ledger.NewMemoryStore()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	store.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	projects := NewProjectService(store, discard)
	expenses := NewExpenseService(store, discard)
	ctx := context.Background()

	p, err := projects.CreateProject(ctx, grantRequest())
	require.NoError(t, err)

	var ids []uuid.UUID
	for i := 0; i < 7; i++ {
		e, err := expenses.RecordExpense(ctx, p.ID.String(), ExpenseRequest{Category: models.CategoryEquipment, Amount: int64(i), Description: "item"})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	all, err := expenses.ListExpenses(ctx, p.ID.String(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 7)

	recent, err := expenses.ListExpenses(ctx, p.ID.String(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, ids[6], recent[0].ID, "newest first")
	assert.Equal(t, ids[2], recent[4].ID)
}

func TestExpenseService_Validation(t *testing.T) {
	store := ledger.NewMemoryStore()
	projects := NewProjectService(store, discard)
	expenses := NewExpenseService(store, discard)
	ctx := context.Background()

	p, err := projects.CreateProject(ctx, grantRequest())
	require.NoError(t, err)

	tests := map[string]ExpenseRequest{
		"unknown category": {Category: "travel", Amount: 1, Description: "x"},
		"negative amount":  {Category: models.CategoryMaterials, Amount: -1, Description: "x"},
		"blank note":       {Category: models.CategoryMaterials, Amount: 1, Description: "  "},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := expenses.RecordExpense(ctx, p.ID.String(), req)
			var verr *ledger.ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}

	_, err = expenses.RecordExpense(ctx, uuid.NewString(), ExpenseRequest{Category: models.CategoryMaterials, Amount: 1, Description: "x"})
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestExpenseService_UpdateKeepsProject(t *testing.T) {
	store := ledger.NewMemoryStore()
	projects := NewProjectService(store, discard)
	expenses := NewExpenseService(store, discard)
	ctx := context.Background()

	p, err := projects.CreateProject(ctx, grantRequest())
	require.NoError(t, err)
	e, err := expenses.RecordExpense(ctx, p.ID.String(), ExpenseRequest{Category: models.CategoryMaterials, Amount: 100, Description: "tips"})
	require.NoError(t, err)

	updated, err := expenses.UpdateExpense(ctx, e.ID.String(), ExpenseRequest{Category: models.CategoryAllowance, Amount: 250, Description: "stipend"})
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ProjectID)
	assert.Equal(t, models.CategoryAllowance, updated.Category)
	assert.Equal(t, e.CreatedAt, updated.CreatedAt)

	require.NoError(t, expenses.DeleteExpense(ctx, e.ID.String()))
	assert.True(t, errors.Is(expenses.DeleteExpense(ctx, e.ID.String()), ledger.ErrNotFound))
}

func TestBalanceService_GetBalance(t *testing.T) {
	store := ledger.NewMemoryStore()
	projects := NewProjectService(store, discard)
	expenses := NewExpenseService(store, discard)
	balances := NewBalanceService(store, discard)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	balances.now = func() time.Time { return fixed }
	ctx := context.Background()

	p, err := projects.CreateProject(ctx, grantRequest())
	require.NoError(t, err)
	_, err = expenses.RecordExpense(ctx, p.ID.String(), ExpenseRequest{Category: models.CategoryMaterials, Amount: 5_000_000, Description: "reagents"})
	require.NoError(t, err)

	snap, err := balances.GetBalance(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, fixed, snap.ComputedAt)
	materials, ok := snap.Category(models.CategoryMaterials)
	require.True(t, ok)
	assert.True(t, materials.OverBudget)
	assert.Equal(t, int64(5_000_000), snap.Total.Remaining)

	_, err = balances.GetBalance(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
}

func TestBalanceService_OpenSession(t *testing.T) {
	store := ledger.NewMemoryStore()
	projects := NewProjectService(store, discard)
	balances := NewBalanceService(store, discard)
	ctx := context.Background()

	p, err := projects.CreateProject(ctx, grantRequest())
	require.NoError(t, err)

	session, err := balances.OpenSession(ctx, p.ID.String())
	require.NoError(t, err)
	defer session.Close()
	assert.Equal(t, ledger.StateLive, session.State())

	_, err = balances.OpenSession(ctx, uuid.NewString())
	assert.True(t, errors.Is(err, ledger.ErrNotFound))
	_, err = balances.OpenSession(ctx, "nope")
	assert.True(t, errors.Is(err, utils.ErrInvalidInput))
}
