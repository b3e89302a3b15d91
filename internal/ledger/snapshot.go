package ledger

import (
	"context"
	"time"

	"github.com/bsead/budget-pro/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ComputeSnapshot reads the project and all of its expenses and returns the
// balance computed at now.
func ComputeSnapshot(ctx context.Context, reader ProjectReader, projectID uuid.UUID, now time.Time) (models.BalanceSnapshot, error) {
	project, expenses, err := load(ctx, reader, projectID)
	if err != nil {
		return models.BalanceSnapshot{}, err
	}
	return stamp(Aggregate(*project, expenses), now), nil
}

// load fetches the project and its expenses concurrently.
func load(ctx context.Context, reader ProjectReader, projectID uuid.UUID) (*models.Project, []models.Expense, error) {
	var (
		project  *models.Project
		expenses []models.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := reader.QueryProject(gctx, projectID)
		project = p
		return err
	})
	g.Go(func() error {
		e, err := reader.QueryExpenses(gctx, projectID)
		expenses = e
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return project, expenses, nil
}
