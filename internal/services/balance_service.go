package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/models"
)

// BalanceService serves balances either as a one-off computation or as a
// live Reconciliation Session.
type BalanceService struct {
	store        ledger.SessionStore
	logger       *slog.Logger
	now          func() time.Time
	fetchTimeout time.Duration
}

func NewBalanceService(store ledger.SessionStore, logger *slog.Logger) *BalanceService {
	return &BalanceService{
		store:        store,
		logger:       logger,
		now:          time.Now,
		fetchTimeout: ledger.DefaultFetchTimeout,
	}
}

func (s *BalanceService) GetBalance(ctx context.Context, projectID string) (models.BalanceSnapshot, error) {
	id, err := parseID("project", projectID)
	if err != nil {
		return models.BalanceSnapshot{}, err
	}

	snap, err := ledger.ComputeSnapshot(ctx, s.store, id, s.now())
	if err != nil {
		return models.BalanceSnapshot{}, fmt.Errorf("failed to compute balance: %w", err)
	}
	return snap, nil
}

// OpenSession starts a live session on the project. The caller owns the
// session and must Close it.
func (s *BalanceService) OpenSession(ctx context.Context, projectID string) (*ledger.Session, error) {
	id, err := parseID("project", projectID)
	if err != nil {
		return nil, err
	}

	session := ledger.NewSession(s.store,
		ledger.WithLogger(s.logger),
		ledger.WithClock(s.now),
		ledger.WithFetchTimeout(s.fetchTimeout),
	)
	if err := session.Open(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to open balance session: %w", err)
	}
	return session, nil
}
