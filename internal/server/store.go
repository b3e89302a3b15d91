package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/bsead/budget-pro/internal/config"
	"github.com/bsead/budget-pro/internal/database"
	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/repositories"
)

// NewStore builds the Ledger Store selected by cfg.Store. For Postgres it
// connects, applies migrations and starts the change listener; the returned
// close func stops the listener and releases the pool.
func NewStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ledger.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Println("Using in-memory ledger store, data is lost on exit")
		return ledger.NewMemoryStore(), func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := database.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	listenCtx, stopListening := context.WithCancel(context.Background())
	listener := repositories.NewChangeListener(pool, logger)
	done := make(chan struct{})
	go func() {
		defer close(done)
		listener.Run(listenCtx)
	}()

	store := repositories.NewLedgerStore(
		repositories.NewProjectRepository(pool),
		repositories.NewExpenseRepository(pool),
		listener,
	)
	closeFn := func() {
		stopListening()
		<-done
		pool.Close()
	}
	return store, closeFn, nil
}
