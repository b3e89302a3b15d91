package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bsead/budget-pro/internal/database"
	"github.com/bsead/budget-pro/internal/ledger"
)

var errListenerStopped = errors.New("change listener stopped")

// ChangeListener holds one dedicated connection in LISTEN mode on the
// expense change channel and fans notifications out to per-project
// subscribers. When the connection drops every subscription ends with the
// cause and the listener reconnects after RetryDelay.
type ChangeListener struct {
	pool       *pgxpool.Pool
	logger     *slog.Logger
	RetryDelay time.Duration

	feed *ledger.Fanout

	mu    sync.Mutex
	ready chan struct{} // closed while a connection is listening
}

func NewChangeListener(pool *pgxpool.Pool, logger *slog.Logger) *ChangeListener {
	return &ChangeListener{
		pool:       pool,
		logger:     logger,
		RetryDelay: 2 * time.Second,
		feed:       ledger.NewFanout(),
		ready:      make(chan struct{}),
	}
}

// Run listens until ctx is cancelled.
func (l *ChangeListener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			l.feed.DropAll(errListenerStopped)
			return
		}
		l.logger.Warn("expense change listener disconnected", "error", err, "retry_in", l.RetryDelay)
		l.feed.DropAll(err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.RetryDelay):
		}
	}
}

func (l *ChangeListener) listen(ctx context.Context) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listener connection: %w", err)
	}
	// A LISTENing connection must not go back to the pool.
	conn := pooled.Hijack()
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{database.ExpenseChangesChannel}.Sanitize()); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", database.ExpenseChangesChannel, err)
	}

	l.setReady(true)
	defer l.setReady(false)
	l.logger.Info("listening for expense changes", "channel", database.ExpenseChangesChannel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var change ledger.ExpenseChange
		if err := json.Unmarshal([]byte(n.Payload), &change); err != nil {
			l.logger.Error("malformed expense change payload", "payload", n.Payload, "error", err)
			continue
		}
		l.feed.Publish(change)
	}
}

func (l *ChangeListener) setReady(ready bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	select {
	case <-l.ready:
		if !ready {
			l.ready = make(chan struct{})
		}
	default:
		if ready {
			close(l.ready)
		}
	}
}

// SubscribeExpenseChanges waits for the listener connection to be up,
// bounded by ctx, and registers onChange for projectID.
func (l *ChangeListener) SubscribeExpenseChanges(ctx context.Context, projectID uuid.UUID, onChange func(ledger.ExpenseChange)) (ledger.Subscription, error) {
	l.mu.Lock()
	ready := l.ready
	l.mu.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return nil, fmt.Errorf("expense change listener not connected: %w", ctx.Err())
	}
	return l.feed.Subscribe(projectID, onChange), nil
}
