package ledger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsead/budget-pro/internal/models"
)

const waitTimeout = 2 * time.Second

// updates collects SessionUpdates on a channel.
func updates(s *Session) <-chan SessionUpdate {
	ch := make(chan SessionUpdate, 64)
	s.OnSnapshotChanged(func(u SessionUpdate) { ch <- u })
	return ch
}

func next(t *testing.T, ch <-chan SessionUpdate) SessionUpdate {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for session update")
		return SessionUpdate{}
	}
}

func nextUsed(t *testing.T, ch <-chan SessionUpdate, used int64) SessionUpdate {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case u := <-ch:
			if u.HasSnapshot && u.Snapshot.Total.Used == used {
				return u
			}
		case <-deadline:
			t.Fatalf("timed out waiting for snapshot with total used %d", used)
			return SessionUpdate{}
		}
	}
}

func newProject(t *testing.T, store *MemoryStore) models.Project {
	t.Helper()
	p := scenarioProject()
	p.ID = uuid.Nil
	p.ResponsibleEmail = "pi@u.edu"
	require.NoError(t, store.InsertProject(context.Background(), &p))
	return p
}

func TestSession_OpenLoadsSnapshot(t *testing.T) {
	store := NewMemoryStore()
	p := newProject(t, store)
	require.NoError(t, store.InsertExpense(context.Background(), &models.Expense{ProjectID: p.ID, Category: models.CategoryMaterials, Amount: 5_000_000, Description: "reagents"}))

	s := NewSession(store)
	_, ok := s.CurrentSnapshot()
	assert.False(t, ok)
	assert.Equal(t, StateIdle, s.State())

	require.NoError(t, s.Open(context.Background(), p.ID))
	defer s.Close()

	assert.Equal(t, StateLive, s.State())
	snap, ok := s.CurrentSnapshot()
	require.True(t, ok)
	assert.Equal(t, int64(5_000_000), snap.Total.Used)
	materials, _ := snap.Category(models.CategoryMaterials)
	assert.True(t, materials.OverBudget)
	assert.False(t, snap.ComputedAt.IsZero())
}

func TestSession_OpenUnknownProjectIsTerminal(t *testing.T) {
	s := NewSession(NewMemoryStore())
	err := s.Open(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, StateClosed, s.State())

	require.Error(t, s.Open(context.Background(), uuid.New()), "closed session must not reopen")
}

func TestSession_RecomputesOnEveryChange(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := newProject(t, store)

	s := NewSession(store)
	ch := updates(s)
	require.NoError(t, s.Open(ctx, p.ID))
	defer s.Close()
	nextUsed(t, ch, 0)

	e := models.Expense{ProjectID: p.ID, Category: models.CategoryStudentLabor, Amount: 1_000, Description: "RA stipend"}
	require.NoError(t, store.InsertExpense(ctx, &e))
	u := nextUsed(t, ch, 1_000)
	assert.Equal(t, StateLive, u.State)

	_, err := store.UpdateExpense(ctx, e.ID, models.ExpenseFields{Category: models.CategoryEquipment, Amount: 2_500, Description: "RA stipend"})
	require.NoError(t, err)
	u = nextUsed(t, ch, 2_500)
	equipment, _ := u.Snapshot.Category(models.CategoryEquipment)
	assert.Equal(t, int64(2_500), equipment.Used)

	require.NoError(t, store.DeleteExpense(ctx, e.ID))
	nextUsed(t, ch, 0)
}

func TestSession_CloseIsIdempotentAndStopsDelivery(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := newProject(t, store)

	s := NewSession(store)
	ch := updates(s)
	require.NoError(t, s.Open(ctx, p.ID))
	nextUsed(t, ch, 0)

	s.Close()
	s.Close()
	assert.Equal(t, StateClosed, s.State())

	require.NoError(t, store.InsertExpense(ctx, &models.Expense{ProjectID: p.ID, Category: models.CategoryActivity, Amount: 10, Description: "late"}))
	select {
	case u := <-ch:
		t.Fatalf("closed session delivered %+v", u)
	case <-time.After(100 * time.Millisecond):
	}

	assert.Zero(t, store.feed.Len(p.ID), "close must cancel the subscription")
}

func TestSession_IndependentSessionsForSameProject(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := newProject(t, store)

	a, b := NewSession(store), NewSession(store)
	chA, chB := updates(a), updates(b)
	require.NoError(t, a.Open(ctx, p.ID))
	require.NoError(t, b.Open(ctx, p.ID))
	defer b.Close()

	a.Close()
	require.NoError(t, store.InsertExpense(ctx, &models.Expense{ProjectID: p.ID, Category: models.CategoryAllowance, Amount: 7, Description: "honorarium"}))
	nextUsed(t, chB, 7)

	snap, _ := a.CurrentSnapshot()
	assert.Equal(t, int64(0), snap.Total.Used)
	_ = chA
}

func TestSession_ProjectDeletedClosesSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := newProject(t, store)
	require.NoError(t, store.InsertExpense(ctx, &models.Expense{ProjectID: p.ID, Category: models.CategoryActivity, Amount: 3, Description: "taxi"}))

	s := NewSession(store)
	ch := updates(s)
	require.NoError(t, s.Open(ctx, p.ID))
	nextUsed(t, ch, 3)

	require.NoError(t, store.DeleteProject(ctx, p.ID))
	for {
		u := next(t, ch)
		if u.Err != nil {
			assert.True(t, errors.Is(u.Err, ErrNotFound))
			assert.Equal(t, StateClosed, u.State)
			break
		}
	}
	assert.Equal(t, StateClosed, s.State())
}

func TestSession_RefreshKeepsSnapshotVisible(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := newProject(t, store)

	s := NewSession(store)
	require.NoError(t, s.Open(ctx, p.ID))
	defer s.Close()

	require.NoError(t, s.Refresh(ctx))
	assert.Equal(t, StateLive, s.State())
	_, ok := s.CurrentSnapshot()
	assert.True(t, ok)
}

// gatedStore blocks every QueryExpenses call until the test releases it
// with a result of its choosing.
type gatedStore struct {
	*MemoryStore
	gated bool

	mu    sync.Mutex
	calls []chan []models.Expense
	added chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{MemoryStore: NewMemoryStore(), added: make(chan struct{}, 16)}
}

func (g *gatedStore) QueryExpenses(ctx context.Context, projectID uuid.UUID) ([]models.Expense, error) {
	g.mu.Lock()
	if !g.gated {
		g.mu.Unlock()
		return g.MemoryStore.QueryExpenses(ctx, projectID)
	}
	gate := make(chan []models.Expense, 1)
	g.calls = append(g.calls, gate)
	g.mu.Unlock()
	g.added <- struct{}{}
	return <-gate, nil
}

func (g *gatedStore) gate() {
	g.mu.Lock()
	g.gated = true
	g.mu.Unlock()
}

func (g *gatedStore) waitCalls(t *testing.T, n int) {
	t.Helper()
	for {
		g.mu.Lock()
		got := len(g.calls)
		g.mu.Unlock()
		if got >= n {
			return
		}
		select {
		case <-g.added:
		case <-time.After(waitTimeout):
			t.Fatalf("timed out waiting for %d gated fetches, have %d", n, got)
		}
	}
}

func (g *gatedStore) release(i int, expenses []models.Expense) {
	g.mu.Lock()
	gate := g.calls[i]
	g.mu.Unlock()
	gate <- expenses
}

func TestSession_OverlappingFetchesNeverRegress(t *testing.T) {
	ctx := context.Background()
	store := newGatedStore()
	p := newProject(t, store.MemoryStore)

	s := NewSession(store)
	ch := updates(s)
	require.NoError(t, s.Open(ctx, p.ID))
	defer s.Close()
	nextUsed(t, ch, 0)

	store.gate()
	staler := []models.Expense{expense(p, models.CategoryMaterials, 100)}
	newer := []models.Expense{expense(p, models.CategoryMaterials, 100), expense(p, models.CategoryMaterials, 250)}

	s.handleChange(ExpenseChange{Op: ChangeInsert, ProjectID: p.ID})
	store.waitCalls(t, 1)
	s.handleChange(ExpenseChange{Op: ChangeInsert, ProjectID: p.ID})
	store.waitCalls(t, 2)

	// The second-issued fetch lands first.
	store.release(1, newer)
	nextUsed(t, ch, 350)

	store.release(0, staler)
	select {
	case u := <-ch:
		t.Fatalf("stale fetch was applied: %+v", u.Snapshot.Total)
	case <-time.After(150 * time.Millisecond):
	}

	snap, ok := s.CurrentSnapshot()
	require.True(t, ok)
	assert.Equal(t, int64(350), snap.Total.Used)
}

func TestSession_ApplyLastCompletedWhenIssuedInOrder(t *testing.T) {
	store := NewMemoryStore()
	p := newProject(t, store)
	s := NewSession(store)
	require.NoError(t, s.Open(context.Background(), p.ID))
	defer s.Close()

	s.mu.Lock()
	first, second := s.issueLocked(), s.issueLocked()
	s.mu.Unlock()

	s.apply(first, &p, []models.Expense{expense(p, models.CategoryActivity, 1)}, nil)
	snap, _ := s.CurrentSnapshot()
	assert.Equal(t, int64(1), snap.Total.Used)

	s.apply(second, &p, []models.Expense{expense(p, models.CategoryActivity, 2)}, nil)
	snap, _ = s.CurrentSnapshot()
	assert.Equal(t, int64(2), snap.Total.Used)

	s.apply(first, &p, []models.Expense{expense(p, models.CategoryActivity, 9)}, nil)
	snap, _ = s.CurrentSnapshot()
	assert.Equal(t, int64(2), snap.Total.Used, "older fetch must not overwrite a newer one")
}

// flakyFeed lets the test control whether resubscribing succeeds.
type flakyFeed struct {
	*MemoryStore
	mu      sync.Mutex
	failing bool
}

func (f *flakyFeed) SubscribeExpenseChanges(ctx context.Context, projectID uuid.UUID, onChange func(ExpenseChange)) (Subscription, error) {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return nil, errors.New("listener unavailable")
	}
	return f.MemoryStore.SubscribeExpenseChanges(ctx, projectID, onChange)
}

func TestSession_ResubscribesOnceAfterDrop(t *testing.T) {
	ctx := context.Background()
	store := &flakyFeed{MemoryStore: NewMemoryStore()}
	p := newProject(t, store.MemoryStore)

	s := NewSession(store)
	ch := updates(s)
	require.NoError(t, s.Open(ctx, p.ID))
	defer s.Close()
	nextUsed(t, ch, 0)

	store.Disconnect(errors.New("connection reset"))
	// Resubscribing triggers a catch-up recompute.
	nextUsed(t, ch, 0)

	require.NoError(t, store.InsertExpense(ctx, &models.Expense{ProjectID: p.ID, Category: models.CategoryActivity, Amount: 42, Description: "after drop"}))
	u := nextUsed(t, ch, 42)
	assert.Equal(t, StateLive, u.State)
}

func TestSession_GoesStaleWhenResubscribeFails(t *testing.T) {
	ctx := context.Background()
	store := &flakyFeed{MemoryStore: NewMemoryStore()}
	p := newProject(t, store.MemoryStore)
	require.NoError(t, store.InsertExpense(ctx, &models.Expense{ProjectID: p.ID, Category: models.CategoryActivity, Amount: 5, Description: "before"}))

	s := NewSession(store)
	ch := updates(s)
	require.NoError(t, s.Open(ctx, p.ID))
	defer s.Close()
	nextUsed(t, ch, 5)

	store.mu.Lock()
	store.failing = true
	store.mu.Unlock()
	store.Disconnect(errors.New("connection reset"))

	u := next(t, ch)
	assert.Equal(t, StateStale, u.State)
	var serr *SubscriptionError
	require.True(t, errors.As(u.Err, &serr))
	require.True(t, u.HasSnapshot)
	assert.Equal(t, int64(5), u.Snapshot.Total.Used, "last known good snapshot is kept")
	assert.Equal(t, StateStale, s.State())
}

func TestSession_NothingDeliveredOnceCloseReturns(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := newProject(t, store)

	s := NewSession(store)
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	s.OnSnapshotChanged(func(u SessionUpdate) {
		if u.HasSnapshot && u.Snapshot.Total.Used == 10 {
			once.Do(func() { close(entered) })
			<-release
		}
	})
	var closed atomic.Bool
	var late atomic.Int32
	s.OnSnapshotChanged(func(SessionUpdate) {
		if closed.Load() {
			late.Add(1)
		}
	})

	require.NoError(t, s.Open(ctx, p.ID))
	require.NoError(t, store.InsertExpense(ctx, &models.Expense{ProjectID: p.ID, Category: models.CategoryActivity, Amount: 10, Description: "taxi"}))

	select {
	case <-entered:
	case <-time.After(waitTimeout):
		t.Fatal("first observer never saw the expense")
	}
	s.Close()
	closed.Store(true)
	close(release)

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, late.Load())
}

func TestSession_ObserverMayRefreshAndClose(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p := newProject(t, store)

	s := NewSession(store)
	ch := updates(s)
	refreshed := make(chan error, 1)
	var once sync.Once
	s.OnSnapshotChanged(func(u SessionUpdate) {
		if u.HasSnapshot && u.Snapshot.Total.Used == 7 {
			once.Do(func() { refreshed <- s.Refresh(ctx) })
		}
	})

	require.NoError(t, s.Open(ctx, p.ID))
	nextUsed(t, ch, 0)
	require.NoError(t, store.InsertExpense(ctx, &models.Expense{ProjectID: p.ID, Category: models.CategoryActivity, Amount: 7, Description: "ferry"}))

	select {
	case err := <-refreshed:
		require.NoError(t, err)
	case <-time.After(waitTimeout):
		t.Fatal("refresh from an observer did not return")
	}
	// The first delivery plus the one produced by the refresh.
	nextUsed(t, ch, 7)
	nextUsed(t, ch, 7)

	done := make(chan struct{})
	s.OnSnapshotChanged(func(SessionUpdate) {
		s.Close()
		close(done)
	})
	require.NoError(t, store.InsertExpense(ctx, &models.Expense{ProjectID: p.ID, Category: models.CategoryActivity, Amount: 1, Description: "tip"}))
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("close from an observer did not return")
	}
	assert.Equal(t, StateClosed, s.State())
}
