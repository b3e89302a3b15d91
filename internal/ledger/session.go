package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bsead/budget-pro/internal/models"
	"github.com/google/uuid"
)

// SessionState is the lifecycle state of a Session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateLoading
	StateLive
	// StateStale means the change feed was lost and could not be
	// re-established. The last snapshot is still served.
	StateStale
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLive:
		return "live"
	case StateStale:
		return "stale"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("SessionState(%d)", int(s))
}

// DefaultFetchTimeout bounds a single background recompute.
const DefaultFetchTimeout = 30 * time.Second

// SessionStore is the part of the Store a Session binds to.
type SessionStore interface {
	ProjectReader
	ChangeFeed
}

// SessionUpdate is what observers receive. Err is set when a recompute
// failed, the project disappeared, or the feed degraded; Snapshot then
// still holds the last good value if HasSnapshot is true.
type SessionUpdate struct {
	State       SessionState
	Snapshot    models.BalanceSnapshot
	HasSnapshot bool
	Err         error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = logger }
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

func WithFetchTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.fetchTimeout = d }
}

// Session keeps a live balance snapshot of one project. Every change
// notification triggers a full re-fetch and re-aggregation. Fetches are
// numbered when issued; a completed fetch is dropped if a fetch issued
// after it has already been applied.
//
// Updates are queued in apply order and handed to observers by a single
// delivery goroutine, so no lock is held while an observer runs.
type Session struct {
	store        SessionStore
	logger       *slog.Logger
	now          func() time.Time
	fetchTimeout time.Duration

	mu           sync.Mutex
	state        SessionState
	projectID    uuid.UUID
	snapshot     models.BalanceSnapshot
	hasSnapshot  bool
	issued       uint64
	applied      uint64
	sub          Subscription
	observers    map[int]func(SessionUpdate)
	nextObserver int

	pending  []delivery
	draining bool
	// closeGen changes on every Close; queued deliveries from an older
	// generation are dropped.
	closeGen uint64
}

type delivery struct {
	gen       uint64
	update    SessionUpdate
	observers []func(SessionUpdate)
}

func NewSession(store SessionStore, opts ...SessionOption) *Session {
	s := &Session{
		store:        store,
		logger:       slog.Default(),
		now:          time.Now,
		fetchTimeout: DefaultFetchTimeout,
		observers:    make(map[int]func(SessionUpdate)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open binds the session to projectID, subscribes to its expense changes
// and loads the first snapshot. A missing project returns a
// *NotFoundError and leaves the session closed.
func (s *Session) Open(ctx context.Context, projectID uuid.UUID) error {
	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("session is %s, can only open an idle session", state)
	}
	s.projectID = projectID
	s.state = StateLoading
	s.mu.Unlock()

	s.logger.Debug("opening reconciliation session", "project_id", projectID)

	sub, err := s.store.SubscribeExpenseChanges(ctx, projectID, s.handleChange)
	if err != nil {
		s.Close()
		return &SubscriptionError{ProjectID: projectID.String(), Err: err}
	}
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		sub.Cancel()
		return errors.New("session closed while opening")
	}
	s.sub = sub
	seq := s.issueLocked()
	s.mu.Unlock()
	go s.watch(sub)

	project, expenses, err := s.fetch(ctx)
	s.apply(seq, project, expenses, err)
	if err != nil {
		if _, ok := s.CurrentSnapshot(); !ok {
			s.Close()
			return err
		}
	}
	return nil
}

// Refresh forces a full recompute. The session reports Loading until it
// completes; observers keep the previous snapshot meanwhile.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateLive:
		s.state = StateLoading
	case StateStale:
	default:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("cannot refresh a %s session", state)
	}
	seq := s.issueLocked()
	s.mu.Unlock()

	project, expenses, err := s.fetch(ctx)
	s.apply(seq, project, expenses, err)
	return err
}

// Close releases the subscription. It is safe to call more than once,
// including from an observer. Once Close returns no observer call is
// started; fetches still in flight finish and are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	s.closeGen++
	s.pending = nil
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	sub := s.sub
	s.sub = nil
	s.observers = make(map[int]func(SessionUpdate))
	projectID := s.projectID
	s.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	s.logger.Debug("closed reconciliation session", "project_id", projectID)
}

// CurrentSnapshot returns the latest snapshot, or false if none has been
// computed yet.
func (s *Session) CurrentSnapshot() (models.BalanceSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot, s.hasSnapshot
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) ProjectID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectID
}

// OnSnapshotChanged registers fn for every future update and returns a
// function that removes it. All observers run on the session's delivery
// goroutine, one update at a time, and must not block for long. fn may
// call any Session method, Refresh and Close included.
func (s *Session) OnSnapshotChanged(fn func(SessionUpdate)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	if s.state != StateClosed {
		s.observers[id] = fn
	}
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Session) handleChange(change ExpenseChange) {
	s.mu.Lock()
	if s.state == StateClosed || s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	seq := s.issueLocked()
	s.mu.Unlock()

	s.logger.Debug("expense change received", "project_id", change.ProjectID, "op", change.Op, "expense_id", change.ExpenseID, "fetch", seq)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
		defer cancel()
		project, expenses, err := s.fetch(ctx)
		s.apply(seq, project, expenses, err)
	}()
}

// issueLocked numbers a new fetch. Must be called with s.mu held.
func (s *Session) issueLocked() uint64 {
	s.issued++
	return s.issued
}

func (s *Session) fetch(ctx context.Context) (*models.Project, []models.Expense, error) {
	return load(ctx, s.store, s.ProjectID())
}

func (s *Session) apply(seq uint64, project *models.Project, expenses []models.Expense, fetchErr error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	if seq < s.applied {
		projectID, applied := s.projectID, s.applied
		s.mu.Unlock()
		s.logger.Debug("discarding superseded fetch", "project_id", projectID, "fetch", seq, "applied", applied)
		return
	}

	var (
		sub      Subscription
		closeNow bool
	)
	update := SessionUpdate{Err: fetchErr}
	switch {
	case errors.Is(fetchErr, ErrNotFound):
		s.logger.Info("project no longer exists, closing session", "project_id", s.projectID)
		sub = s.sub
		s.sub = nil
		s.state = StateClosed
		closeNow = true
	case fetchErr != nil:
		s.logger.Error("balance recompute failed", "project_id", s.projectID, "fetch", seq, "error", fetchErr)
		if s.state == StateLoading && s.hasSnapshot {
			s.state = StateLive
		}
	default:
		s.snapshot = stamp(Aggregate(*project, expenses), s.now())
		s.hasSnapshot = true
		s.applied = seq
		if s.state == StateLoading {
			s.state = StateLive
		}
	}
	update.State = s.state
	update.Snapshot = s.snapshot
	update.HasSnapshot = s.hasSnapshot
	s.enqueueLocked(update)
	if closeNow {
		s.observers = make(map[int]func(SessionUpdate))
	}
	s.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

// watch waits for sub to end. A drop is retried once; if that fails the
// session goes stale and observers are told why.
func (s *Session) watch(sub Subscription) {
	<-sub.Done()
	cause := sub.Err()
	if cause == nil {
		return
	}

	s.mu.Lock()
	if s.state == StateClosed || s.sub != sub {
		s.mu.Unlock()
		return
	}
	projectID := s.projectID
	s.mu.Unlock()

	s.logger.Warn("expense change feed dropped, resubscribing", "project_id", projectID, "error", cause)

	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()
	next, err := s.store.SubscribeExpenseChanges(ctx, projectID, s.handleChange)

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		if next != nil {
			next.Cancel()
		}
		return
	}
	if err != nil {
		s.sub = nil
		s.state = StateStale
		update := SessionUpdate{
			State:       s.state,
			Snapshot:    s.snapshot,
			HasSnapshot: s.hasSnapshot,
			Err:         &SubscriptionError{ProjectID: projectID.String(), Err: errors.Join(cause, err)},
		}
		s.enqueueLocked(update)
		s.mu.Unlock()

		s.logger.Error("resubscribe failed, serving last known snapshot", "project_id", projectID, "error", err)
		return
	}
	s.sub = next
	if s.state == StateStale {
		s.state = StateLive
	}
	s.mu.Unlock()

	go s.watch(next)
	// Changes made while the feed was down were never announced.
	s.handleChange(ExpenseChange{ProjectID: projectID})
}

// enqueueLocked queues u for the current observers and starts the
// delivery goroutine if it is not running. Must be called with s.mu held.
func (s *Session) enqueueLocked(u SessionUpdate) {
	observers := s.observerListLocked()
	if len(observers) == 0 {
		return
	}
	s.pending = append(s.pending, delivery{gen: s.closeGen, update: u, observers: observers})
	if !s.draining {
		s.draining = true
		go s.drain()
	}
}

// drain delivers queued updates until the queue is empty.
func (s *Session) drain() {
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		d := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		for _, fn := range d.observers {
			if !s.deliverable(d.gen) {
				break
			}
			fn(d.update)
		}
	}
}

func (s *Session) deliverable(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.closeGen
}

// observerListLocked must be called with s.mu held.
func (s *Session) observerListLocked() []func(SessionUpdate) {
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(SessionUpdate), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.observers[id])
	}
	return fns
}
