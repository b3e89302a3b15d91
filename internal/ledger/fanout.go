package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// Fanout is a registry of per-project change subscribers. Stores publish
// into it; each subscriber's callback runs on the publishing goroutine
// and must return quickly.
type Fanout struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID][]*feedSubscription
}

func NewFanout() *Fanout {
	return &Fanout{subscribers: make(map[uuid.UUID][]*feedSubscription)}
}

func (f *Fanout) Subscribe(projectID uuid.UUID, onChange func(ExpenseChange)) Subscription {
	sub := &feedSubscription{
		fanout:    f,
		projectID: projectID,
		onChange:  onChange,
		done:      make(chan struct{}),
	}
	f.mu.Lock()
	f.subscribers[projectID] = append(f.subscribers[projectID], sub)
	f.mu.Unlock()
	return sub
}

// Publish delivers change to every subscriber of its project. The list is
// copied first so callbacks run without f.mu held.
func (f *Fanout) Publish(change ExpenseChange) {
	f.mu.Lock()
	subs := append([]*feedSubscription(nil), f.subscribers[change.ProjectID]...)
	f.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(change)
	}
}

// DropAll ends every subscription with err.
func (f *Fanout) DropAll(err error) {
	f.mu.Lock()
	var all []*feedSubscription
	for _, subs := range f.subscribers {
		all = append(all, subs...)
	}
	f.subscribers = make(map[uuid.UUID][]*feedSubscription)
	f.mu.Unlock()

	for _, sub := range all {
		sub.finish(err)
	}
}

// Len returns the number of live subscriptions for projectID.
func (f *Fanout) Len(projectID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[projectID])
}

func (f *Fanout) remove(sub *feedSubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := f.subscribers[sub.projectID]
	for i, existing := range subs {
		if existing == sub {
			f.subscribers[sub.projectID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(f.subscribers[sub.projectID]) == 0 {
		delete(f.subscribers, sub.projectID)
	}
}

type feedSubscription struct {
	fanout    *Fanout
	projectID uuid.UUID
	onChange  func(ExpenseChange)

	once sync.Once
	mu   sync.Mutex
	err  error
	done chan struct{}
}

func (s *feedSubscription) deliver(change ExpenseChange) {
	select {
	case <-s.done:
		return
	default:
	}
	s.onChange(change)
}

func (s *feedSubscription) finish(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

func (s *feedSubscription) Cancel() {
	s.fanout.remove(s)
	s.finish(nil)
}

func (s *feedSubscription) Done() <-chan struct{} { return s.done }

func (s *feedSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
