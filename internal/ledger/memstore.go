package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bsead/budget-pro/internal/models"
	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. It backs tests and the
// LEDGER_STORE=memory development mode. Records are copied in and out so
// callers never share memory with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]models.Project
	expenses map[uuid.UUID]models.Expense
	seq      int64
	now      func() time.Time
	feed     *Fanout
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[uuid.UUID]models.Project),
		expenses: make(map[uuid.UUID]models.Expense),
		now:      time.Now,
		feed:     NewFanout(),
	}
}

// SetClock replaces the time source used for created_at.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *MemoryStore) QueryProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, notFound("project", id.String())
	}
	return &p, nil
}

func (s *MemoryStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	projects := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		projects = append(projects, p)
	}
	sortProjects(projects)
	return projects, nil
}

func (s *MemoryStore) FindProjectsByResponsibleParty(ctx context.Context, email, identityID string) ([]models.Project, error) {
	email = models.NormalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var projects []models.Project
	for _, p := range s.projects {
		byEmail := email != "" && p.ResponsibleEmail == email
		byID := identityID != "" && p.ResponsibleID != nil && *p.ResponsibleID == identityID
		if byEmail || byID {
			projects = append(projects, p)
		}
	}
	sortProjects(projects)
	return projects, nil
}

func (s *MemoryStore) InsertProject(ctx context.Context, p *models.Project) error {
	p.Prepare()
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.projects[p.ID] = *p
	return nil
}

func (s *MemoryStore) UpdateProject(ctx context.Context, p *models.Project) error {
	p.Prepare()
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.projects[p.ID]
	if !ok {
		return notFound("project", p.ID.String())
	}
	p.CreatedAt = existing.CreatedAt
	s.projects[p.ID] = *p
	return nil
}

// DeleteProject removes the project and all of its expenses under one
// lock, so readers see both or neither.
func (s *MemoryStore) DeleteProject(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	if _, ok := s.projects[id]; !ok {
		s.mu.Unlock()
		return notFound("project", id.String())
	}
	delete(s.projects, id)
	var removed []uuid.UUID
	for eid, e := range s.expenses {
		if e.ProjectID == id {
			delete(s.expenses, eid)
			removed = append(removed, eid)
		}
	}
	s.mu.Unlock()

	for _, eid := range removed {
		s.feed.Publish(ExpenseChange{Op: ChangeDelete, ProjectID: id, ExpenseID: eid})
	}
	return nil
}

func (s *MemoryStore) QueryExpenses(ctx context.Context, projectID uuid.UUID) ([]models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var expenses []models.Expense
	for _, e := range s.expenses {
		if e.ProjectID == projectID {
			expenses = append(expenses, e)
		}
	}
	SortExpenses(expenses)
	return expenses, nil
}

func (s *MemoryStore) QueryExpense(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.expenses[id]
	if !ok {
		return nil, notFound("expense", id.String())
	}
	return &e, nil
}

func (s *MemoryStore) InsertExpense(ctx context.Context, e *models.Expense) error {
	e.Prepare()
	s.mu.Lock()
	if _, ok := s.projects[e.ProjectID]; !ok {
		s.mu.Unlock()
		return notFound("project", e.ProjectID.String())
	}
	s.seq++
	e.Seq = s.seq
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	s.expenses[e.ID] = *e
	s.mu.Unlock()

	s.feed.Publish(ExpenseChange{Op: ChangeInsert, ProjectID: e.ProjectID, ExpenseID: e.ID})
	return nil
}

func (s *MemoryStore) UpdateExpense(ctx context.Context, id uuid.UUID, f models.ExpenseFields) (*models.Expense, error) {
	f.Prepare()
	s.mu.Lock()
	e, ok := s.expenses[id]
	if !ok {
		s.mu.Unlock()
		return nil, notFound("expense", id.String())
	}
	e.Category = f.Category
	e.Amount = f.Amount
	e.Description = f.Description
	s.expenses[id] = e
	s.mu.Unlock()

	s.feed.Publish(ExpenseChange{Op: ChangeUpdate, ProjectID: e.ProjectID, ExpenseID: id})
	return &e, nil
}

func (s *MemoryStore) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	e, ok := s.expenses[id]
	if !ok {
		s.mu.Unlock()
		return notFound("expense", id.String())
	}
	delete(s.expenses, id)
	s.mu.Unlock()

	s.feed.Publish(ExpenseChange{Op: ChangeDelete, ProjectID: e.ProjectID, ExpenseID: id})
	return nil
}

func (s *MemoryStore) SubscribeExpenseChanges(ctx context.Context, projectID uuid.UUID, onChange func(ExpenseChange)) (Subscription, error) {
	return s.feed.Subscribe(projectID, onChange), nil
}

// Disconnect ends every subscription with err, the way a dropped
// notification connection would.
func (s *MemoryStore) Disconnect(err error) {
	s.feed.DropAll(err)
}

// SortExpenses orders expenses newest first. Equal timestamps fall back
// to insertion order, newest first.
func SortExpenses(expenses []models.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		if !expenses[i].CreatedAt.Equal(expenses[j].CreatedAt) {
			return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
		}
		return expenses[i].Seq > expenses[j].Seq
	})
}

func sortProjects(projects []models.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.After(projects[j].CreatedAt)
		}
		return projects[i].ID.String() < projects[j].ID.String()
	})
}
