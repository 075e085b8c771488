package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yeremiapane/cafe-tables/models"
)

// MemoryStore keeps tables in process memory. It backs tests and single-node
// demo deployments (STORE_DRIVER=memory).
type MemoryStore struct {
	mu            sync.RWMutex
	tables        map[uint]models.Table
	sessions      []models.SessionLog
	notifications []models.Notification
	nextTableID   uint
	nextLogID     uint
	nextNotifID   uint
	locks         *entityLocks
	now           func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[uint]models.Table),
		locks:  newEntityLocks(),
		now:    time.Now,
	}
}

func (s *MemoryStore) Create(ctx context.Context, table models.Table) (models.Table, error) {
	if err := validateNew(table); err != nil {
		return models.Table{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tables {
		if existing.Number == table.Number {
			return models.Table{}, models.ErrDuplicateNumber
		}
	}

	s.nextTableID++
	created := newTable(table)
	created.ID = s.nextTableID
	created.CreatedAt = s.now()
	created.UpdatedAt = created.CreatedAt
	s.tables[created.ID] = created
	return created, nil
}

// GetAll returns the tables ordered by id.
func (s *MemoryStore) GetAll(ctx context.Context) ([]models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id uint) (models.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[id]
	if !ok {
		return models.Table{}, &models.NotFoundError{ID: id}
	}
	return t, nil
}

func (s *MemoryStore) Apply(ctx context.Context, id uint, patch models.TablePatch) (models.Table, error) {
	return s.Mutate(ctx, id, func(models.Table) (models.TablePatch, error) {
		return patch, nil
	})
}

func (s *MemoryStore) Mutate(ctx context.Context, id uint, fn MutateFunc) (models.Table, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Table{}, err
	}

	patch, err := fn(current)
	if err != nil {
		return models.Table{}, err
	}

	now := s.now()
	patched := patch.ApplyTo(current)
	if err := checkPatched(id, patched); err != nil {
		return models.Table{}, err
	}
	patched.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[id]; !ok {
		return models.Table{}, &models.NotFoundError{ID: id}
	}
	s.tables[id] = patched
	if entry, ok := models.NewSessionLog(current, patched, now); ok {
		s.nextLogID++
		entry.ID = s.nextLogID
		entry.CreatedAt = now
		s.sessions = append(s.sessions, entry)
	}
	return patched, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uint, check func(models.Table) error) error {
	unlock := s.locks.lock(id)
	defer unlock()

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(current); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, id)
	return nil
}

func (s *MemoryStore) ListSessions(ctx context.Context, tableID uint) ([]models.SessionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.SessionLog, 0)
	for i := len(s.sessions) - 1; i >= 0; i-- {
		if tableID == 0 || s.sessions[i].TableID == tableID {
			out = append(out, s.sessions[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) SaveNotification(ctx context.Context, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextNotifID++
	notif.ID = s.nextNotifID
	if notif.CreatedAt.IsZero() {
		notif.CreatedAt = s.now()
	}
	s.notifications = append(s.notifications, *notif)
	return nil
}

// ListNotifications returns notifications newest first.
func (s *MemoryStore) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Notification, 0, len(s.notifications))
	for i := len(s.notifications) - 1; i >= 0; i-- {
		out = append(out, s.notifications[i])
	}
	return out, nil
}

func (s *MemoryStore) GetNotification(ctx context.Context, id uint) (models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, n := range s.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return models.Notification{}, &models.NotFoundError{Resource: "notification", ID: id}
}
