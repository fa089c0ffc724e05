package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tvan04/workflow-management-system-sub001/internal/filter"
	"github.com/tvan04/workflow-management-system-sub001/internal/models"
)

// MemoryStore keeps applications in process memory. Records are copied in and
// out so callers never alias stored slices.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]models.Application
	order []string
	//called with the lock held after every mutation
	onChange func() error
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]models.Application)}
}

func (m *MemoryStore) Insert(_ context.Context, app models.Application) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if _, exists := m.byID[app.ID]; exists {
		return "", fmt.Errorf("application %s already exists", app.ID)
	}
	if app.Version == 0 {
		app.Version = 1
	}

	m.byID[app.ID] = app.Clone()
	m.order = append(m.order, app.ID)

	if err := m.changed(); err != nil {
		delete(m.byID, app.ID)
		m.order = m.order[:len(m.order)-1]
		return "", err
	}
	return app.ID, nil
}

func (m *MemoryStore) GetByID(_ context.Context, id string) (models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.byID[id]
	if !ok {
		return models.Application{}, ErrNotFound
	}
	return app.Clone(), nil
}

func (m *MemoryStore) ListAll(_ context.Context) ([]models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Application, 0, len(m.order))
	for _, id := range m.order {
		result = append(result, m.byID[id].Clone())
	}
	return result, nil
}

func (m *MemoryStore) Update(_ context.Context, app models.Application, expectedVersion int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.byID[app.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != expectedVersion {
		return ErrVersionConflict
	}

	app.Version = expectedVersion + 1
	m.byID[app.ID] = app.Clone()

	if err := m.changed(); err != nil {
		m.byID[app.ID] = current
		return err
	}
	return nil
}

func (m *MemoryStore) SearchByText(_ context.Context, query string) ([]models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Application, 0)
	for _, id := range m.order {
		app := m.byID[id]
		if filter.MatchesQuery(query, app.FacultyMember.Name, app.FacultyMember.Email) {
			result = append(result, app.Clone())
		}
	}
	return result, nil
}

func (m *MemoryStore) Close() {}

func (m *MemoryStore) changed() error {
	if m.onChange == nil {
		return nil
	}
	return m.onChange()
}

// snapshotLocked returns records in insertion order. Caller holds the lock.
func (m *MemoryStore) snapshotLocked() []models.Application {
	out := make([]models.Application, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.byID[id])
	}
	return out
}
