// internal/registry/mock_store.go
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	wferrors "rentflow/internal/common/errors"
	"rentflow/internal/models"
)

// MockStore implements Store with in-memory storage for tests and local
// development. It mirrors the strict all-or-nothing semantics of the
// postgres implementation.
type MockStore struct {
	mu     sync.Mutex
	apps   map[string]*models.Application
	nextID int
}

func NewMockStore() *MockStore {
	return &MockStore{apps: make(map[string]*models.Application)}
}

// Seed inserts a prepared application directly, bypassing submission
// defaults. Test helper.
func (m *MockStore) Seed(app models.Application) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if app.Version == 0 {
		app.Version = 1
	}
	m.apps[app.ID] = &app
}

func (m *MockStore) GetByID(_ context.Context, id string) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return models.Application{}, wferrors.NewNotFoundError("application", id)
	}
	return *app, nil
}

func (m *MockStore) GetByProperty(_ context.Context, propertyID string) ([]models.Application, error) {
	return m.filter(func(a *models.Application) bool { return a.PropertyID == propertyID }), nil
}

func (m *MockStore) GetByLandlord(_ context.Context, landlordID string) ([]models.Application, error) {
	return m.filter(func(a *models.Application) bool { return a.LandlordID == landlordID }), nil
}

func (m *MockStore) GetByAgent(_ context.Context, agentID string) ([]models.Application, error) {
	return m.filter(func(a *models.Application) bool { return a.AgentID == agentID }), nil
}

func (m *MockStore) GetByTenant(_ context.Context, tenantUserID string) ([]models.Application, error) {
	return m.filter(func(a *models.Application) bool { return a.TenantUserID == tenantUserID }), nil
}

func (m *MockStore) filter(keep func(*models.Application) bool) []models.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Application
	for _, app := range m.apps {
		if keep(app) {
			out = append(out, *app)
		}
	}
	return out
}

func (m *MockStore) Insert(_ context.Context, in NewApplication) (models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	now := time.Now().UTC()
	app := models.Application{
		ID:            fmt.Sprintf("app-%d", m.nextID),
		PropertyID:    in.PropertyID,
		ApplicantName: in.ApplicantName,
		TenantUserID:  in.TenantUserID,
		AgentID:       in.AgentID,
		LandlordID:    in.LandlordID,
		Status:        models.StatusUndetermined,
		Step:          models.StepScreening,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.apps[app.ID] = &app
	return app, nil
}

func (m *MockStore) UpdateStatus(_ context.Context, id string, expectVersion int, to models.Status, step int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return wferrors.NewNotFoundError("application", id)
	}
	if app.Version != expectVersion {
		return wferrors.NewVersionConflictError(id)
	}
	app.Status = to
	app.Step = step
	app.Version++
	app.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockStore) UpdateStatuses(_ context.Context, ids []string, from, to models.Status, step int, taskID string) (int, error) {
	if len(ids) == 0 {
		return 0, wferrors.NewValidationError("empty batch", "no application ids given")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Verify match count before touching anything.
	matched := 0
	for _, id := range ids {
		if app, ok := m.apps[id]; ok && app.Status == from {
			matched++
		}
	}
	if matched != len(ids) {
		return 0, wferrors.NewBatchConflictError(from, to, len(ids), matched)
	}

	now := time.Now().UTC()
	for _, id := range ids {
		app := m.apps[id]
		app.Status = to
		app.Step = step
		if taskID != "" {
			app.TaskID = taskID
		}
		app.Version++
		app.UpdatedAt = now
	}
	return matched, nil
}

func (m *MockStore) UpdateLinkedTask(_ context.Context, id, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[id]
	if !ok {
		return wferrors.NewNotFoundError("application", id)
	}
	app.LinkedTaskID = taskID
	app.UpdatedAt = time.Now().UTC()
	return nil
}
