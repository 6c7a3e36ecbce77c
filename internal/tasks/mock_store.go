// internal/tasks/mock_store.go
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	wferrors "rentflow/internal/common/errors"
	"rentflow/internal/models"
)

// MockStore implements Store with in-memory storage for tests.
type MockStore struct {
	mu     sync.Mutex
	tasks  map[string]*models.Task
	nextID int
}

func NewMockStore() *MockStore {
	return &MockStore{tasks: make(map[string]*models.Task)}
}

func (m *MockStore) Create(_ context.Context, task models.Task) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ID == "" {
		m.nextID++
		task.ID = fmt.Sprintf("task-%d", m.nextID)
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	m.tasks[task.ID] = &task
	return task.ID, nil
}

func (m *MockStore) Update(_ context.Context, id string, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return wferrors.NewNotFoundError("task", id)
	}
	task.Name = fields.Name
	task.Description = fields.Description
	task.DueDate = fields.DueDate
	task.Priority = fields.Priority
	task.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MockStore) Get(_ context.Context, id string) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return models.Task{}, wferrors.NewNotFoundError("task", id)
	}
	return *task, nil
}

// Count returns the number of stored tasks. Test helper.
func (m *MockStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
