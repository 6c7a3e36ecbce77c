// internal/property/mock_store.go
package property

import (
	"context"
	"sync"

	apperrors "rentflow/internal/common/errors"
)

// MockStore is an in-memory Store for tests.
type MockStore struct {
	mu        sync.Mutex
	addresses map[string]string
	tenants   map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{
		addresses: make(map[string]string),
		tenants:   make(map[string]string),
	}
}

// SeedProperty registers a property with its address.
func (m *MockStore) SeedProperty(propertyID, address string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses[propertyID] = address
}

func (m *MockStore) Address(_ context.Context, propertyID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	address, ok := m.addresses[propertyID]
	if !ok {
		return "", apperrors.NewNotFoundError("property", propertyID)
	}
	return address, nil
}

func (m *MockStore) SetTenant(_ context.Context, propertyID, tenantUserID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.addresses[propertyID]; !ok {
		return apperrors.NewNotFoundError("property", propertyID)
	}
	m.tenants[propertyID] = tenantUserID
	return nil
}

// Tenant returns the tenant recorded for the property, if any.
func (m *MockStore) Tenant(propertyID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tenants[propertyID]
}
