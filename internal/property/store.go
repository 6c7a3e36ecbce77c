// internal/property/store.go
package property

import "context"

// Store reads and updates the property records the workflow touches.
type Store interface {
	// Address returns the street address for task naming.
	Address(ctx context.Context, propertyID string) (string, error)
	// SetTenant records the chosen tenant on the property.
	SetTenant(ctx context.Context, propertyID, tenantUserID string) error
}
