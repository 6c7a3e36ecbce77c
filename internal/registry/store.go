// Package registry persists application records and is the only write path
// for application status, step and task linkage fields.
package registry

import (
	"context"

	"rentflow/internal/models"
)

// NewApplication carries the fields a tenant submission provides.
type NewApplication struct {
	PropertyID    string
	ApplicantName string
	TenantUserID  string
	AgentID       string
	LandlordID    string
}

// Store defines the persistence operations for applications.
//
// UpdateStatuses is strict: it applies only to rows currently in the
// expected source status and commits nothing unless every requested id
// matched. A plain "update matching rows" would silently skip mismatched
// ids; callers rely on the loud failure instead.
type Store interface {
	GetByID(ctx context.Context, id string) (models.Application, error)
	GetByProperty(ctx context.Context, propertyID string) ([]models.Application, error)
	GetByLandlord(ctx context.Context, landlordID string) ([]models.Application, error)
	GetByAgent(ctx context.Context, agentID string) ([]models.Application, error)
	GetByTenant(ctx context.Context, tenantUserID string) ([]models.Application, error)

	Insert(ctx context.Context, app NewApplication) (models.Application, error)

	// UpdateStatus moves a single application and requires the caller's
	// last-seen version; a stale version yields a version conflict.
	UpdateStatus(ctx context.Context, id string, expectVersion int, to models.Status, step int) error

	// UpdateStatuses moves every id from the expected source status in one
	// transaction, optionally stamping taskID. Returns the committed count,
	// which equals len(ids) on success.
	UpdateStatuses(ctx context.Context, ids []string, from, to models.Status, step int, taskID string) (int, error)

	UpdateLinkedTask(ctx context.Context, id, taskID string) error
}
