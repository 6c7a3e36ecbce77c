// Package tasks creates and updates the task records that track the human
// work item for a workflow stage.
package tasks

import (
	"context"
	"time"

	"rentflow/internal/models"
)

// Fields holds the mutable task attributes for an in-place update.
type Fields struct {
	Name        string
	Description string
	DueDate     time.Time
	Priority    string
}

// Store is the task persistence surface.
type Store interface {
	Create(ctx context.Context, task models.Task) (string, error)
	Update(ctx context.Context, id string, fields Fields) error
	Get(ctx context.Context, id string) (models.Task, error)
}
