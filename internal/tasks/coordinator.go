// internal/tasks/coordinator.go
package tasks

import (
	"context"
	"time"

	wferrors "rentflow/internal/common/errors"
	"rentflow/internal/common/logger"
	"rentflow/internal/models"
	"rentflow/pkg/registry"
)

// StageRequest carries the context a stage task is rendered from.
type StageRequest struct {
	AssigneeID string
	PropertyID string
	Address    string
	// Count is the number of applications in the batch the task covers.
	Count int
}

// Coordinator renders and persists stage tasks. Whether a stage gets a
// fresh task or an in-place update of an existing one is the caller's
// decision, driven by Application.LinkedTaskID.
type Coordinator struct {
	store  Store
	stages *registry.StageRegistry
	logger logger.Logger
	now    func() time.Time
}

func NewCoordinator(store Store, stages *registry.StageRegistry, log logger.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		stages: stages,
		logger: log.WithFields(map[string]interface{}{"component": "tasks"}),
		now:    time.Now,
	}
}

// CreateForStage creates a fresh task for the given stage and returns its
// id. Due date is now plus the stage's due-day policy (7 days for
// landlord-review and background-check).
func (c *Coordinator) CreateForStage(ctx context.Context, stageID string, req StageRequest) (string, error) {
	stage, ok := c.stages.Stage(stageID)
	if !ok {
		return "", wferrors.NewNotFoundError("stage", stageID)
	}

	task := models.Task{
		AssigneeID:  req.AssigneeID,
		Role:        models.AssigneeRole(stage.AssigneeRole),
		Name:        registry.Render(stage.NameTemplate, req.Address, req.Count),
		Description: registry.Render(stage.DescriptionTemplate, req.Address, req.Count),
		DueDate:     c.dueDate(stage),
		Priority:    stage.Priority,
		PropertyID:  req.PropertyID,
		Address:     req.Address,
	}

	id, err := c.store.Create(ctx, task)
	if err != nil {
		return "", err
	}

	c.logger.Info("stage task created", map[string]interface{}{
		"taskId":     id,
		"stage":      stageID,
		"propertyId": req.PropertyID,
		"dueDate":    task.DueDate,
	})
	return id, nil
}

// UpdateForStage rewrites an existing task for the given stage instead of
// creating a new row (3-day due date for final-processing).
func (c *Coordinator) UpdateForStage(ctx context.Context, taskID, stageID string, req StageRequest) (string, error) {
	stage, ok := c.stages.Stage(stageID)
	if !ok {
		return "", wferrors.NewNotFoundError("stage", stageID)
	}

	fields := Fields{
		Name:        registry.Render(stage.NameTemplate, req.Address, req.Count),
		Description: registry.Render(stage.DescriptionTemplate, req.Address, req.Count),
		DueDate:     c.dueDate(stage),
		Priority:    stage.Priority,
	}

	if err := c.store.Update(ctx, taskID, fields); err != nil {
		return "", err
	}

	c.logger.Info("stage task updated", map[string]interface{}{
		"taskId":     taskID,
		"stage":      stageID,
		"propertyId": req.PropertyID,
		"dueDate":    fields.DueDate,
	})
	return taskID, nil
}

func (c *Coordinator) dueDate(stage registry.Stage) time.Time {
	return c.now().UTC().AddDate(0, 0, stage.DueDays)
}
