// Package workflow is the state-transition authority for tenant
// applications. All status mutations go through the Engine; the transition
// tables in transitions.go are the only definition of what is allowed.
package workflow

import (
	"context"

	wferrors "rentflow/internal/common/errors"
	"rentflow/internal/common/logger"
	"rentflow/internal/common/metrics"
	"rentflow/internal/models"
	"rentflow/internal/registry"
)

type Engine struct {
	store  registry.Store
	logger logger.Logger
}

func NewEngine(store registry.Store, log logger.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "workflow"}),
	}
}

// DecideOne applies an accept/reject decision to a single application. The
// current status selects the transition: UNDETERMINED for agent screening,
// BACKGROUND_CHECK_PENDING for the check result, FINAL_REVIEW for the
// landlord's final decision.
func (e *Engine) DecideOne(ctx context.Context, id string, action Action) (models.Application, error) {
	app, err := e.store.GetByID(ctx, id)
	if err != nil {
		return models.Application{}, err
	}

	to, step, ok := Next(app.Status, action)
	if !ok {
		metrics.TransitionsRejected.WithLabelValues(string(wferrors.ErrCodeUnsupportedTransition)).Inc()
		return models.Application{}, wferrors.NewUnsupportedTransitionError(id, app.Status, string(action))
	}

	if err := e.store.UpdateStatus(ctx, id, app.Version, to, step); err != nil {
		return models.Application{}, err
	}

	metrics.TransitionsCommitted.WithLabelValues(string(app.Status), string(to)).Inc()
	e.logger.Info("decision applied", map[string]interface{}{
		"applicationId": id,
		"from":          app.Status,
		"to":            to,
		"action":        action,
	})

	app.Status = to
	app.Step = step
	app.Version++
	return app, nil
}

// ResetOne undoes one decision, moving a decided sub-status back to its
// pending parent. Task linkage fields are left untouched.
func (e *Engine) ResetOne(ctx context.Context, id string) (models.Application, error) {
	app, err := e.store.GetByID(ctx, id)
	if err != nil {
		return models.Application{}, err
	}

	to, step, ok := ResetTarget(app.Status)
	if !ok {
		metrics.TransitionsRejected.WithLabelValues(string(wferrors.ErrCodeUnsupportedTransition)).Inc()
		return models.Application{}, wferrors.NewUnsupportedTransitionError(id, app.Status, "reset")
	}

	if err := e.store.UpdateStatus(ctx, id, app.Version, to, step); err != nil {
		return models.Application{}, err
	}

	metrics.TransitionsCommitted.WithLabelValues(string(app.Status), string(to)).Inc()
	e.logger.Info("decision reset", map[string]interface{}{
		"applicationId": id,
		"from":          app.Status,
		"to":            to,
	})

	app.Status = to
	app.Step = step
	app.Version++
	return app, nil
}

// Advance moves a batch of applications from one status to the next as a
// single all-or-nothing unit. Every id must belong to the given property
// and currently hold the source status; otherwise nothing is written.
func (e *Engine) Advance(ctx context.Context, propertyID string, ids []string, from, to models.Status, step int, taskID string) (int, error) {
	if propertyID == "" {
		return 0, wferrors.NewValidationError("missing property id", "")
	}
	if len(ids) == 0 {
		return 0, wferrors.NewValidationError("empty batch", "no applications in source status "+string(from))
	}

	// Pre-check gives precise errors; the strict update below still catches
	// anything that changed between here and the commit.
	for _, id := range ids {
		app, err := e.store.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if app.PropertyID != propertyID {
			return 0, wferrors.NewValidationError("batch spans properties",
				"application "+id+" belongs to property "+app.PropertyID)
		}
		if app.Status != from {
			metrics.TransitionsRejected.WithLabelValues(string(wferrors.ErrCodeUnsupportedTransition)).Inc()
			return 0, wferrors.NewUnsupportedTransitionError(id, app.Status, "advance to "+string(to))
		}
	}

	count, err := e.store.UpdateStatuses(ctx, ids, from, to, step, taskID)
	if err != nil {
		metrics.TransitionsRejected.WithLabelValues(string(wferrors.CodeOf(err))).Inc()
		return 0, err
	}

	metrics.TransitionsCommitted.WithLabelValues(string(from), string(to)).Add(float64(count))
	metrics.BatchSize.WithLabelValues(string(to)).Observe(float64(count))
	e.logger.Info("batch transition committed", map[string]interface{}{
		"propertyId": propertyID,
		"count":      count,
		"from":       from,
		"to":         to,
		"taskId":     taskID,
	})
	return count, nil
}

// LinkTask stamps the persistent task id on every application in the batch.
func (e *Engine) LinkTask(ctx context.Context, ids []string, taskID string) error {
	for _, id := range ids {
		if err := e.store.UpdateLinkedTask(ctx, id, taskID); err != nil {
			return err
		}
	}
	return nil
}
