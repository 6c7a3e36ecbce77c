// internal/workflow/engine_test.go
package workflow

import (
	"context"
	"errors"
	"testing"

	wferrors "rentflow/internal/common/errors"
	"rentflow/internal/common/logger"
	"rentflow/internal/models"
	"rentflow/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededEngine(t *testing.T, apps ...models.Application) (*Engine, *registry.MockStore) {
	store := registry.NewMockStore()
	for _, app := range apps {
		store.Seed(app)
	}
	return NewEngine(store, logger.NewTestLogger(t)), store
}

func TestDecisionTableTotality(t *testing.T) {
	allStatuses := []models.Status{
		models.StatusUndetermined, models.StatusAccepted, models.StatusRejected,
		models.StatusLandlordReview, models.StatusLandlordApproved, models.StatusLandlordRejected,
		models.StatusBackgroundCheckPending, models.StatusBackgroundCheckPassed, models.StatusBackgroundCheckFailed,
		models.StatusFinalReview, models.StatusFinalApproved, models.StatusFinalRejected,
		models.StatusTenantChosen,
	}

	documented := map[models.Status]struct {
		accept models.Status
		reject models.Status
	}{
		models.StatusUndetermined:           {models.StatusAccepted, models.StatusRejected},
		models.StatusLandlordReview:         {models.StatusLandlordApproved, models.StatusLandlordRejected},
		models.StatusBackgroundCheckPending: {models.StatusBackgroundCheckPassed, models.StatusBackgroundCheckFailed},
		models.StatusFinalReview:            {models.StatusFinalApproved, models.StatusFinalRejected},
	}

	for _, status := range allStatuses {
		for _, action := range []Action{ActionAccept, ActionReject} {
			next, _, ok := Next(status, action)
			want, defined := documented[status]

			if !defined {
				assert.False(t, ok, "status %s action %s should have no transition", status, action)
				continue
			}
			require.True(t, ok, "status %s action %s should transition", status, action)
			if action == ActionAccept {
				assert.Equal(t, want.accept, next)
			} else {
				assert.Equal(t, want.reject, next)
			}
		}
	}
}

func TestResetTargetCoversEveryDecidedStatus(t *testing.T) {
	tests := []struct {
		from models.Status
		to   models.Status
		step int
	}{
		{models.StatusAccepted, models.StatusUndetermined, models.StepScreening},
		{models.StatusRejected, models.StatusUndetermined, models.StepScreening},
		{models.StatusLandlordApproved, models.StatusLandlordReview, models.StepLandlordReview},
		{models.StatusLandlordRejected, models.StatusLandlordReview, models.StepLandlordReview},
		{models.StatusBackgroundCheckPassed, models.StatusBackgroundCheckPending, models.StepBackgroundCheck},
		{models.StatusBackgroundCheckFailed, models.StatusBackgroundCheckPending, models.StepBackgroundCheck},
		{models.StatusFinalApproved, models.StatusFinalReview, models.StepFinalReview},
		{models.StatusFinalRejected, models.StatusFinalReview, models.StepFinalReview},
	}

	for _, tt := range tests {
		to, step, ok := ResetTarget(tt.from)
		require.True(t, ok, "reset from %s", tt.from)
		assert.Equal(t, tt.to, to)
		assert.Equal(t, tt.step, step)
	}

	for _, pending := range []models.Status{
		models.StatusUndetermined, models.StatusLandlordReview,
		models.StatusBackgroundCheckPending, models.StatusFinalReview,
		models.StatusTenantChosen,
	} {
		_, _, ok := ResetTarget(pending)
		assert.False(t, ok, "reset from %s should be unsupported", pending)
	}
}

func TestStepNeverDecreasesAlongThePipeline(t *testing.T) {
	engine, store := seededEngine(t, models.Application{
		ID: "app-1", PropertyID: "prop-1",
		Status: models.StatusUndetermined, Step: models.StepScreening,
	})
	ctx := context.Background()

	stages := []struct {
		name string
		to   models.Status
		step int
	}{
		{"landlord review", models.StatusLandlordReview, models.StepLandlordReview},
		{"background check", models.StatusBackgroundCheckPending, models.StepBackgroundCheck},
		{"final review", models.StatusFinalReview, models.StepFinalReview},
		{"tenant chosen", models.StatusTenantChosen, models.StepTenantChosen},
	}

	prevStep := models.StepScreening
	for _, stage := range stages {
		app, err := engine.DecideOne(ctx, "app-1", ActionAccept)
		require.NoError(t, err, stage.name)
		assert.GreaterOrEqual(t, app.Step, prevStep, "decision at %s", stage.name)

		_, err = engine.Advance(ctx, "prop-1", []string{"app-1"},
			app.Status, stage.to, stage.step, "")
		require.NoError(t, err, stage.name)

		stored, err := store.GetByID(ctx, "app-1")
		require.NoError(t, err)
		assert.Equal(t, stage.step, stored.Step)
		assert.GreaterOrEqual(t, stored.Step, prevStep, "advance to %s", stage.name)
		prevStep = stored.Step
	}
	assert.Equal(t, models.StepTenantChosen, prevStep)
}

func TestDecideOne_DispatchesByCurrentStatus(t *testing.T) {
	tests := []struct {
		name    string
		current models.Status
		action  Action
		want    models.Status
		step    int
	}{
		{"agent accepts submission", models.StatusUndetermined, ActionAccept, models.StatusAccepted, 1},
		{"agent rejects submission", models.StatusUndetermined, ActionReject, models.StatusRejected, 1},
		{"background check passes", models.StatusBackgroundCheckPending, ActionAccept, models.StatusBackgroundCheckPassed, 3},
		{"background check fails", models.StatusBackgroundCheckPending, ActionReject, models.StatusBackgroundCheckFailed, 3},
		{"landlord final approval", models.StatusFinalReview, ActionAccept, models.StatusFinalApproved, 4},
		{"landlord final rejection", models.StatusFinalReview, ActionReject, models.StatusFinalRejected, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, store := seededEngine(t, models.Application{
				ID: "app-1", PropertyID: "prop-1", Status: tt.current, Step: tt.step,
			})

			app, err := engine.DecideOne(context.Background(), "app-1", tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, app.Status)
			assert.Equal(t, tt.step, app.Step)

			stored, err := store.GetByID(context.Background(), "app-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.Status)
		})
	}
}

func TestDecideOne_UnsupportedStatus(t *testing.T) {
	engine, _ := seededEngine(t, models.Application{
		ID: "app-1", PropertyID: "prop-1", Status: models.StatusTenantChosen, Step: 5,
	})

	_, err := engine.DecideOne(context.Background(), "app-1", ActionAccept)
	assert.True(t, errors.Is(err, wferrors.ErrUnsupportedTransition))
}

func TestDecideOne_NotFound(t *testing.T) {
	engine, _ := seededEngine(t)
	_, err := engine.DecideOne(context.Background(), "missing", ActionAccept)
	assert.True(t, errors.Is(err, wferrors.ErrNotFound))
}

func TestAcceptThenResetRoundTrip(t *testing.T) {
	engine, store := seededEngine(t, models.Application{
		ID: "app-1", PropertyID: "prop-1",
		Status: models.StatusUndetermined, Step: 1,
		TaskID: "task-9", LinkedTaskID: "task-7",
	})

	_, err := engine.DecideOne(context.Background(), "app-1", ActionAccept)
	require.NoError(t, err)

	app, err := engine.ResetOne(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUndetermined, app.Status)
	assert.Equal(t, 1, app.Step)

	stored, err := store.GetByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "task-9", stored.TaskID, "reset must not touch task linkage")
	assert.Equal(t, "task-7", stored.LinkedTaskID, "reset must not touch task linkage")
}

func TestAdvance_AllOrNothing(t *testing.T) {
	engine, store := seededEngine(t,
		models.Application{ID: "app-1", PropertyID: "prop-1", Status: models.StatusAccepted, Step: 1},
		models.Application{ID: "app-2", PropertyID: "prop-1", Status: models.StatusAccepted, Step: 1},
		models.Application{ID: "app-3", PropertyID: "prop-1", Status: models.StatusAccepted, Step: 1},
	)

	count, err := engine.Advance(context.Background(), "prop-1",
		[]string{"app-1", "app-2", "app-3"},
		models.StatusAccepted, models.StatusLandlordReview, models.StepLandlordReview, "task-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	for _, id := range []string{"app-1", "app-2", "app-3"} {
		app, err := store.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusLandlordReview, app.Status)
		assert.Equal(t, models.StepLandlordReview, app.Step)
		assert.Equal(t, "task-1", app.TaskID)
	}
}

func TestAdvance_RejectsMixedStatusBatch(t *testing.T) {
	engine, store := seededEngine(t,
		models.Application{ID: "app-1", PropertyID: "prop-1", Status: models.StatusAccepted, Step: 1},
		models.Application{ID: "app-2", PropertyID: "prop-1", Status: models.StatusRejected, Step: 1},
	)

	_, err := engine.Advance(context.Background(), "prop-1",
		[]string{"app-1", "app-2"},
		models.StatusAccepted, models.StatusLandlordReview, models.StepLandlordReview, "task-1")
	assert.True(t, errors.Is(err, wferrors.ErrUnsupportedTransition))

	// Nothing moved.
	app, err := store.GetByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, app.Status)
	assert.Empty(t, app.TaskID)
}

func TestAdvance_RejectsBatchSpanningProperties(t *testing.T) {
	engine, _ := seededEngine(t,
		models.Application{ID: "app-1", PropertyID: "prop-1", Status: models.StatusAccepted, Step: 1},
		models.Application{ID: "app-2", PropertyID: "prop-2", Status: models.StatusAccepted, Step: 1},
	)

	_, err := engine.Advance(context.Background(), "prop-1",
		[]string{"app-1", "app-2"},
		models.StatusAccepted, models.StatusLandlordReview, models.StepLandlordReview, "task-1")
	assert.True(t, errors.Is(err, wferrors.ErrValidation))
}

func TestAdvance_ValidatesInput(t *testing.T) {
	engine, _ := seededEngine(t)

	_, err := engine.Advance(context.Background(), "",
		[]string{"app-1"}, models.StatusAccepted, models.StatusLandlordReview, 2, "")
	assert.True(t, errors.Is(err, wferrors.ErrValidation))

	_, err = engine.Advance(context.Background(), "prop-1",
		nil, models.StatusAccepted, models.StatusLandlordReview, 2, "")
	assert.True(t, errors.Is(err, wferrors.ErrValidation))
}

func TestLinkTask(t *testing.T) {
	engine, store := seededEngine(t,
		models.Application{ID: "app-1", PropertyID: "prop-1", Status: models.StatusBackgroundCheckPending, Step: 3},
		models.Application{ID: "app-2", PropertyID: "prop-1", Status: models.StatusBackgroundCheckPending, Step: 3},
	)

	require.NoError(t, engine.LinkTask(context.Background(), []string{"app-1", "app-2"}, "task-5"))

	for _, id := range []string{"app-1", "app-2"} {
		app, err := store.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "task-5", app.LinkedTaskID)
	}
}
