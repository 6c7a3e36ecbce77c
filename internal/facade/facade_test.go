// internal/facade/facade_test.go
package facade

import (
	"context"
	"errors"
	"testing"

	apperrors "rentflow/internal/common/errors"
	"rentflow/internal/common/logger"
	"rentflow/internal/models"
	"rentflow/internal/notify"
	"rentflow/internal/property"
	appregistry "rentflow/internal/registry"
	"rentflow/internal/tasks"
	"rentflow/internal/workflow"
	stageregistry "rentflow/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	facade *Facade
	apps   *appregistry.MockStore
	tasks  *tasks.MockStore
	conv   *notify.MockStore
	props  *property.MockStore
}

func newFixture(t *testing.T) *fixture {
	log := logger.NewTestLogger(t)

	apps := appregistry.NewMockStore()
	taskStore := tasks.NewMockStore()
	convStore := notify.NewMockStore()
	propStore := property.NewMockStore()
	propStore.SeedProperty("prop-1", "12 Elm Street")
	propStore.SeedProperty("prop-2", "99 Oak Avenue")

	engine := workflow.NewEngine(apps, log)
	coordinator := tasks.NewCoordinator(taskStore, stageregistry.Defaults(), log)
	dispatcher := notify.NewDispatcher(convStore, nil, nil, log)

	f, err := New(apps, engine, coordinator, dispatcher, propStore, nil, log)
	require.NoError(t, err)

	return &fixture{facade: f, apps: apps, tasks: taskStore, conv: convStore, props: propStore}
}

func seedApp(fx *fixture, id, propertyID string, status models.Status, step int, extra func(*models.Application)) {
	app := models.Application{
		ID:            id,
		PropertyID:    propertyID,
		ApplicantName: "Applicant " + id,
		TenantUserID:  "tenant-" + id,
		AgentID:       "agent-1",
		LandlordID:    "landlord-1",
		Status:        status,
		Step:          step,
	}
	if extra != nil {
		extra(&app)
	}
	fx.apps.Seed(app)
}

func TestSubmitApplication(t *testing.T) {
	fx := newFixture(t)

	app, err := fx.facade.SubmitApplication(context.Background(), SubmissionRequest{
		PropertyID:    "prop-1",
		ApplicantName: "Jane Doe",
		TenantUserID:  "tenant-jane",
		AgentID:       "agent-1",
		LandlordID:    "landlord-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUndetermined, app.Status)
	assert.Equal(t, models.StepScreening, app.Step)
	assert.NotEmpty(t, app.ID)
}

func TestSubmitApplication_RejectsInvalidInput(t *testing.T) {
	fx := newFixture(t)

	tests := []struct {
		name string
		req  SubmissionRequest
	}{
		{"missing property", SubmissionRequest{ApplicantName: "Jane", AgentID: "a", LandlordID: "l"}},
		{"missing applicant name", SubmissionRequest{PropertyID: "prop-1", AgentID: "a", LandlordID: "l"}},
		{"missing agent", SubmissionRequest{PropertyID: "prop-1", ApplicantName: "Jane", LandlordID: "l"}},
		{"missing landlord", SubmissionRequest{PropertyID: "prop-1", ApplicantName: "Jane", AgentID: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.facade.SubmitApplication(context.Background(), tt.req)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
		})
	}
}

func TestSendAcceptedToLandlord(t *testing.T) {
	fx := newFixture(t)
	seedApp(fx, "app-1", "prop-1", models.StatusAccepted, 1, nil)
	seedApp(fx, "app-2", "prop-1", models.StatusAccepted, 1, nil)
	seedApp(fx, "app-3", "prop-1", models.StatusAccepted, 1, nil)
	// A rejected sibling stays behind.
	seedApp(fx, "app-4", "prop-1", models.StatusRejected, 1, nil)

	result, err := fx.facade.SendAcceptedToLandlord(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)
	require.NotEmpty(t, result.TaskID)
	assert.Equal(t, 1, fx.tasks.Count(), "one shared task for the whole batch")

	for _, id := range []string{"app-1", "app-2", "app-3"} {
		app, err := fx.apps.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusLandlordReview, app.Status)
		assert.Equal(t, models.StepLandlordReview, app.Step)
		assert.Equal(t, result.TaskID, app.TaskID)
	}

	left, err := fx.apps.GetByID(context.Background(), "app-4")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, left.Status)
	assert.Empty(t, left.TaskID)
}

func TestSendAcceptedToLandlord_EmptyBatch(t *testing.T) {
	fx := newFixture(t)
	seedApp(fx, "app-1", "prop-1", models.StatusUndetermined, 1, nil)

	_, err := fx.facade.SendAcceptedToLandlord(context.Background(), "prop-1")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, 0, fx.tasks.Count(), "no task without a batch")
}

func TestSendApprovedToBackgroundCheck_StampsLinkedTask(t *testing.T) {
	fx := newFixture(t)
	seedApp(fx, "app-1", "prop-1", models.StatusLandlordApproved, 2, nil)
	seedApp(fx, "app-2", "prop-1", models.StatusLandlordApproved, 2, nil)

	result, err := fx.facade.SendApprovedToBackgroundCheck(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)

	for _, id := range []string{"app-1", "app-2"} {
		app, err := fx.apps.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusBackgroundCheckPending, app.Status)
		assert.Equal(t, models.StepBackgroundCheck, app.Step)
		assert.Equal(t, result.TaskID, app.TaskID)
		assert.Equal(t, result.TaskID, app.LinkedTaskID, "background check task persists as linked task")
	}
}

func TestSendPassedToFinalReview_UpdatesNotCreates(t *testing.T) {
	fx := newFixture(t)
	seedApp(fx, "app-1", "prop-1", models.StatusLandlordApproved, 2, nil)
	seedApp(fx, "app-2", "prop-1", models.StatusLandlordApproved, 2, nil)

	_, err := fx.facade.SendApprovedToBackgroundCheck(context.Background(), "prop-1")
	require.NoError(t, err)
	require.Equal(t, 1, fx.tasks.Count())

	_, err = fx.facade.Accept(context.Background(), "app-1")
	require.NoError(t, err)
	_, err = fx.facade.Accept(context.Background(), "app-2")
	require.NoError(t, err)

	result, err := fx.facade.SendPassedToFinalReview(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 1, fx.tasks.Count(), "final review reuses the linked task")

	for _, id := range []string{"app-1", "app-2"} {
		app, err := fx.apps.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFinalReview, app.Status)
		assert.Equal(t, models.StepFinalReview, app.Step)
	}
}

func TestFinalize_NotifiesChosenAndRejected(t *testing.T) {
	fx := newFixture(t)
	seedApp(fx, "app-a", "prop-2", models.StatusFinalApproved, 4, func(a *models.Application) {
		a.LinkedTaskID = ""
	})
	seedApp(fx, "app-b", "prop-2", models.StatusFinalReview, 4, nil)
	seedApp(fx, "app-c", "prop-2", models.StatusFinalReview, 4, nil)

	result, err := fx.facade.Finalize(context.Background(), "prop-2")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.NotifiedCount)
	assert.Empty(t, result.Errors)
	assert.Equal(t, models.StatusTenantChosen, result.Application.Status)
	assert.Equal(t, models.StepTenantChosen, result.Application.Step)

	chosen, err := fx.apps.GetByID(context.Background(), "app-a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTenantChosen, chosen.Status)
	assert.Equal(t, "tenant-app-a", fx.props.Tenant("prop-2"))

	msgs := fx.conv.Messages()
	require.Len(t, msgs, 3, "2 rejections and 1 acceptance")

	accepted := 0
	rejected := 0
	for _, msg := range msgs {
		if msg.Body == "Congratulations! Your application for 99 Oak Avenue has been approved. You have been selected as the tenant." {
			accepted++
		} else {
			rejected++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 2, rejected)
}

func TestFinalize_RequiresExactlyOneCandidate(t *testing.T) {
	tests := []struct {
		name     string
		statuses []models.Status
	}{
		{"no candidates", []models.Status{models.StatusFinalReview, models.StatusFinalReview}},
		{"two candidates", []models.Status{models.StatusFinalApproved, models.StatusFinalApproved}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t)
			for i, status := range tt.statuses {
				seedApp(fx, []string{"app-a", "app-b"}[i], "prop-1", status, 4, nil)
			}

			_, err := fx.facade.Finalize(context.Background(), "prop-1")
			assert.True(t, errors.Is(err, apperrors.ErrInvalidBatchSize))

			// Nothing mutated.
			assert.Empty(t, fx.props.Tenant("prop-1"))
			assert.Empty(t, fx.conv.Messages())
			for i := range tt.statuses {
				app, err := fx.apps.GetByID(context.Background(), []string{"app-a", "app-b"}[i])
				require.NoError(t, err)
				assert.Equal(t, tt.statuses[i], app.Status)
			}
		})
	}
}

func TestFinalize_IsolatesNotificationFailures(t *testing.T) {
	fx := newFixture(t)
	seedApp(fx, "app-a", "prop-1", models.StatusFinalApproved, 4, nil)
	seedApp(fx, "app-b", "prop-1", models.StatusFinalReview, 4, nil)
	seedApp(fx, "app-c", "prop-1", models.StatusFinalReview, 4, nil)

	// Pre-create B's channel and make delivery to it fail.
	conv, err := fx.conv.CreateConversation(context.Background(), "agent-1", "tenant-app-b", "prop-1")
	require.NoError(t, err)
	fx.conv.FailFor[conv.ID] = true

	result, err := fx.facade.Finalize(context.Background(), "prop-1")
	require.NoError(t, err, "notification failures must not fail the operation")
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.NotifiedCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, apperrors.ErrCodeNotificationFailed, result.Errors[0].Code)
	assert.Contains(t, result.Message, "1 notification(s) failed")

	// The committed state stands.
	chosen, err := fx.apps.GetByID(context.Background(), "app-a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTenantChosen, chosen.Status)
	assert.Equal(t, "tenant-app-a", fx.props.Tenant("prop-1"))
}

func TestFinalize_UnknownProperty(t *testing.T) {
	fx := newFixture(t)
	seedApp(fx, "app-a", "prop-x", models.StatusFinalApproved, 4, nil)

	_, err := fx.facade.Finalize(context.Background(), "prop-x")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestAcceptRejectReset_FlowThroughEngine(t *testing.T) {
	fx := newFixture(t)
	seedApp(fx, "app-1", "prop-1", models.StatusUndetermined, 1, nil)

	app, err := fx.facade.Accept(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, app.Status)

	app, err = fx.facade.Reset(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUndetermined, app.Status)

	app, err = fx.facade.Reject(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, app.Status)
}
