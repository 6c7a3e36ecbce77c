// Package facade is the boundary the UI calls. It orchestrates the
// workflow engine, task coordinator, notification dispatcher and property
// collaborator into the per-stage operations an agent or landlord triggers.
package facade

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "rentflow/internal/common/errors"
	"rentflow/internal/common/logger"
	"rentflow/internal/common/observability"
	"rentflow/internal/models"
	"rentflow/internal/notify"
	"rentflow/internal/property"
	registrystore "rentflow/internal/registry"
	"rentflow/internal/tasks"
	"rentflow/internal/workflow"
	stageregistry "rentflow/pkg/registry"

	"github.com/xeipuuv/gojsonschema"
)

// SubmissionRequest is a tenant's application for a property.
type SubmissionRequest struct {
	PropertyID    string `json:"propertyId"`
	ApplicantName string `json:"applicantName"`
	TenantUserID  string `json:"tenantUserId,omitempty"`
	AgentID       string `json:"agentId"`
	LandlordID    string `json:"landlordId"`
}

// BatchResult reports a committed batch stage transition.
type BatchResult struct {
	Count   int    `json:"count"`
	TaskID  string `json:"taskId"`
	Message string `json:"message"`
}

// FinalizeResult reports the outcome of choosing a tenant. Success means
// the state transition committed; Errors lists recipients whose notices
// could not be delivered.
type FinalizeResult struct {
	Success       bool               `json:"success"`
	Application   models.Application `json:"application"`
	NotifiedCount int                `json:"notifiedCount"`
	Errors        []*apperrors.Error `json:"errors,omitempty"`
	Message       string             `json:"message"`
}

type Facade struct {
	store      registrystore.Store
	engine     *workflow.Engine
	tasks      *tasks.Coordinator
	dispatcher *notify.Dispatcher
	properties property.Store
	obs        *observability.Observability
	logger     logger.Logger
	schema     *gojsonschema.Schema
}

func New(
	store registrystore.Store,
	engine *workflow.Engine,
	coordinator *tasks.Coordinator,
	dispatcher *notify.Dispatcher,
	properties property.Store,
	obs *observability.Observability,
	log logger.Logger,
) (*Facade, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(submissionSchema))
	if err != nil {
		return nil, fmt.Errorf("compile submission schema: %w", err)
	}

	return &Facade{
		store:      store,
		engine:     engine,
		tasks:      coordinator,
		dispatcher: dispatcher,
		properties: properties,
		obs:        obs,
		logger:     log.WithFields(map[string]interface{}{"component": "facade"}),
		schema:     schema,
	}, nil
}

// SubmitApplication validates and records a new application at the start
// of the pipeline.
func (f *Facade) SubmitApplication(ctx context.Context, req SubmissionRequest) (models.Application, error) {
	defer f.record(ctx, "submit_application", time.Now())

	doc, err := json.Marshal(req)
	if err != nil {
		return models.Application{}, fmt.Errorf("marshal submission: %w", err)
	}
	result, err := f.schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return models.Application{}, fmt.Errorf("validate submission: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return models.Application{}, apperrors.NewValidationError("invalid submission", strings.Join(details, "; "))
	}

	return f.store.Insert(ctx, registrystore.NewApplication{
		PropertyID:    req.PropertyID,
		ApplicantName: req.ApplicantName,
		TenantUserID:  req.TenantUserID,
		AgentID:       req.AgentID,
		LandlordID:    req.LandlordID,
	})
}

// Accept applies a positive decision; the engine picks the transition from
// the application's current status.
func (f *Facade) Accept(ctx context.Context, id string) (models.Application, error) {
	defer f.record(ctx, "accept", time.Now())
	return f.engine.DecideOne(ctx, id, workflow.ActionAccept)
}

// Reject applies a negative decision; the engine picks the transition from
// the application's current status.
func (f *Facade) Reject(ctx context.Context, id string) (models.Application, error) {
	defer f.record(ctx, "reject", time.Now())
	return f.engine.DecideOne(ctx, id, workflow.ActionReject)
}

// Reset undoes the last decision on an application.
func (f *Facade) Reset(ctx context.Context, id string) (models.Application, error) {
	defer f.record(ctx, "reset", time.Now())
	return f.engine.ResetOne(ctx, id)
}

func (f *Facade) ListByProperty(ctx context.Context, propertyID string) ([]models.Application, error) {
	return f.store.GetByProperty(ctx, propertyID)
}

func (f *Facade) ListByLandlord(ctx context.Context, landlordID string) ([]models.Application, error) {
	return f.store.GetByLandlord(ctx, landlordID)
}

func (f *Facade) ListByAgent(ctx context.Context, agentID string) ([]models.Application, error) {
	return f.store.GetByAgent(ctx, agentID)
}

func (f *Facade) ListByTenant(ctx context.Context, tenantUserID string) ([]models.Application, error) {
	return f.store.GetByTenant(ctx, tenantUserID)
}

// SendAcceptedToLandlord moves every ACCEPTED application on the property
// to landlord review as one batch, backed by a single landlord task whose
// id is stamped on each application.
func (f *Facade) SendAcceptedToLandlord(ctx context.Context, propertyID string) (BatchResult, error) {
	defer f.record(ctx, "send_accepted_to_landlord", time.Now())

	batch, address, err := f.collectBatch(ctx, propertyID, models.StatusAccepted)
	if err != nil {
		return BatchResult{}, err
	}

	taskID, err := f.tasks.CreateForStage(ctx, stageregistry.StageLandlordReview, tasks.StageRequest{
		AssigneeID: batch[0].LandlordID,
		PropertyID: propertyID,
		Address:    address,
		Count:      len(batch),
	})
	if err != nil {
		return BatchResult{}, err
	}

	count, err := f.engine.Advance(ctx, propertyID, ids(batch),
		models.StatusAccepted, models.StatusLandlordReview, models.StepLandlordReview, taskID)
	if err != nil {
		return BatchResult{}, err
	}

	return BatchResult{
		Count:   count,
		TaskID:  taskID,
		Message: fmt.Sprintf("%d application(s) sent to landlord review", count),
	}, nil
}

// SendApprovedToBackgroundCheck moves every LANDLORD_APPROVED application
// on the property into background checking, backed by an agent task stamped
// as both the current and the linked task.
func (f *Facade) SendApprovedToBackgroundCheck(ctx context.Context, propertyID string) (BatchResult, error) {
	defer f.record(ctx, "send_approved_to_background_check", time.Now())

	batch, address, err := f.collectBatch(ctx, propertyID, models.StatusLandlordApproved)
	if err != nil {
		return BatchResult{}, err
	}

	taskID, err := f.tasks.CreateForStage(ctx, stageregistry.StageBackgroundCheck, tasks.StageRequest{
		AssigneeID: batch[0].AgentID,
		PropertyID: propertyID,
		Address:    address,
		Count:      len(batch),
	})
	if err != nil {
		return BatchResult{}, err
	}

	count, err := f.engine.Advance(ctx, propertyID, ids(batch),
		models.StatusLandlordApproved, models.StatusBackgroundCheckPending, models.StepBackgroundCheck, taskID)
	if err != nil {
		return BatchResult{}, err
	}

	// The background-check task follows the batch through the remaining
	// stages, so its id is kept as the linked task as well.
	if err := f.engine.LinkTask(ctx, ids(batch), taskID); err != nil {
		return BatchResult{}, err
	}

	return BatchResult{
		Count:   count,
		TaskID:  taskID,
		Message: fmt.Sprintf("%d application(s) sent to background check", count),
	}, nil
}

// SendPassedToFinalReview moves every BACKGROUND_CHECK_PASSED application
// on the property into the landlord's final review, rewriting the linked
// task in place instead of creating another one.
func (f *Facade) SendPassedToFinalReview(ctx context.Context, propertyID string) (BatchResult, error) {
	defer f.record(ctx, "send_passed_to_final_review", time.Now())

	batch, address, err := f.collectBatch(ctx, propertyID, models.StatusBackgroundCheckPassed)
	if err != nil {
		return BatchResult{}, err
	}

	linkedTaskID := batch[0].LinkedTaskID
	if linkedTaskID == "" {
		return BatchResult{}, apperrors.NewValidationError("no linked task",
			"application "+batch[0].ID+" has no linked task to update")
	}

	taskID, err := f.tasks.UpdateForStage(ctx, linkedTaskID, stageregistry.StageFinalProcessing, tasks.StageRequest{
		AssigneeID: batch[0].LandlordID,
		PropertyID: propertyID,
		Address:    address,
		Count:      len(batch),
	})
	if err != nil {
		return BatchResult{}, err
	}

	count, err := f.engine.Advance(ctx, propertyID, ids(batch),
		models.StatusBackgroundCheckPassed, models.StatusFinalReview, models.StepFinalReview, taskID)
	if err != nil {
		return BatchResult{}, err
	}

	return BatchResult{
		Count:   count,
		TaskID:  taskID,
		Message: fmt.Sprintf("%d application(s) sent to final review", count),
	}, nil
}

// Finalize chooses the single FINAL_APPROVED applicant as the property's
// tenant. Everyone else on the property is messaged a rejection notice,
// the chosen applicant an acceptance; delivery failures are collected per
// recipient and never roll back the committed state.
func (f *Facade) Finalize(ctx context.Context, propertyID string) (FinalizeResult, error) {
	defer f.record(ctx, "finalize", time.Now())

	if propertyID == "" {
		return FinalizeResult{}, apperrors.NewValidationError("missing property id", "")
	}

	apps, err := f.store.GetByProperty(ctx, propertyID)
	if err != nil {
		return FinalizeResult{}, err
	}

	var chosen models.Application
	candidates := 0
	for _, app := range apps {
		if app.Status == models.StatusFinalApproved {
			chosen = app
			candidates++
		}
	}
	if candidates != 1 {
		return FinalizeResult{}, apperrors.NewInvalidBatchSizeError(propertyID, candidates)
	}
	if chosen.TenantUserID == "" {
		return FinalizeResult{}, apperrors.NewValidationError("chosen applicant has no tenant account",
			"application "+chosen.ID)
	}

	address, err := f.properties.Address(ctx, propertyID)
	if err != nil {
		return FinalizeResult{}, err
	}

	if err := f.properties.SetTenant(ctx, propertyID, chosen.TenantUserID); err != nil {
		return FinalizeResult{}, err
	}

	notified := 0
	var notifyErrs []*apperrors.Error
	for _, app := range apps {
		if app.ID == chosen.ID {
			continue
		}
		body := fmt.Sprintf("Your application for %s was not selected. Thank you for your interest.", address)
		if err := f.notifyApplicant(ctx, app, propertyID, body, ""); err != nil {
			notifyErrs = append(notifyErrs, apperrors.NewNotificationSendError(app.TenantUserID, err))
			continue
		}
		notified++
	}

	acceptBody := fmt.Sprintf("Congratulations! Your application for %s has been approved. You have been selected as the tenant.", address)
	if err := f.notifyApplicant(ctx, chosen, propertyID, acceptBody, notify.PriorityHigh); err != nil {
		notifyErrs = append(notifyErrs, apperrors.NewNotificationSendError(chosen.TenantUserID, err))
	} else {
		notified++
	}

	if chosen.LinkedTaskID != "" {
		if _, err := f.tasks.UpdateForStage(ctx, chosen.LinkedTaskID, stageregistry.StageFinalProcessing, tasks.StageRequest{
			AssigneeID: chosen.AgentID,
			PropertyID: propertyID,
			Address:    address,
			Count:      1,
		}); err != nil {
			return FinalizeResult{}, err
		}
	}

	if _, err := f.engine.Advance(ctx, propertyID, []string{chosen.ID},
		models.StatusFinalApproved, models.StatusTenantChosen, models.StepTenantChosen, ""); err != nil {
		return FinalizeResult{}, err
	}
	chosen.Status = models.StatusTenantChosen
	chosen.Step = models.StepTenantChosen

	message := fmt.Sprintf("tenant chosen for property %s", propertyID)
	if len(notifyErrs) > 0 {
		message = fmt.Sprintf("tenant chosen for property %s, but %d notification(s) failed", propertyID, len(notifyErrs))
	}

	return FinalizeResult{
		Success:       true,
		Application:   chosen,
		NotifiedCount: notified,
		Errors:        notifyErrs,
		Message:       message,
	}, nil
}

// notifyApplicant delivers one decision notice through the applicant's
// conversation channel with the agent.
func (f *Facade) notifyApplicant(ctx context.Context, app models.Application, propertyID, body, priority string) error {
	recipient := app.TenantUserID
	if recipient == "" {
		return apperrors.NewValidationError("applicant has no tenant account", "application "+app.ID)
	}

	conversationID, err := f.dispatcher.EnsureConversation(ctx, app.AgentID, recipient, propertyID)
	if err != nil {
		return err
	}

	return f.dispatcher.Send(ctx, notify.Notice{
		ConversationID: conversationID,
		SenderID:       app.AgentID,
		RecipientID:    recipient,
		Subject:        "Application decision",
		Body:           body,
		Priority:       priority,
	})
}

// collectBatch gathers the property's applications in the given source
// status, failing before any mutation when the batch would be empty.
func (f *Facade) collectBatch(ctx context.Context, propertyID string, from models.Status) ([]models.Application, string, error) {
	if propertyID == "" {
		return nil, "", apperrors.NewValidationError("missing property id", "")
	}

	apps, err := f.store.GetByProperty(ctx, propertyID)
	if err != nil {
		return nil, "", err
	}

	var batch []models.Application
	for _, app := range apps {
		if app.Status == from {
			batch = append(batch, app)
		}
	}
	if len(batch) == 0 {
		return nil, "", apperrors.NewValidationError("empty batch",
			"no applications in status "+string(from)+" for property "+propertyID)
	}

	address, err := f.properties.Address(ctx, propertyID)
	if err != nil {
		return nil, "", err
	}
	return batch, address, nil
}

func (f *Facade) record(ctx context.Context, operation string, start time.Time) {
	if f.obs == nil {
		return
	}
	f.obs.RecordOperation(ctx, operation, "completed")
	f.obs.RecordDuration(ctx, operation, time.Since(start))
}

func ids(apps []models.Application) []string {
	out := make([]string, len(apps))
	for i, app := range apps {
		out[i] = app.ID
	}
	return out
}
