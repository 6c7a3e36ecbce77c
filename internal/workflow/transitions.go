// internal/workflow/transitions.go
package workflow

import "rentflow/internal/models"

// Action is a decision taken on an application. The same two actions serve
// agent screening, background checking and the landlord's final decision;
// the current status selects which transition applies.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
)

// decision is one row of the decision table: from a pending status, accept
// and reject each lead to a documented sub-status at a fixed step.
type decision struct {
	accept models.Status
	reject models.Status
	step   int
}

// decisionTable is the single source of truth for accept/reject dispatch.
var decisionTable = map[models.Status]decision{
	models.StatusUndetermined: {
		accept: models.StatusAccepted,
		reject: models.StatusRejected,
		step:   models.StepScreening,
	},
	models.StatusLandlordReview: {
		accept: models.StatusLandlordApproved,
		reject: models.StatusLandlordRejected,
		step:   models.StepLandlordReview,
	},
	models.StatusBackgroundCheckPending: {
		accept: models.StatusBackgroundCheckPassed,
		reject: models.StatusBackgroundCheckFailed,
		step:   models.StepBackgroundCheck,
	},
	models.StatusFinalReview: {
		accept: models.StatusFinalApproved,
		reject: models.StatusFinalRejected,
		step:   models.StepFinalReview,
	},
}

// resetTable maps a decided sub-status back to its pending parent. Step
// numbers follow the forward numbering: landlord review is step 2 and
// background check is step 3 both ways.
var resetTable = map[models.Status]struct {
	to   models.Status
	step int
}{
	models.StatusAccepted:              {models.StatusUndetermined, models.StepScreening},
	models.StatusRejected:              {models.StatusUndetermined, models.StepScreening},
	models.StatusLandlordApproved:      {models.StatusLandlordReview, models.StepLandlordReview},
	models.StatusLandlordRejected:      {models.StatusLandlordReview, models.StepLandlordReview},
	models.StatusBackgroundCheckPassed: {models.StatusBackgroundCheckPending, models.StepBackgroundCheck},
	models.StatusBackgroundCheckFailed: {models.StatusBackgroundCheckPending, models.StepBackgroundCheck},
	models.StatusFinalApproved:         {models.StatusFinalReview, models.StepFinalReview},
	models.StatusFinalRejected:         {models.StatusFinalReview, models.StepFinalReview},
}

// Next resolves the decision table for (current, action). The second return
// is the step of the resulting status.
func Next(current models.Status, action Action) (models.Status, int, bool) {
	d, ok := decisionTable[current]
	if !ok {
		return "", 0, false
	}
	switch action {
	case ActionAccept:
		return d.accept, d.step, true
	case ActionReject:
		return d.reject, d.step, true
	}
	return "", 0, false
}

// ResetTarget resolves the reset table for a decided sub-status.
func ResetTarget(current models.Status) (models.Status, int, bool) {
	r, ok := resetTable[current]
	if !ok {
		return "", 0, false
	}
	return r.to, r.step, true
}
