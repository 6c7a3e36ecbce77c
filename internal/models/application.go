// internal/models/application.go
package models

import "time"

// Status is the application workflow status.
type Status string

const (
	StatusUndetermined           Status = "UNDETERMINED"
	StatusAccepted               Status = "ACCEPTED"
	StatusRejected               Status = "REJECTED"
	StatusLandlordReview         Status = "LANDLORD_REVIEW"
	StatusLandlordApproved       Status = "LANDLORD_APPROVED"
	StatusLandlordRejected       Status = "LANDLORD_REJECTED"
	StatusBackgroundCheckPending Status = "BACKGROUND_CHECK_PENDING"
	StatusBackgroundCheckPassed  Status = "BACKGROUND_CHECK_PASSED"
	StatusBackgroundCheckFailed  Status = "BACKGROUND_CHECK_FAILED"
	StatusFinalReview            Status = "FINAL_REVIEW"
	StatusFinalApproved          Status = "FINAL_APPROVED"
	StatusFinalRejected          Status = "FINAL_REJECTED"
	StatusTenantChosen           Status = "TENANT_CHOSEN"
)

// Workflow steps. A step only changes in lockstep with status.
const (
	StepScreening       = 1
	StepLandlordReview  = 2
	StepBackgroundCheck = 3
	StepFinalReview     = 4
	StepTenantChosen    = 5
)

// Application is the central workflow entity. It is created when a tenant
// submits, mutated only through workflow transitions, and never deleted.
type Application struct {
	ID            string    `json:"id"`
	PropertyID    string    `json:"propertyId"`
	ApplicantName string    `json:"applicantName"`
	TenantUserID  string    `json:"tenantUserId,omitempty"`
	AgentID       string    `json:"agentId"`
	LandlordID    string    `json:"landlordId"`
	Status        Status    `json:"status"`
	Step          int       `json:"step"`
	TaskID        string    `json:"taskId,omitempty"`
	LinkedTaskID  string    `json:"linkedTaskId,omitempty"`
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsTerminal reports whether no forward transition exists from s.
// Rejections are terminal unless explicitly reset.
func (s Status) IsTerminal() bool {
	return s == StatusTenantChosen || s.IsRejection()
}

// IsRejection reports whether s is one of the terminal rejection statuses.
func (s Status) IsRejection() bool {
	switch s {
	case StatusRejected,
		StatusLandlordRejected,
		StatusBackgroundCheckFailed,
		StatusFinalRejected:
		return true
	}
	return false
}
