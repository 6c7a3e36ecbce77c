// internal/models/task.go
package models

import "time"

// AssigneeRole identifies which side of the workflow owns a task.
type AssigneeRole string

const (
	RoleAgent    AssigneeRole = "agent"
	RoleLandlord AssigneeRole = "landlord"
)

// Task tracks the current human work item for a workflow stage. Tasks for
// the landlord-review and background-check stages are created fresh; from
// the background-check stage onward one task record is carried via
// Application.LinkedTaskID and updated in place.
type Task struct {
	ID          string       `json:"id"`
	AssigneeID  string       `json:"assigneeId"`
	Role        AssigneeRole `json:"role"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"dueDate"`
	Priority    string       `json:"priority"`
	PropertyID  string       `json:"propertyId"`
	Address     string       `json:"address,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
