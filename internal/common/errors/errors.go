// Package errors provides the closed set of tagged error variants used by
// the tenant-application workflow.
package errors

import (
	"errors"
	"fmt"
	"time"

	"rentflow/internal/models"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidBatchSize      ErrorCode = "INVALID_BATCH_SIZE"
	ErrCodeUnsupportedTransition ErrorCode = "UNSUPPORTED_TRANSITION"
	ErrCodeNotFound              ErrorCode = "NOT_FOUND"
	ErrCodeBatchConflict         ErrorCode = "BATCH_CONFLICT"
	ErrCodeVersionConflict       ErrorCode = "VERSION_CONFLICT"
	ErrCodeNotificationFailed    ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// Error is a structured workflow error. The domain fields identify which
// application and transition the error refers to instead of interpolating
// them into the message.
type Error struct {
	Code          ErrorCode     `json:"code"`
	Message       string        `json:"message"`
	Details       string        `json:"details,omitempty"`
	ApplicationID string        `json:"applicationId,omitempty"`
	PropertyID    string        `json:"propertyId,omitempty"`
	FromStatus    models.Status `json:"fromStatus,omitempty"`
	ToStatus      models.Status `json:"toStatus,omitempty"`
	Timestamp     time.Time     `json:"timestamp"`
	cause         error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches two workflow errors by code so callers can use errors.Is with
// the sentinel values below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is checks. Constructors return richer values that
// compare equal to these by code.
var (
	ErrValidation            = &Error{Code: ErrCodeValidationFailed}
	ErrInvalidBatchSize      = &Error{Code: ErrCodeInvalidBatchSize}
	ErrUnsupportedTransition = &Error{Code: ErrCodeUnsupportedTransition}
	ErrNotFound              = &Error{Code: ErrCodeNotFound}
	ErrBatchConflict         = &Error{Code: ErrCodeBatchConflict}
	ErrVersionConflict       = &Error{Code: ErrCodeVersionConflict}
	ErrNotificationFailed    = &Error{Code: ErrCodeNotificationFailed}
)

// NewValidationError creates a non-retryable input validation error. It is
// raised before any mutation and bubbles directly to the caller.
func NewValidationError(message, details string) *Error {
	return &Error{
		Code:      ErrCodeValidationFailed,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidBatchSizeError is raised when finalize receives an input set
// whose size is not exactly one.
func NewInvalidBatchSizeError(propertyID string, got int) *Error {
	return &Error{
		Code:       ErrCodeInvalidBatchSize,
		Message:    "finalize requires exactly one final-approved candidate",
		Details:    fmt.Sprintf("got %d", got),
		PropertyID: propertyID,
		Timestamp:  time.Now().UTC(),
	}
}

// NewUnsupportedTransitionError is raised when the current status has no
// defined next state for the requested action.
func NewUnsupportedTransitionError(applicationID string, from models.Status, action string) *Error {
	return &Error{
		Code:          ErrCodeUnsupportedTransition,
		Message:       "no transition defined for current status",
		Details:       fmt.Sprintf("action %q", action),
		ApplicationID: applicationID,
		FromStatus:    from,
		Timestamp:     time.Now().UTC(),
	}
}

// NewNotFoundError is raised when a referenced application, task, property
// or conversation is missing.
func NewNotFoundError(resource, id string) *Error {
	return &Error{
		Code:      ErrCodeNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   id,
		Timestamp: time.Now().UTC(),
	}
}

// NewBatchConflictError is raised when a multi-id status update matched
// fewer rows than requested. The update is rolled back; nothing changes.
func NewBatchConflictError(from, to models.Status, want, got int) *Error {
	return &Error{
		Code:       ErrCodeBatchConflict,
		Message:    "batch transition matched fewer applications than requested",
		Details:    fmt.Sprintf("want %d, matched %d", want, got),
		FromStatus: from,
		ToStatus:   to,
		Timestamp:  time.Now().UTC(),
	}
}

// NewVersionConflictError is raised when a mutation carries a stale
// application version.
func NewVersionConflictError(applicationID string) *Error {
	return &Error{
		Code:          ErrCodeVersionConflict,
		Message:       "application was modified concurrently",
		ApplicationID: applicationID,
		Timestamp:     time.Now().UTC(),
	}
}

// NewNotificationSendError wraps a per-recipient delivery failure. It is
// collected during fan-out, never propagated as an operation failure.
func NewNotificationSendError(recipientID string, err error) *Error {
	return &Error{
		Code:      ErrCodeNotificationFailed,
		Message:   "notification delivery failed",
		Details:   recipientID,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// CodeOf returns the workflow error code of err, or empty if err is not a
// workflow error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
