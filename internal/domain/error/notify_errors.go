// Package error defines domain-specific errors for the household companion service.
package error

import "errors"

// Notification errors. They are logged by dispatchers and never reach store callers.
var (
	// ErrNotificationFailed is returned when a notification could not be delivered.
	ErrNotificationFailed = errors.New("failed to deliver notification")

	// ErrNoRecipient is returned when an event has no recipient address.
	ErrNoRecipient = errors.New("notification has no recipient")
)

// NotifyErrorCode defines error codes for notification errors.
// Format: NOTIFY-XXYYYY where XX is category and YYYY is specific error.
type NotifyErrorCode string

const (
	ErrCodePermanentNotifyFailure NotifyErrorCode = "NOTIFY-020002"
	ErrCodeTemporaryNotifyFailure NotifyErrorCode = "NOTIFY-020003"
	ErrCodeNoRecipient            NotifyErrorCode = "NOTIFY-030001"
)

// NotifyError represents a notification error with code and message.
type NotifyError struct {
	Code    NotifyErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *NotifyError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *NotifyError) Unwrap() error {
	return e.Err
}

// NewNotifyError creates a new NotifyError with the given code and message.
func NewNotifyError(code NotifyErrorCode, message string, err error) *NotifyError {
	return &NotifyError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
