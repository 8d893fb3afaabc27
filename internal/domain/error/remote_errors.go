// Package error defines domain-specific errors for the household companion service.
package error

import "errors"

// ErrRemoteFailure matches any RemoteFailure via errors.Is.
var ErrRemoteFailure = errors.New("remote failure")

// ReasonTimeout is the reason reported when a remote call exceeds its deadline.
const ReasonTimeout = "timeout"

// RemoteFailure is a network or server-reported failure of the household backend.
// Reason is surfaced to users as-is.
type RemoteFailure struct {
	Reason     string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *RemoteFailure) Error() string {
	return "remote failure: " + e.Reason
}

// Unwrap returns the underlying transport error, if any.
func (e *RemoteFailure) Unwrap() error {
	return e.Err
}

// Is reports ErrRemoteFailure as a match.
func (e *RemoteFailure) Is(target error) bool {
	return target == ErrRemoteFailure
}

// IsTimeout reports whether the failure was caused by a deadline.
func (e *RemoteFailure) IsTimeout() bool {
	return e.Reason == ReasonTimeout
}

// NewRemoteFailure creates a RemoteFailure with the given reason.
func NewRemoteFailure(reason string, statusCode int, err error) *RemoteFailure {
	if reason == "" {
		reason = "remote service unavailable"
	}
	return &RemoteFailure{
		Reason:     reason,
		StatusCode: statusCode,
		Err:        err,
	}
}
