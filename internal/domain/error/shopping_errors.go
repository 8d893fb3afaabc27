// Package error defines domain-specific errors for the household companion service.
package error

import "errors"

// Shopping list domain errors.
var (
	// ErrAuthRequired is returned when there is no active session.
	ErrAuthRequired = errors.New("authentication required")

	// ErrPermissionDenied is returned when the session lacks rights over the target list.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrValidationFailed is returned when input is rejected before any remote call.
	ErrValidationFailed = errors.New("validation failed")

	// ErrNotFound is returned when the referenced entity is absent from the loaded collection.
	ErrNotFound = errors.New("not found")

	// ErrBusy is returned when another load or mutation is already in flight.
	ErrBusy = errors.New("another operation is in progress")

	// ErrNotLoaded is returned when a mutation is attempted before lists were loaded.
	ErrNotLoaded = errors.New("lists are not loaded")

	// ErrStoreClosed is returned when the store was disposed.
	ErrStoreClosed = errors.New("store is closed")
)

// ShoppingErrorCode defines error codes for shopping list errors.
// Format: SHOP-XXYYYY where XX is category and YYYY is specific error.
type ShoppingErrorCode string

const (
	// Session errors (01XXXX)
	ErrCodeAuthRequired     ShoppingErrorCode = "SHOP-010001"
	ErrCodePermissionDenied ShoppingErrorCode = "SHOP-010002"

	// Validation errors (02XXXX)
	ErrCodeBlankTitle      ShoppingErrorCode = "SHOP-020001"
	ErrCodeInvalidQuantity ShoppingErrorCode = "SHOP-020002"
	ErrCodeInvalidPrice    ShoppingErrorCode = "SHOP-020003"
	ErrCodeInvalidState    ShoppingErrorCode = "SHOP-020004"
	ErrCodeInvalidHome     ShoppingErrorCode = "SHOP-020005"
	ErrCodeEmptyUpdate     ShoppingErrorCode = "SHOP-020006"
	ErrCodeBlankItem       ShoppingErrorCode = "SHOP-020007"

	// Resource errors (03XXXX)
	ErrCodeListNotFound ShoppingErrorCode = "SHOP-030001"
	ErrCodeItemNotFound ShoppingErrorCode = "SHOP-030002"

	// State errors (04XXXX)
	ErrCodeBusy        ShoppingErrorCode = "SHOP-040001"
	ErrCodeNotLoaded   ShoppingErrorCode = "SHOP-040002"
	ErrCodeStoreClosed ShoppingErrorCode = "SHOP-040003"
	ErrCodeAlreadyDone ShoppingErrorCode = "SHOP-040004"

	// Remote errors (05XXXX)
	ErrCodeRemoteFailure ShoppingErrorCode = "SHOP-050001"
)

// ShoppingError represents a shopping list error with code and message.
type ShoppingError struct {
	Code    ShoppingErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ShoppingError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *ShoppingError) Unwrap() error {
	return e.Err
}

// NewShoppingError creates a new ShoppingError with the given code and message.
func NewShoppingError(code ShoppingErrorCode, message string, err error) *ShoppingError {
	return &ShoppingError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Reason returns the short human-readable reason carried by err.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteFailure
	if errors.As(err, &remote) {
		return remote.Reason
	}
	var shopErr *ShoppingError
	if errors.As(err, &shopErr) {
		return shopErr.Message
	}
	return err.Error()
}
