package errors

import (
	"errors"
	"fmt"

	"github.com/pratik-mahalle/wardroberec/internal/pkg/validator"
	"github.com/pratik-mahalle/wardroberec/pkg/client"
)

// AppError is a failure ready to show to the user
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"status_code,omitempty"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Common error codes
const (
	ErrCodeTransport      = "TRANSPORT_ERROR"
	ErrCodeServerRejected = "SERVER_REJECTED"
	ErrCodeDecode         = "DECODE_ERROR"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeInvalidState   = "INVALID_STATE"
	ErrCodeBusy           = "BUSY"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Internal: err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// ValidationError creates a validation error
func ValidationError(message string, details interface{}) *AppError {
	return New(ErrCodeValidation, message).WithDetails(details)
}

// InvalidState reports an action attempted from the wrong workflow state
func InvalidState(action, state string) *AppError {
	return New(ErrCodeInvalidState, fmt.Sprintf("cannot %s while %s", action, state))
}

// Busy reports an action rejected because the same action is in flight
func Busy(action string) *AppError {
	return New(ErrCodeBusy, fmt.Sprintf("%s already in progress", action))
}

// FromClient maps a failed backend call onto a user-facing error
func FromClient(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var fieldErrs validator.Errors
	if errors.As(err, &fieldErrs) {
		return Wrap(err, ErrCodeValidation, "Please fill in the required fields").WithDetails([]validator.ValidationError(fieldErrs))
	}

	var clientErr *client.Error
	if !errors.As(err, &clientErr) {
		return Wrap(err, ErrCodeInternal, "Something went wrong")
	}

	switch clientErr.Kind {
	case client.KindTransport:
		return Wrap(err, ErrCodeTransport, "Could not reach the wardrobe server")
	case client.KindServerRejected:
		e := Wrap(err, ErrCodeServerRejected, fmt.Sprintf("Server error: %d", clientErr.StatusCode))
		e.StatusCode = clientErr.StatusCode
		if clientErr.Body != "" {
			e.Details = clientErr.Body
		}
		return e
	case client.KindDecode:
		return Wrap(err, ErrCodeDecode, "The server sent an unexpected response")
	default:
		return Wrap(err, ErrCodeInternal, "Something went wrong")
	}
}

// Code returns the error code of err, or "" when err carries none
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
