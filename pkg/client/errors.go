package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failed call
type Kind string

const (
	// KindTransport means no response was received (timeout, connection or I/O failure)
	KindTransport Kind = "transport"
	// KindServerRejected means the backend answered with a non-2xx status
	KindServerRejected Kind = "server_rejected"
	// KindDecode means the response body did not match the expected shape
	KindDecode Kind = "decode"
)

// Error is returned by every client operation that fails
type Error struct {
	Kind       Kind
	Op         string // client operation, e.g. "upload_clothing"
	StatusCode int    // set for KindServerRejected and KindDecode
	Body       string // server-provided body text, if any
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindServerRejected:
		if e.Body != "" {
			return fmt.Sprintf("%s: server rejected request (status: %d): %s", e.Op, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s: server rejected request (status: %d)", e.Op, e.StatusCode)
	case KindDecode:
		return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the backend answered 404
func (e *Error) IsNotFound() bool {
	return e.Kind == KindServerRejected && e.StatusCode == 404
}

// IsServerError returns true if the backend answered with a 5xx status
func (e *Error) IsServerError() bool {
	return e.Kind == KindServerRejected && e.StatusCode >= 500
}

// KindOf returns the failure kind of err, or "" when err is not a client error
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return ""
}

// IsTransport reports whether err is a transport failure
func IsTransport(err error) bool {
	return KindOf(err) == KindTransport
}

// IsServerRejected reports whether err is a non-2xx response
func IsServerRejected(err error) bool {
	return KindOf(err) == KindServerRejected
}

// IsDecode reports whether err is a malformed response
func IsDecode(err error) bool {
	return KindOf(err) == KindDecode
}
