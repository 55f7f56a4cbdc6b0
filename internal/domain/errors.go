package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSpamBlocked    = errors.New("honeypot field filled")
	ErrMissingField   = errors.New("required field missing")
	ErrDateOrder      = errors.New("end date before start date")
	ErrTimeOrder      = errors.New("end time before start time on the same day")
	ErrNotConfigured  = errors.New("backend endpoint not configured")
	ErrBusy           = errors.New("submission already in flight")
	ErrTokenRejected  = errors.New("form token unknown or expired")
	ErrAttemptMissing = errors.New("attempt not found")
)

// HTTPStatusError is returned when the backend answers with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("Request failed: %d", e.StatusCode)
}

// ApplicationError carries a failure reported by the backend itself in a 2xx
// response. Message is empty when the backend gave no reason.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return "Unknown error"
	}
	return e.Message
}

// TransportError wraps a network-level failure of the outbound request.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when a 2xx body is not valid JSON.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("invalid JSON response: %v", e.Err)
}
func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ErrorKind is the stable, loggable name of a failure class.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindSpamBlocked   ErrorKind = "spam_blocked"
	KindMissingField  ErrorKind = "missing_field"
	KindDateOrder     ErrorKind = "date_order"
	KindTimeOrder     ErrorKind = "time_order"
	KindNotConfigured ErrorKind = "not_configured"
	KindBusy          ErrorKind = "busy"
	KindTokenRejected ErrorKind = "token_rejected"
	KindTransport     ErrorKind = "transport"
	KindHTTPStatus    ErrorKind = "http_status"
	KindApplication   ErrorKind = "application"
	KindMalformed     ErrorKind = "malformed_response"
	KindUnknown       ErrorKind = "unknown"
)

// KindOf classifies err. A nil error is KindNone.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var (
		httpErr  *HTTPStatusError
		appErr   *ApplicationError
		transErr *TransportError
		malErr   *MalformedResponseError
	)
	switch {
	case errors.Is(err, ErrSpamBlocked):
		return KindSpamBlocked
	case errors.Is(err, ErrMissingField):
		return KindMissingField
	case errors.Is(err, ErrDateOrder):
		return KindDateOrder
	case errors.Is(err, ErrTimeOrder):
		return KindTimeOrder
	case errors.Is(err, ErrNotConfigured):
		return KindNotConfigured
	case errors.Is(err, ErrBusy):
		return KindBusy
	case errors.Is(err, ErrTokenRejected):
		return KindTokenRejected
	case errors.As(err, &httpErr):
		return KindHTTPStatus
	case errors.As(err, &appErr):
		return KindApplication
	case errors.As(err, &malErr):
		return KindMalformed
	case errors.As(err, &transErr):
		return KindTransport
	}
	return KindUnknown
}

// IsValidation reports whether err was produced by local validation, before
// any network activity.
func IsValidation(err error) bool {
	switch KindOf(err) {
	case KindSpamBlocked, KindMissingField, KindDateOrder, KindTimeOrder:
		return true
	}
	return false
}
