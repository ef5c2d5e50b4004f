package lobbysdk

import (
	"errors"
	"fmt"
	"net/http"
)

// ============================================================================
// Transport error kinds
// ============================================================================

// Transport-level failures. Returned errors wrap one of these, so callers
// test with errors.Is(err, lobbysdk.ErrUnauthorized) and friends.
var (
	// ErrUnauthorized is HTTP 401. Receiving it always invalidates the session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is HTTP 403.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrServer is any HTTP 5xx.
	ErrServer = errors.New("server error")

	// ErrUnknownTransport is any other non-2xx status.
	ErrUnknownTransport = errors.New("unexpected transport status")
)

// StatusError is a non-2xx HTTP response from the service.
type StatusError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the envelope msg when the body carried one, otherwise the
	// HTTP status text.
	Message string

	kind error
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes the error kind for errors.Is.
func (e *StatusError) Unwrap() error { return e.kind }

// classifyStatus maps a transport status to its error kind.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500 && status <= 599:
		return ErrServer
	default:
		return ErrUnknownTransport
	}
}

// ============================================================================
// Envelope errors
// ============================================================================

// DefaultDomainMessage is used when a failing envelope carries no msg.
const DefaultDomainMessage = "request failed"

// DomainError is a service-level failure: the call made it over HTTP but the
// response envelope's code was not 200. It is never retried.
type DomainError struct {
	Code int
	Msg  string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return fmt.Sprintf("code %d: %s", e.Code, e.Msg)
}

// ============================================================================
// Session errors
// ============================================================================

// DefaultLoginMessage is used when a login failure carries no usable message.
const DefaultLoginMessage = "login failed"

// LoginFailedError is returned by Session.Login. Msg is the user-facing
// message, taken from the service when it provided one.
type LoginFailedError struct {
	Msg string
	Err error
}

// Error implements the error interface.
func (e *LoginFailedError) Error() string { return e.Msg }

// Unwrap returns the underlying pipeline error, if any.
func (e *LoginFailedError) Unwrap() error { return e.Err }

// errSuperseded is the internal cause when a logout or invalidation lands
// while an authentication round-trip is still in flight.
var errSuperseded = errors.New("session reset while authenticating")

// messageOf extracts the most user-presentable text from err.
func messageOf(err error, fallback string) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) && domainErr.Msg != "" {
		return domainErr.Msg
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}

	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
