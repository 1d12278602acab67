package waapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags the category of an API failure.
type Kind int

const (
	// KindAPI is any non-2xx response without a more specific category.
	KindAPI Kind = iota
	KindAuthentication
	KindValidation
	KindRateLimit
	KindNotFound
	KindServer
	// KindConnection covers transport failures and timeouts. It carries no status code.
	KindConnection
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication error"
	case KindValidation:
		return "validation error"
	case KindRateLimit:
		return "rate limit error"
	case KindNotFound:
		return "not found error"
	case KindServer:
		return "server error"
	case KindConnection:
		return "connection error"
	default:
		return "api error"
	}
}

const (
	defaultErrorMessage = "Unknown error"
	invalidJSONMessage  = "Invalid JSON response"
)

// ErrMissingArgument is returned before any request is sent when a required
// identifier or argument is empty.
var ErrMissingArgument = errors.New("waapi: missing required argument")

// Error is a failed platform call. Message comes from the body's "error"
// field, Body is the decoded body (or a synthetic one when the server sent
// something that is not a JSON object) and Raw holds the bytes as received.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Body       map[string]any
	Raw        []byte
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("waapi: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("waapi: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Retryable reports whether the dispatcher retries this failure.
func (e *Error) Retryable() bool {
	return e != nil && (e.Kind == KindConnection || e.Kind == KindRateLimit)
}

// KindOf returns the Kind of err, or false when err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return 0, false
	}
	return apiErr.Kind, true
}

func isKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsAuthentication reports whether err is a 401 response.
func IsAuthentication(err error) bool { return isKind(err, KindAuthentication) }

// IsValidation reports whether err is a 400 response.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsRateLimited reports whether err is a 429 response.
func IsRateLimited(err error) bool { return isKind(err, KindRateLimit) }

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsServer reports whether err is a 5xx response.
func IsServer(err error) bool { return isKind(err, KindServer) }

// IsConnection reports whether err is a transport failure.
func IsConnection(err error) bool { return isKind(err, KindConnection) }

// kindForStatus maps a non-2xx status code onto a Kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuthentication
	case status == http.StatusBadRequest:
		return KindValidation
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindAPI
	}
}

func newStatusError(status int, body map[string]any, raw []byte) *Error {
	return &Error{
		Kind:       kindForStatus(status),
		Message:    errorMessage(body),
		StatusCode: status,
		Body:       body,
		Raw:        raw,
	}
}

func newConnectionError(err error) *Error {
	return &Error{
		Kind:    KindConnection,
		Message: fmt.Sprintf("Connection error: %v", err),
		Err:     err,
	}
}

// errorMessage extracts the "error" field. The platform sends either a plain
// string or an object with a "message" member.
func errorMessage(body map[string]any) string {
	switch v := body["error"].(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return defaultErrorMessage
}
