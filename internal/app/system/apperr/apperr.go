// internal/app/system/apperr/apperr.go

// Package apperr defines the service-wide error taxonomy and its mapping to
// HTTP responses. Handlers return *Error values from business logic and hand
// them to Render; anything that is not an *Error is reported as Internal
// without leaking the underlying message to the caller.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error the way callers need to distinguish them:
// the caller's next action differs by kind (retry, sign in, pick another
// chamber, contact support).
type Kind string

const (
	Unauthenticated    Kind = "unauthenticated"
	InvalidArgument    Kind = "invalid-argument"
	FailedPrecondition Kind = "failed-precondition"
	NotFound           Kind = "not-found"
	PermissionDenied   Kind = "permission-denied"
	AlreadyExists      Kind = "already-exists"
	Aborted            Kind = "aborted"
	Internal           Kind = "internal"
)

// Error is a kinded error with a human-readable message safe to show callers.
type Error struct {
	Kind    Kind
	Message string
	// Err is the wrapped cause, for logs only; never rendered.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a kinded error with a caller-visible message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf creates a kinded error with a formatted caller-visible message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a kinded error. The cause shows up in logs via
// Error()/Unwrap but is not rendered to the caller.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the Kind of err, or Internal for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Status maps a Kind to its HTTP status code.
func Status(kind Kind) int {
	switch kind {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument:
		return http.StatusBadRequest
	case FailedPrecondition:
		return http.StatusPreconditionFailed
	case NotFound:
		return http.StatusNotFound
	case PermissionDenied:
		return http.StatusForbidden
	case AlreadyExists:
		return http.StatusConflict
	case Aborted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON wire shape for rendered errors.
type errorBody struct {
	Error struct {
		Kind    Kind   `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// Render writes err as a JSON error response. Unclassified errors are
// rendered as Internal with a generic message so store internals never
// reach the caller.
func Render(w http.ResponseWriter, err error) {
	var ae *Error
	if !errors.As(err, &ae) {
		ae = New(Internal, "An internal error occurred.")
	}

	var body errorBody
	body.Error.Kind = ae.Kind
	body.Error.Message = ae.Message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(Status(ae.Kind))
	_ = json.NewEncoder(w).Encode(body)
}
