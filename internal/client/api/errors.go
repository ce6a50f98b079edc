package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport: the request never got a response.
	KindTransport Kind = iota + 1
	// KindUnauthorized: the API rejected the credential (401).
	KindUnauthorized
	// KindForbidden: the credential lacks permission (403).
	KindForbidden
	// KindNotFound: the resource or endpoint does not exist (404, 405).
	KindNotFound
	// KindClient: any other 4xx, usually a rejected payload.
	KindClient
	// KindServer: a 5xx.
	KindServer
	// KindDecode: the response body had an unexpected shape.
	KindDecode
	// KindCanceled: the caller's context ended first.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindClient:
		return "rejected"
	case KindServer:
		return "server error"
	case KindDecode:
		return "malformed response"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Error is returned by every Client method.
type Error struct {
	// Op names the call, e.g. "list issues".
	Op string
	// Kind classifies the failure.
	Kind Kind
	// Status is the HTTP status, zero when no response arrived.
	Status int
	// Message is the API's own explanation, from a {"message": ...} body.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (%d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsUnauthorized reports whether the API rejected the credential.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// Message returns the text a view should show for err: the API's message
// when it sent one, otherwise fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound, status == http.StatusMethodNotAllowed:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindClient
	}
}

func transportError(ctx context.Context, op string, err error) *Error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &Error{Op: op, Kind: KindCanceled, Err: ctxErr}
	}
	return &Error{Op: op, Kind: KindTransport, Err: err}
}
