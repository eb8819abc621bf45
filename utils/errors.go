// utils/errors.go
package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures so handlers can map them to HTTP status codes.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindInvalidArgument
	KindServiceUnavailable
	KindExternalFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindExternalFailure:
		return "external_failure"
	default:
		return "internal"
	}
}

// HTTPStatus returns the response code for the kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindExternalFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError is a failure with a human-readable message safe to return to clients.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(kind ErrorKind, msg string, err error) *AppError {
	return &AppError{Kind: kind, Message: msg, Err: err}
}

func Conflict(msg string) error        { return newAppError(KindConflict, msg, nil) }
func Unauthorized(msg string) error    { return newAppError(KindUnauthorized, msg, nil) }
func Forbidden(msg string) error       { return newAppError(KindForbidden, msg, nil) }
func NotFound(msg string) error        { return newAppError(KindNotFound, msg, nil) }
func InvalidArgument(msg string) error { return newAppError(KindInvalidArgument, msg, nil) }

func ServiceUnavailable(msg string) error {
	return newAppError(KindServiceUnavailable, msg, nil)
}

// ExternalFailure wraps an error returned by a downstream collaborator.
func ExternalFailure(msg string, err error) error {
	return newAppError(KindExternalFailure, msg, err)
}

// Internal wraps an unexpected error. The message is what clients see.
func Internal(msg string, err error) error {
	return newAppError(KindInternal, msg, err)
}

// KindOf reports the kind of err, or KindInternal if err is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
