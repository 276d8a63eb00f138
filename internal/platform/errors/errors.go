package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindConfig     Kind = "config"
	KindProvider   Kind = "provider"
	KindTimeout    Kind = "timeout"
	KindParse      Kind = "parse"
	KindTransport  Kind = "transport"
	KindBootstrap  Kind = "bootstrap"
	KindUnknown    Kind = "unknown"
)

// Error carries the failure kind and operation alongside the cause. Status and
// Detail hold the upstream HTTP status and response body when a provider call
// failed, so the transport layer can echo them to the caller.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Status  int
	Detail  string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func Wrap(kind Kind, op, message string, err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// NewUpstream builds a provider error carrying the upstream status and body.
func NewUpstream(op, message string, status int, detail string) *Error {
	return &Error{
		Kind:    KindProvider,
		Op:      op,
		Message: message,
		Status:  status,
		Detail:  detail,
	}
}

// IsKind checks whether any error in the chain matches the provided kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	for err != nil {
		if errors.As(err, &target) {
			return target.Kind == kind
		}
		err = errors.Unwrap(err)
	}
	return false
}

// DetailOf returns the upstream response body attached to the error chain.
func DetailOf(err error) string {
	var target *Error
	if errors.As(err, &target) {
		return target.Detail
	}
	return ""
}

// StatusOf maps an error chain to the HTTP status the gateway should return:
// the upstream status when a provider supplied one, otherwise a status
// derived from the kind.
func StatusOf(err error) int {
	var target *Error
	if !errors.As(err, &target) {
		return http.StatusInternalServerError
	}

	switch target.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConfig:
		return http.StatusInternalServerError
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindProvider:
		if target.Status > 0 {
			return target.Status
		}
		return http.StatusInternalServerError
	case KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
