// Package apperr classifies failures so handlers and the store gateway can
// decide on status codes and fallback without string matching.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
	// KindUnavailable means the durable store could not be reached. It is the
	// only kind that sends an operation to the fallback store.
	KindUnavailable
	KindUpstream
	KindUnconfigured
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	case KindUpstream:
		return "upstream"
	case KindUnconfigured:
		return "unconfigured"
	default:
		return "internal"
	}
}

// Error carries a kind, a short user-facing message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Convenience constructors used across services.

func Validation(msg string) error   { return New(KindValidation, msg) }
func NotFound(msg string) error     { return New(KindNotFound, msg) }
func Conflict(msg string) error     { return New(KindConflict, msg) }
func Unauthorized(msg string) error { return New(KindAuth, msg) }
func Unconfigured(msg string) error { return New(KindUnconfigured, msg) }
func Unavailable(err error) error   { return Wrap(KindUnavailable, err, "durable store unavailable") }
func Upstream(err error, msg string) error {
	if err == nil {
		return New(KindUpstream, msg)
	}
	return Wrap(KindUpstream, err, msg)
}

// KindOf returns the kind of the outermost *Error in the chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func IsUnavailable(err error) bool { return Is(err, KindUnavailable) }

// Message returns the user-facing message for err. Internal errors never leak
// their cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal && e.Kind != KindUnavailable {
		if e.Msg != "" {
			return e.Msg
		}
	}
	return "Internal server error"
}

// HTTPStatus maps a kind to the response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnconfigured:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
