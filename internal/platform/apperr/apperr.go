// Package apperr defines the error kinds that services return and the HTTP
// status each kind maps to. Callers branch on Kind, never on message text.
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
	KindDuplicateEmail
	KindNotFound
	KindAuthenticationFailure
	KindUnauthenticated
	KindInvalidToken
	KindUpstreamUnavailable
)

var kindCodes = map[Kind]string{
	KindInternal:              "internal_error",
	KindValidation:            "validation_error",
	KindDuplicateEmail:        "duplicate_email",
	KindNotFound:              "not_found",
	KindAuthenticationFailure: "authentication_failure",
	KindUnauthenticated:       "unauthenticated",
	KindInvalidToken:          "invalid_token",
	KindUpstreamUnavailable:   "upstream_unavailable",
}

// Code is the stable string used in error response bodies.
func (k Kind) Code() string {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return kindCodes[KindInternal]
}

func (k Kind) String() string { return k.Code() }

// HTTPStatus returns the response status for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindDuplicateEmail:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindAuthenticationFailure, KindUnauthenticated, KindInvalidToken:
		return http.StatusUnauthorized
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to clients; Err is
// the underlying cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.Code(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code(), e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so errors.Is(err, apperr.ErrNotFound) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil && t.Fields == nil
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation            = &Error{Kind: KindValidation}
	ErrDuplicateEmail        = &Error{Kind: KindDuplicateEmail}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrAuthenticationFailure = &Error{Kind: KindAuthenticationFailure}
	ErrUnauthenticated       = &Error{Kind: KindUnauthenticated}
	ErrInvalidToken          = &Error{Kind: KindInvalidToken}
	ErrUpstreamUnavailable   = &Error{Kind: KindUpstreamUnavailable}
)

// KindOf classifies err. Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "request validation failed", Fields: fields}
}

func DuplicateEmail(err error) *Error {
	return &Error{Kind: KindDuplicateEmail, Message: "email already exists", Err: err}
}

func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// AuthenticationFailure deliberately carries no detail about which check failed.
func AuthenticationFailure() *Error {
	return &Error{Kind: KindAuthenticationFailure, Message: "invalid email or password"}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func InvalidToken(err error) *Error {
	return &Error{Kind: KindInvalidToken, Message: "invalid token", Err: err}
}

func UpstreamUnavailable(err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: "inference service unavailable", Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}
