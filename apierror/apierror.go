// Package apierror defines the closed set of failures the API can report.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error. Callers switch on Kind instead of matching messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindRoleMismatch
	KindForbidden
	KindUnauthorized
	KindSessionExpired
	KindInvalidCode
	KindPersistence
	KindDelivery
	KindConflict
	KindTooManyRequests
)

var kindNames = map[Kind]string{
	KindInternal:        "internal",
	KindValidation:      "validation",
	KindNotFound:        "not_found",
	KindRoleMismatch:    "role_mismatch",
	KindForbidden:       "forbidden",
	KindUnauthorized:    "unauthorized",
	KindSessionExpired:  "session_expired",
	KindInvalidCode:     "invalid_code",
	KindPersistence:     "persistence",
	KindDelivery:        "delivery",
	KindConflict:        "conflict",
	KindTooManyRequests: "too_many_requests",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the uniform application error.
type Error struct {
	Kind    Kind
	Message string
	// Status overrides the default status of Kind when non-zero.
	Status int
	Fields  []string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// StatusCode returns the HTTP status reported for the error.
func (e *Error) StatusCode() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindValidation, KindSessionExpired, KindInvalidCode:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRoleMismatch, KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Is matches on Kind so errors.Is(err, &Error{Kind: KindNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// NotFound reports a missing record. OTP session misses use status 402.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func SessionNotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "OTP session not found", Status: http.StatusPaymentRequired}
}

func RoleMismatch(message string) *Error {
	return &Error{Kind: KindRoleMismatch, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func SessionExpired() *Error {
	return &Error{Kind: KindSessionExpired, Message: "OTP session is expired"}
}

func InvalidCode() *Error {
	return &Error{Kind: KindInvalidCode, Message: "Invalid OTP, please try again"}
}

func Persistence(message string, cause error) *Error {
	return Wrap(KindPersistence, message, cause)
}

func Delivery(message string, cause error) *Error {
	return Wrap(KindDelivery, message, cause)
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func TooManyRequests(message string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: message}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// KindOf reports the Kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if apiErr, ok := As(err); ok {
		return apiErr.Kind
	}
	return KindInternal
}

// Chain lists the messages of err and every wrapped cause, outermost first.
func Chain(err error) []string {
	var out []string
	for err != nil {
		if apiErr, ok := err.(*Error); ok {
			out = append(out, apiErr.Message)
		} else {
			out = append(out, err.Error())
		}
		err = errors.Unwrap(err)
	}
	return out
}
