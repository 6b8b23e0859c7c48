// Package errors provides the structured error system shared by bazaard and
// bazaarctl. Errors carry a domain, a code and an HTTP status so that
// repositories, the auth core and handlers agree on how a failure is reported.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies an error within its domain
type Code string

// Domain groups related errors (e.g. "auth", "product")
type Domain string

const (
	DomainAuth       Domain = "auth"
	DomainUser       Domain = "user"
	DomainCategory   Domain = "category"
	DomainProduct    Domain = "product"
	DomainReview     Domain = "review"
	DomainStorage    Domain = "storage"
	DomainDatabase   Domain = "database"
	DomainValidation Domain = "validation"
	DomainInternal   Domain = "internal"
)

// Error is a structured error with domain, code and HTTP status
type Error struct {
	Domain     Domain `json:"domain"`
	Code       Code   `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`

	cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Code, e.Message)
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same domain and code.
// Message and cause are ignored so that customised copies still match
// their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Domain == t.Domain && e.Code == t.Code
}

// WithCause returns a copy of e wrapping cause
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.cause = cause
	return &c
}

// WithMessage returns a copy of e with a different message
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// WithMessagef returns a copy of e with a formatted message
func (e *Error) WithMessagef(format string, args ...interface{}) *Error {
	return e.WithMessage(fmt.Sprintf(format, args...))
}

// New creates a new Error
func New(domain Domain, code Code, httpStatus int, message string) *Error {
	return &Error{
		Domain:     domain,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap creates a new Error wrapping err
func Wrap(err error, domain Domain, code Code, httpStatus int, message string) *Error {
	return New(domain, code, httpStatus, message).WithCause(err)
}

// GetHTTPStatus returns the HTTP status of err, or 500 when err is not an *Error.
func GetHTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus
	}
	return 500
}

// GetCode returns the code of err, or "" when err is not an *Error
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetDomain returns the domain of err, or "" when err is not an *Error
func GetDomain(err error) Domain {
	var e *Error
	if errors.As(err, &e) {
		return e.Domain
	}
	return ""
}

// Is delegates to the standard library errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As delegates to the standard library errors.As
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
