// Package domainerrors provides coded errors for the allocation domain.
//
// Services return these so transports can translate failures into consistent
// responses without inspecting error strings. Stores return sentinel errors
// (pkg/platform/sentinel) instead; services wrap them with a code at the
// boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error.
type Code string

const (
	// CodeUnauthorized covers missing or untrusted caller identity, including
	// non-admin callers invoking admin operations.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden covers authenticated callers lacking rights: inactive
	// medical authorities and owner mismatches on record updates.
	CodeForbidden Code = "forbidden"
	// CodeValidation covers submitted medical data violating bounds.
	CodeValidation Code = "validation_error"
	// CodeInvariantViolation covers illegal lifecycle transitions, e.g.
	// confirming a proposal that is not pending.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeConflict covers duplicate creation and operations rejected while
	// the program is paused.
	CodeConflict Code = "conflict"
	// CodeNoMatch is returned when a match search finds no eligible candidate.
	CodeNoMatch Code = "no_match"
	// CodeOverflow is returned when counter or score arithmetic would wrap.
	CodeOverflow Code = "overflow"

	CodeNotFound   Code = "not_found"
	CodeBadRequest Code = "bad_request"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal_error"
)

// DomainError carries a code, a caller-facing message, and an optional cause.
type DomainError struct {
	Code    Code
	Message string
	cause   error
}

func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.cause
}

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &DomainError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As chains.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &DomainError{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or any wrapped error) carries the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.cause
		de = nil
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code, or CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to an HTTP status for transport error envelopes.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation, CodeBadRequest:
		return http.StatusBadRequest
	case CodeInvariantViolation, CodeConflict:
		return http.StatusConflict
	case CodeNoMatch, CodeNotFound:
		return http.StatusNotFound
	case CodeOverflow:
		return http.StatusUnprocessableEntity
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
