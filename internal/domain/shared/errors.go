// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrStaleSession    = errors.New("stale session generation")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
	ErrRateLimited        = errors.New("rate limited")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "course", "session", "recordstore"
	Op      string // Operation that failed, e.g., "Enroll", "Load"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Course domain errors
var (
	ErrCourseNotFound    = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrInvalidCourseID   = NewDomainError("course", "Validate", ErrInvalidID, "invalid course ID")
	ErrModulesOutOfRange = NewDomainError("course", "Validate", ErrValueOutOfRange, "completed modules exceed total modules")
	ErrCourseCompleted   = NewDomainError("course", "CompleteModule", ErrInvalidState, "all modules already completed")
)

// Session domain errors
var (
	ErrNoUser      = NewDomainError("session", "Current", ErrNotFound, "no user loaded")
	ErrInvalidRole = NewDomainError("session", "Validate", ErrInvalidInput, "invalid role")
)

// External service errors
var (
	ErrRecordStoreUnavailable = NewDomainError("recordstore", "Request", ErrServiceUnavailable, "record store is unavailable")
	ErrRecordStoreRateLimited = NewDomainError("recordstore", "Request", ErrRateLimited, "record store rate limit exceeded")
	ErrRecordStoreBadResponse = NewDomainError("recordstore", "Parse", ErrInvalidFormat, "malformed response from record store")
	ErrAdvisorUnavailable     = NewDomainError("advisor", "Request", ErrServiceUnavailable, "advisory service is unavailable")
	ErrAdvisorMalformedReply  = NewDomainError("advisor", "Parse", ErrInvalidFormat, "advisory service returned malformed reply")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsUnavailable checks if the error indicates an unreachable external service.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrTimeout)
}
