package domain

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned when a request was replaced by a newer one for the same key
// before its result could be delivered.
var ErrSuperseded = errors.New("request superseded by a newer request")

// ValidationError indicates the caller supplied invalid input.
type ValidationError struct {
	Message string
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates the requested resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

// NewNotFoundError creates a new NotFoundError for the given resource and identifier.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConflictError indicates a concurrent modification was detected.
type ConflictError struct {
	Message string
}

// NewConflictError creates a new ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func (e *ConflictError) Error() string {
	return e.Message
}

// InvalidStateError indicates an aggregate cannot move between two states, or cannot be
// changed at all in its current state.
type InvalidStateError struct {
	From    string
	To      string
	Message string
}

// NewInvalidStateError creates a new InvalidStateError.
func NewInvalidStateError(from, to string) *InvalidStateError {
	return &InvalidStateError{From: from, To: to}
}

// NewReadOnlyError reports that a resource in state cannot be modified.
func NewReadOnlyError(resource, state string) *InvalidStateError {
	return &InvalidStateError{
		From:    state,
		Message: fmt.Sprintf("%s is %s and can no longer be modified", resource, state),
	}
}

func (e *InvalidStateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// UpstreamError indicates the hosted routing or geocoding API failed.
type UpstreamError struct {
	Service string
	Status  int
	Code    string
	Message string
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(service string, status int, code, message string) *UpstreamError {
	return &UpstreamError{Service: service, Status: status, Code: code, Message: message}
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s error (%d %s): %s", e.Service, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error (%d): %s", e.Service, e.Status, e.Message)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
