package domain

import (
	"errors"
	"fmt"
)

// ValidationError is a client-side precondition failure. No network call was made.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// NetworkError is a transport failure. Callers may retry.
type NetworkError struct {
	Op  string
	Err error
}

func (e NetworkError) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("network error: %v", e.Err)
	default:
		return "network error"
	}
}

func (e NetworkError) Unwrap() error { return e.Err }

// BackendError carries a non-success response. Msg is the backend's own message.
type BackendError struct {
	Status int
	Msg    string
}

func (e BackendError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// VerificationFailedError means the payment proof was rejected, or its order was
// already consumed or expired. Not retried automatically.
type VerificationFailedError struct {
	Status string
	Msg    string
}

func (e VerificationFailedError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "Payment verification failed. Please contact support."
}

// UnavailableError means the checkout capability is not ready.
type UnavailableError struct {
	Resource string
}

func (e UnavailableError) Error() string {
	if e.Resource == "" {
		return "service unavailable"
	}
	return fmt.Sprintf("%s is not available", e.Resource)
}

type AlreadyInProgressError struct {
	Op string
}

func (e AlreadyInProgressError) Error() string {
	if e.Op == "" {
		return "operation already in progress"
	}
	return fmt.Sprintf("%s already in progress", e.Op)
}

// InvalidTransitionError is returned when an event is not allowed in the current phase.
type InvalidTransitionError struct {
	From  string
	Event string
	Msg   string
}

func (e InvalidTransitionError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("%s is not allowed while %s", e.Event, e.From)
}

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNetwork(err error) bool {
	var target NetworkError
	return errors.As(err, &target)
}

func IsBackend(err error) bool {
	var target BackendError
	return errors.As(err, &target)
}

func IsVerificationFailed(err error) bool {
	var target VerificationFailedError
	return errors.As(err, &target)
}

func IsUnavailable(err error) bool {
	var target UnavailableError
	return errors.As(err, &target)
}

func IsAlreadyInProgress(err error) bool {
	var target AlreadyInProgressError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target InvalidTransitionError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}

// Kind returns the stable code used in the message slot and HTTP bodies.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsValidation(err):
		return "validation_error"
	case IsNotFound(err):
		return "not_found"
	case IsNetwork(err):
		return "network_error"
	case IsBackend(err):
		return "backend_error"
	case IsVerificationFailed(err):
		return "verification_failed"
	case IsUnavailable(err):
		return "unavailable"
	case IsAlreadyInProgress(err):
		return "already_in_progress"
	case IsInvalidTransition(err):
		return "invalid_transition"
	case IsConflict(err):
		return "conflict"
	default:
		return "internal_error"
	}
}
