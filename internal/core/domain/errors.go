package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// Typed errors below wrap these sentinels so callers can use errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates the submitted text cannot be analysed.
	// Validation failures are never retried.
	ErrValidation = errors.New("validation failed")

	// ErrBackend indicates a detection backend failed for one request.
	// The orchestrator falls through to the next backend.
	ErrBackend = errors.New("backend failed")

	// ErrTimeout indicates a backend call exceeded its wall-clock ceiling.
	ErrTimeout = errors.New("backend timed out")

	// ErrStorage indicates the corpus medium could not be read or written.
	ErrStorage = errors.New("corpus storage failed")

	// ErrBackendUnavailable indicates a backend is not configured,
	// typically because its credentials are missing.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrInvalidSettings indicates the configuration object is inconsistent.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrUnsupportedType indicates a file type with no text extractor.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRateLimited indicates the remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// ValidationError reports input text that cannot be analysed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError with a formatted reason.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// BackendError reports a failure of a specific backend.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err == nil {
		return "backend " + e.Backend + " failed"
	}
	return "backend " + e.Backend + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrBackend.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackend
}

// TimeoutSignal reports that a backend did not return within its ceiling.
// It is a BackendError variant: errors.Is matches both ErrTimeout and ErrBackend.
type TimeoutSignal struct {
	Backend string
	Ceiling time.Duration
}

func (e *TimeoutSignal) Error() string {
	return fmt.Sprintf("backend %s: no result within %s", e.Backend, e.Ceiling)
}

// Is reports whether target is ErrTimeout or ErrBackend.
func (e *TimeoutSignal) Is(target error) bool {
	return target == ErrTimeout || target == ErrBackend
}

// StorageError reports a failed corpus operation.
// A failed write means the document was not added.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return "corpus " + e.Op + " failed"
	}
	return "corpus " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStorage.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
