package common

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types used across the application
var (
	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrTimeout indicates an operation timed out
	ErrTimeout = errors.New("operation timed out")
	// ErrInvalidConfiguration indicates configuration issues
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNotConfigured indicates an optional collaborator has no configuration
	ErrNotConfigured = errors.New("not configured")
	// ErrPanic marks a failure recovered from a panic inside a cycle
	ErrPanic = errors.New("recovered panic")
)

// WrapError wraps an error with additional context information
func WrapError(err error, message string) error {
	if err == nil {
		return fmt.Errorf("%s: <nil>", message)
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context information
func WrapErrorf(err error, format string, args ...interface{}) error {
	return WrapError(err, fmt.Sprintf(format, args...))
}

// NewError creates a new error with a formatted message
func NewError(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// ValidationError represents validation errors with field-specific information
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// NetworkError represents network-related errors
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *NetworkError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("network error for '%s': %s: %v", e.URL, e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("network error for '%s': %s", e.URL, e.Reason)
}

func (e *NetworkError) Unwrap() error {
	return e.Wrapped
}

// NewNetworkError creates a new network error
func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{
		URL:     url,
		Reason:  reason,
		Wrapped: wrapped,
	}
}

// FetchStage identifies where a fetch failed.
type FetchStage string

const (
	FetchStageRender  FetchStage = "render"
	FetchStageExtract FetchStage = "extract"
	FetchStageBuild   FetchStage = "build"
)

// FetchError covers render timeouts, missing selectors and network failures
// while acquiring a signal.
type FetchError struct {
	URL     string
	Stage   FetchStage
	Wrapped error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch failed for '%s' at %s: %v", e.URL, e.Stage, e.Wrapped)
}

func (e *FetchError) Unwrap() error {
	return e.Wrapped
}

// NewFetchError creates a new fetch error
func NewFetchError(url string, stage FetchStage, wrapped error) *FetchError {
	return &FetchError{
		URL:     url,
		Stage:   stage,
		Wrapped: wrapped,
	}
}

// NotifyError is returned when an alert transport is unreachable or rejects a message.
type NotifyError struct {
	Transport string
	Wrapped   error
}

func (e *NotifyError) Error() string {
	return fmt.Sprintf("notification via %s failed: %v", e.Transport, e.Wrapped)
}

func (e *NotifyError) Unwrap() error {
	return e.Wrapped
}

// NewNotifyError creates a new notify error
func NewNotifyError(transport string, wrapped error) *NotifyError {
	return &NotifyError{
		Transport: transport,
		Wrapped:   wrapped,
	}
}

// StoreOp names the persisted-state operation that failed.
type StoreOp string

const (
	StoreOpLoad StoreOp = "load"
	StoreOpSave StoreOp = "save"
)

// StoreError represents a read or write failure on persisted state.
// Corrupt is set when the record exists but cannot be decoded.
type StoreError struct {
	Op      StoreOp
	Backend string
	Corrupt bool
	Wrapped error
}

func (e *StoreError) Error() string {
	if e.Corrupt {
		return fmt.Sprintf("%s state %s: corrupt record: %v", e.Backend, e.Op, e.Wrapped)
	}
	return fmt.Sprintf("%s state %s failed: %v", e.Backend, e.Op, e.Wrapped)
}

func (e *StoreError) Unwrap() error {
	return e.Wrapped
}

// NewStoreError creates a new store error
func NewStoreError(op StoreOp, backend string, wrapped error) *StoreError {
	return &StoreError{
		Op:      op,
		Backend: backend,
		Wrapped: wrapped,
	}
}

// NewCorruptStoreError creates a store error for an undecodable record
func NewCorruptStoreError(backend string, wrapped error) *StoreError {
	return &StoreError{
		Op:      StoreOpLoad,
		Backend: backend,
		Corrupt: true,
		Wrapped: wrapped,
	}
}

// IsFetchError reports whether err is or wraps a FetchError
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsNotifyError reports whether err is or wraps a NotifyError
func IsNotifyError(err error) bool {
	var ne *NotifyError
	return errors.As(err, &ne)
}

// IsStoreError reports whether err is or wraps a StoreError
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// GetRootCause returns the root cause of an error by unwrapping all wrapped errors
func GetRootCause(err error) error {
	for {
		wrapped := errors.Unwrap(err)
		if wrapped == nil {
			return err
		}
		err = wrapped
	}
}

// CombineErrors combines multiple errors into a single error with formatted message
func CombineErrors(errs []error) error {
	var messages []string
	for _, err := range errs {
		if err != nil {
			messages = append(messages, err.Error())
		}
	}

	switch len(messages) {
	case 0:
		return nil
	case 1:
		for _, err := range errs {
			if err != nil {
				return err
			}
		}
	}

	return fmt.Errorf("multiple errors occurred: [%s]", strings.Join(messages, "; "))
}
