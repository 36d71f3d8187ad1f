// Package errors provides custom error types for rescuesync.
// These errors let the orchestration layer decide how to react to a failure
// (abort, continue, report) instead of exiting from deep inside a reconciler.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As are the standard library helpers, re-exported so callers need
// only one errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors.
var (
	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrRemote indicates a non-success response from the Bulk API
	ErrRemote = errors.New("remote request failed")

	// ErrJobFailed indicates a bulk job reached a terminal failure state
	ErrJobFailed = errors.New("bulk job failed")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrInvariant indicates a lookup that must succeed did not
	ErrInvariant = errors.New("invariant violated")

	// ErrConfig indicates a missing or invalid configuration value
	ErrConfig = errors.New("configuration error")

	// ErrUnauthenticated indicates missing or rejected credentials
	ErrUnauthenticated = errors.New("not authenticated")
)

// APIError represents a non-success response from the Bulk API.
type APIError struct {
	Stage      string // "create query job", "upload batch", ...
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s failed (status %d): %s", e.Stage, e.StatusCode, e.Body)
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if target == ErrRemote {
		return true
	}
	if e.StatusCode == 401 || e.StatusCode == 403 {
		return target == ErrUnauthenticated
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(stage string, statusCode int, body string) *APIError {
	return &APIError{Stage: stage, StatusCode: statusCode, Body: body}
}

// JobFailedError is returned when a bulk job ends in Failed or Aborted.
type JobFailedError struct {
	JobID   string
	Object  string
	State   string
	Message string
}

// Error implements the error interface
func (e *JobFailedError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("bulk job %s on %s ended %s: %s", e.JobID, e.Object, e.State, e.Message)
	}
	return fmt.Sprintf("bulk job %s ended %s: %s", e.JobID, e.State, e.Message)
}

// Is implements errors.Is support
func (e *JobFailedError) Is(target error) bool {
	return target == ErrJobFailed
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(operation, duration, message string) *TimeoutError {
	return &TimeoutError{
		Operation: operation,
		Duration:  duration,
		Message:   message,
	}
}

// MissingColumnError reports an expected column absent from a table.
type MissingColumnError struct {
	Source string // file name or table label
	Column string
}

// Error implements the error interface
func (e *MissingColumnError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: missing expected column %q", e.Source, e.Column)
	}
	return fmt.Sprintf("missing expected column %q", e.Column)
}

// Is implements errors.Is support
func (e *MissingColumnError) Is(target error) bool {
	return target == ErrInvalidInput
}

// LookupError reports a key that was expected to resolve but did not.
type LookupError struct {
	Entity string
	Key    string
}

// Error implements the error interface
func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q not found where it must exist", e.Entity, e.Key)
}

// Is implements errors.Is support
func (e *LookupError) Is(target error) bool {
	return target == ErrInvariant
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConfigError represents a missing or malformed configuration value.
type ConfigError struct {
	Section string
	Key     string
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	loc := e.Key
	if e.Section != "" {
		loc = e.Section + "." + e.Key
	}
	if e.File != "" {
		return fmt.Sprintf("configuration error: %s in %s: %s", loc, e.File, e.Message)
	}
	return fmt.Sprintf("configuration error: %s: %s", loc, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "json", "date"
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s parse error in %s at row %d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s parse error in %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "open"
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error during %s: %v", e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// StageError names the pipeline stage a fatal error came from.
type StageError struct {
	Stage string
	Err   error
}

// Error implements the error interface
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %q: %v", e.Stage, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *StageError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsJobFailed checks if an error is a failed bulk job
func IsJobFailed(err error) bool {
	return errors.Is(err, ErrJobFailed)
}

// IsInvalidInput checks if an error is caused by bad input data
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCanceled checks if an error is a cancellation error
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapStage wraps an error with the name of the pipeline stage
func WrapStage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}
