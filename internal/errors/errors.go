// Package errors provides structured error types and handling for ctb.
//nolint:revive // var-naming: Package name is intentional for error type organization
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeUnknown is for unknown errors
	ErrorTypeUnknown ErrorType = "unknown"

	// ErrorTypeValidation is for validation errors
	ErrorTypeValidation ErrorType = "validation"

	// ErrorTypeNotFound is for schema entities or attributes that do not exist
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeConflict is for duplicates and unrepresentable schema transitions
	ErrorTypeConflict ErrorType = "conflict"

	// ErrorTypeInternal is for internal errors
	ErrorTypeInternal ErrorType = "internal"

	// ErrorTypeConfiguration is for configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"

	// ErrorTypeAborted is for operations the user declined
	ErrorTypeAborted ErrorType = "aborted"

	// ErrorTypeUnhandled is for wizard branches that have no handler
	ErrorTypeUnhandled ErrorType = "unhandled"

	// ErrorTypeStorage is for schema file read/write failures
	ErrorTypeStorage ErrorType = "storage"

	// ErrorTypeBusy is for a submission started while another is running
	ErrorTypeBusy ErrorType = "busy"

	// ErrorTypeUnsaved is for closing a form that holds unsaved changes
	ErrorTypeUnsaved ErrorType = "unsaved"
)

// BuilderError represents a structured error with additional context
type BuilderError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *BuilderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *BuilderError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *BuilderError) Is(target error) bool {
	if target == nil {
		return false
	}

	var targetErr *BuilderError
	if errors.As(target, &targetErr) {
		return e.Type == targetErr.Type
	}

	return errors.Is(e.Cause, target)
}

// WithContext adds context to the error
func (e *BuilderError) WithContext(key string, value interface{}) *BuilderError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new BuilderError
func New(errType ErrorType, message string) *BuilderError {
	return &BuilderError{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new BuilderError with formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *BuilderError {
	return &BuilderError{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *BuilderError {
	if err == nil {
		return nil
	}

	// Keep the stack of the innermost BuilderError
	var be *BuilderError
	if errors.As(err, &be) {
		return &BuilderError{
			Type:    errType,
			Message: message,
			Cause:   err,
			Context: be.Context,
			Stack:   be.Stack,
		}
	}

	return &BuilderError{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// Wrapf wraps an existing error with formatted message
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *BuilderError {
	if err == nil {
		return nil
	}

	return Wrap(err, errType, fmt.Sprintf(format, args...))
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	var frames []StackFrame

	for i := skip; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		fnName := fn.Name()
		if strings.Contains(fnName, "runtime.") ||
			strings.Contains(fnName, "testing.") {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fnName,
			File:     file,
			Line:     line,
		})

		if len(frames) >= 10 {
			break
		}
	}

	return frames
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var be *BuilderError
	if errors.As(err, &be) {
		return be.Type == errType
	}
	return false
}

// GetType returns the error type
func GetType(err error) ErrorType {
	var be *BuilderError
	if errors.As(err, &be) {
		return be.Type
	}
	return ErrorTypeUnknown
}

// Common error constructors

// NotFoundf creates a not found error with formatted message
func NotFoundf(format string, args ...interface{}) *BuilderError {
	return Newf(ErrorTypeNotFound, format, args...)
}

// Invalid creates a validation error
func Invalid(field, reason string) *BuilderError {
	err := Newf(ErrorTypeValidation, "invalid %s: %s", field, reason)
	return err.WithContext("field", field).WithContext("reason", reason)
}

// Invalidf creates a validation error with formatted message
func Invalidf(format string, args ...interface{}) *BuilderError {
	return Newf(ErrorTypeValidation, format, args...)
}

// Conflictf creates a conflict error with formatted message
func Conflictf(format string, args ...interface{}) *BuilderError {
	return Newf(ErrorTypeConflict, format, args...)
}

// Config creates a configuration error
func Config(message string) *BuilderError {
	return New(ErrorTypeConfiguration, message)
}

// Domain-specific error constructors

// Aborted creates an error for an operation the user declined
func Aborted(operation string) *BuilderError {
	return Newf(ErrorTypeAborted, "%s aborted", operation).WithContext("operation", operation)
}

// Unhandled creates an error for a wizard state with no handler
func Unhandled(format string, args ...interface{}) *BuilderError {
	return Newf(ErrorTypeUnhandled, format, args...).WithContext("component", "wizard")
}

// SchemaCommit wraps a registry commit error with operation context
func SchemaCommit(operation, uid string, err error) *BuilderError {
	wrapped := Wrapf(err, typeOr(err, ErrorTypeInternal), "%s on %s failed", operation, uid)
	return wrapped.WithContext("component", "registry").
		WithContext("operation", operation).
		WithContext("uid", uid)
}

// StorageError wraps a schema store failure
func StorageError(operation, path string, err error) *BuilderError {
	wrapped := Wrapf(err, ErrorTypeStorage, "schema store error during %s", operation)
	return wrapped.WithContext("component", "store").
		WithContext("operation", operation).
		WithContext("path", path)
}

// ConfigLoad wraps a configuration loading error
func ConfigLoad(path string, err error) *BuilderError {
	wrapped := Wrapf(err, ErrorTypeConfiguration, "failed to load configuration from %s", path)
	return wrapped.WithContext("config_path", path)
}

// typeOr returns the error type, or fallback when err is not a BuilderError
func typeOr(err error, fallback ErrorType) ErrorType {
	if t := GetType(err); t != ErrorTypeUnknown {
		return t
	}
	return fallback
}
