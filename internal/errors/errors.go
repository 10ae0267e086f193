package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// ERROR CODES
// =============================================================================

// Error code constants for structured errors
const (
	CodeConfigError        = "CONFIG_ERROR"
	CodeInvalidModel       = "INVALID_MODEL"
	CodeUnsupportedSchema  = "UNSUPPORTED_SCHEMA"
	CodeLoadError          = "LOAD_ERROR"
	CodeOutputError        = "OUTPUT_ERROR"
	CodeContextCancelled   = "CONTEXT_CANCELLED"
	CodeUnknownComponent   = "UNKNOWN_COMPONENT"
	CodeCompileFailed      = "COMPILE_FAILED"
	CodeCircularDependency = "CIRCULAR_DEPENDENCY"
)

// Standard compiler errors
var (
	ErrNilModel      = errors.New("model is nil")
	ErrCatalogFrozen = errors.New("catalog already built")
	ErrNoComponents  = errors.New("model declares no components")
	ErrNotValidated  = errors.New("binding graph has not been validated")
)

// =============================================================================
// KILN ERROR (STRUCTURED ERROR)
// =============================================================================

// KilnError represents a structured error with context
type KilnError struct {
	Code      string
	Message   string
	Cause     error
	Timestamp time.Time
	Context   map[string]any
}

func (e *KilnError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *KilnError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is interface for KilnError.
// Compares by error code, allowing matching against sentinel errors.
func (e *KilnError) Is(target error) bool {
	t, ok := target.(*KilnError)
	if !ok {
		return false
	}
	return e.Code != "" && e.Code == t.Code
}

// WithContext adds context to the error
func (e *KilnError) WithContext(key string, value any) *KilnError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newError(code, message string, cause error, ctx map[string]any) *KilnError {
	if ctx == nil {
		ctx = make(map[string]any)
	}
	return &KilnError{
		Code:      code,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
		Context:   ctx,
	}
}

// ErrConfigError creates a config error
func ErrConfigError(message string, cause error) *KilnError {
	return newError(CodeConfigError, message, cause, nil)
}

// ErrInvalidModel reports a model that breaks a structural guarantee of the front-end.
func ErrInvalidModel(reasons ...string) *KilnError {
	return newError(CodeInvalidModel,
		"invalid model: "+strings.Join(reasons, "; "),
		nil,
		map[string]any{"reasons": reasons},
	)
}

// ErrUnsupportedSchema reports a model file whose schema version is not accepted.
func ErrUnsupportedSchema(version, constraint string, cause error) *KilnError {
	return newError(CodeUnsupportedSchema,
		fmt.Sprintf("model schema %q does not satisfy %q", version, constraint),
		cause,
		map[string]any{"schema": version, "constraint": constraint},
	)
}

// ErrLoad wraps a failure to read or decode a model file.
func ErrLoad(path string, cause error) *KilnError {
	return newError(CodeLoadError,
		"failed to load model '"+path+"'",
		cause,
		map[string]any{"path": path},
	)
}

// ErrOutput wraps a failure to create or write a report file.
func ErrOutput(path string, cause error) *KilnError {
	return newError(CodeOutputError,
		"failed to write '"+path+"'",
		cause,
		map[string]any{"path": path},
	)
}

func ErrContextCancelled(operation string, cause error) *KilnError {
	return newError(CodeContextCancelled,
		"context cancelled during "+operation,
		cause,
		map[string]any{"operation": operation},
	)
}

func ErrUnknownComponent(id string) *KilnError {
	return newError(CodeUnknownComponent,
		"component '"+id+"' not found",
		nil,
		map[string]any{"component": id},
	)
}

// ErrCompileFailed summarizes a run in which at least one component was rejected.
func ErrCompileFailed(rejected []string) *KilnError {
	return newError(CodeCompileFailed,
		"compilation rejected: "+strings.Join(rejected, ", "),
		nil,
		map[string]any{"components": rejected},
	)
}

// ErrCircularDependency reports a cycle met while ordering construction steps.
func ErrCircularDependency(cycle []string) *KilnError {
	return newError(CodeCircularDependency,
		"circular dependency: "+strings.Join(cycle, " -> "),
		nil,
		map[string]any{"cycle": cycle},
	)
}

// =============================================================================
// STANDARD ERRORS PACKAGE INTEGRATION
// =============================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// =============================================================================
// SENTINEL ERRORS (for use with Is)
// =============================================================================

var (
	ErrConfigErrorSentinel        = &KilnError{Code: CodeConfigError}
	ErrInvalidModelSentinel       = &KilnError{Code: CodeInvalidModel}
	ErrUnsupportedSchemaSentinel  = &KilnError{Code: CodeUnsupportedSchema}
	ErrLoadSentinel               = &KilnError{Code: CodeLoadError}
	ErrOutputSentinel             = &KilnError{Code: CodeOutputError}
	ErrContextCancelledSentinel   = &KilnError{Code: CodeContextCancelled}
	ErrUnknownComponentSentinel   = &KilnError{Code: CodeUnknownComponent}
	ErrCompileFailedSentinel      = &KilnError{Code: CodeCompileFailed}
	ErrCircularDependencySentinel = &KilnError{Code: CodeCircularDependency}
)

// IsInvalidModel checks if the error is an invalid model error
func IsInvalidModel(err error) bool {
	return Is(err, ErrInvalidModelSentinel)
}

// IsContextCancelled checks if the error is a context cancellation error
func IsContextCancelled(err error) bool {
	return Is(err, ErrContextCancelledSentinel)
}

// IsCompileFailed checks if the error reports rejected components
func IsCompileFailed(err error) bool {
	return Is(err, ErrCompileFailedSentinel)
}

// GetErrorCode extracts the code of the first KilnError in err's chain.
func GetErrorCode(err error) string {
	var ke *KilnError
	if As(err, &ke) {
		return ke.Code
	}
	return ""
}
