package kiln

import (
	"github.com/xraph/kiln/internal/errors"
)

// Error is the structured run-level error.
type Error = errors.KilnError

// Error codes.
const (
	CodeInvalidModel      = errors.CodeInvalidModel
	CodeUnsupportedSchema = errors.CodeUnsupportedSchema
	CodeLoadError         = errors.CodeLoadError
	CodeOutputError       = errors.CodeOutputError
	CodeContextCancelled  = errors.CodeContextCancelled
	CodeUnknownComponent  = errors.CodeUnknownComponent
	CodeCompileFailed     = errors.CodeCompileFailed
	CodeConfigError       = errors.CodeConfigError
)

// Re-export sentinel errors for error comparison using errors.Is().
var (
	ErrInvalidModelSentinel      = errors.ErrInvalidModelSentinel
	ErrUnsupportedSchemaSentinel = errors.ErrUnsupportedSchemaSentinel
	ErrLoadSentinel              = errors.ErrLoadSentinel
	ErrOutputSentinel            = errors.ErrOutputSentinel
	ErrContextCancelledSentinel  = errors.ErrContextCancelledSentinel
	ErrUnknownComponentSentinel  = errors.ErrUnknownComponentSentinel
	ErrCompileFailedSentinel     = errors.ErrCompileFailedSentinel
)

var (
	IsInvalidModel     = errors.IsInvalidModel
	IsContextCancelled = errors.IsContextCancelled
	IsCompileFailed    = errors.IsCompileFailed
	GetErrorCode       = errors.GetErrorCode
)
