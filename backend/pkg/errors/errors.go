package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeSource represents failures locating the mind map literal
	ErrorTypeSource ErrorType = "source"
	// ErrorTypeDecode represents strict decoding failures (recoverable)
	ErrorTypeDecode ErrorType = "decode"
	// ErrorTypeExtraction represents fallback extraction failures
	ErrorTypeExtraction ErrorType = "extraction"
	// ErrorTypePersistence represents graph store failures
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeEmbedding represents embedding client failures
	ErrorTypeEmbedding ErrorType = "embedding"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Kind reports the error category
func (e *BaseError) Kind() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Source Errors

// Locator stages reported by ErrSourceNotFound
const (
	StageMarker = "marker"
	StageOpen   = "open"
	StageClose  = "close"
)

// ErrSourceNotFound is returned when the declaration marker or one of the
// object delimiters cannot be found in the source text
type ErrSourceNotFound struct {
	*BaseError
	Stage  string
	Marker string
}

func NewSourceNotFound(stage, marker string) *ErrSourceNotFound {
	var msg string
	switch stage {
	case StageMarker:
		msg = fmt.Sprintf("could not find declaration %q", marker)
	case StageOpen:
		msg = fmt.Sprintf("could not find the start of the object after %q", marker)
	default:
		msg = fmt.Sprintf("could not find the end of the object after %q", marker)
	}
	return &ErrSourceNotFound{
		BaseError: NewBaseError(ErrorTypeSource, msg, nil),
		Stage:     stage,
		Marker:    marker,
	}
}

// Decode Errors

// ErrDecodeFailed is returned when the normalized literal is not valid JSON
// or does not describe a mind map. Callers recover from it by falling back.
type ErrDecodeFailed struct {
	*BaseError
	Offset  int64
	Excerpt string
}

func NewDecodeFailed(offset int64, excerpt string, err error) *ErrDecodeFailed {
	return &ErrDecodeFailed{
		BaseError: NewBaseError(ErrorTypeDecode, "strict decode failed", err),
		Offset:    offset,
		Excerpt:   excerpt,
	}
}

// Extraction Errors

// ErrExtractionFailed is returned when no usable tree could be recovered
type ErrExtractionFailed struct {
	*BaseError
	Reason string
}

func NewExtractionFailed(reason string, err error) *ErrExtractionFailed {
	return &ErrExtractionFailed{
		BaseError: NewBaseError(ErrorTypeExtraction, fmt.Sprintf("extraction failed: %s", reason), err),
		Reason:    reason,
	}
}

// Persistence Errors

// ErrPersistenceFailed is returned when the graph store rejects a mutation
type ErrPersistenceFailed struct {
	*BaseError
	Operation string
	EntityID  string
}

func NewPersistenceFailed(operation, entityID string, err error) *ErrPersistenceFailed {
	return &ErrPersistenceFailed{
		BaseError: NewBaseError(ErrorTypePersistence, fmt.Sprintf("%s failed for %s", operation, entityID), err),
		Operation: operation,
		EntityID:  entityID,
	}
}

// Embedding Errors

// ErrEmbeddingFailed is returned when the embeddings endpoint fails
type ErrEmbeddingFailed struct {
	*BaseError
	Model string
	Count int
}

func NewEmbeddingFailed(model string, count int, err error) *ErrEmbeddingFailed {
	return &ErrEmbeddingFailed{
		BaseError: NewBaseError(ErrorTypeEmbedding, fmt.Sprintf("embedding %d texts with %s failed", count, model), err),
		Model:     model,
		Count:     count,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// Helper functions

type kinded interface {
	Kind() ErrorType
}

// IsErrorType checks if an error, or any error it wraps, is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	var k kinded
	for err != nil {
		if stderrors.As(err, &k) && k.Kind() == errType {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// IsRecoverable reports whether the pipeline can continue after err
func IsRecoverable(err error) bool {
	return IsErrorType(err, ErrorTypeDecode)
}
