package foundation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies an error for reporting and retry decisions.
type ErrorCode string

const (
	ErrorCodeValidation    ErrorCode = "validation"
	ErrorCodeNotFound      ErrorCode = "not_found"
	ErrorCodeAlreadyExists ErrorCode = "already_exists"
	ErrorCodeCanceled      ErrorCode = "canceled"
	ErrorCodeInternal      ErrorCode = "internal"
	ErrorCodeExternal      ErrorCode = "external"
	ErrorCodeConfiguration ErrorCode = "configuration"
	ErrorCodeFilesystem    ErrorCode = "filesystem"
)

// Fields carries structured context attached to an error.
type Fields map[string]any

// ClassifiedError is a structured error with a typed code and context.
type ClassifiedError struct {
	Code      ErrorCode
	Message   string
	Context   Fields
	Cause     error
	Retryable bool
}

func (e *ClassifiedError) Error() string {
	parts := []string{fmt.Sprintf("code=%s", e.Code), e.Message}
	if len(e.Context) > 0 {
		for k, v := range e.Context {
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}
	return strings.Join(parts, " ")
}

func (e *ClassifiedError) Unwrap() error { return e.Cause }

// AsClassified returns the ClassifiedError in err's chain, if any.
func AsClassified(err error) (*ClassifiedError, bool) {
	var ce *ClassifiedError
	ok := errors.As(err, &ce)
	return ce, ok
}

// CodeOf returns the classification of err, or ErrorCodeInternal when err is
// not classified.
func CodeOf(err error) ErrorCode {
	if ce, ok := AsClassified(err); ok {
		return ce.Code
	}
	return ErrorCodeInternal
}

// Builder assembles a ClassifiedError fluently.
type Builder struct {
	err *ClassifiedError
}

// NewError starts building a classified error without a cause.
func NewError(code ErrorCode, message string) *Builder {
	return &Builder{err: &ClassifiedError{Code: code, Message: message}}
}

// WrapError starts building a classified error around an underlying cause.
func WrapError(cause error, code ErrorCode, message string) *Builder {
	return &Builder{err: &ClassifiedError{Code: code, Message: message, Cause: cause}}
}

// ValidationError is shorthand for NewError(ErrorCodeValidation, message).
func ValidationError(message string) *Builder {
	return NewError(ErrorCodeValidation, message)
}

// ConfigurationError is shorthand for NewError(ErrorCodeConfiguration, message).
func ConfigurationError(message string) *Builder {
	return NewError(ErrorCodeConfiguration, message)
}

// WithContext attaches a key/value pair to the error under construction.
func (b *Builder) WithContext(key string, value any) *Builder {
	if b.err.Context == nil {
		b.err.Context = Fields{}
	}
	b.err.Context[key] = value
	return b
}

// Retryable marks the error as transient.
func (b *Builder) Retryable() *Builder {
	b.err.Retryable = true
	return b
}

// Build finalizes the error.
func (b *Builder) Build() *ClassifiedError { return b.err }
