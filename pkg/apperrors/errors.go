package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid pipeline transition")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrMissingAPIKey     = errors.New("vendor API key not configured")
)

// ValidationError describes rejected user input. It is returned before any
// vendor call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ParseError indicates that vendor output did not parse as the JSON shape a
// pipeline stage expects. No repair is attempted; the whole request fails.
type ParseError struct {
	Stage string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: vendor output is not valid JSON: %v", e.Stage, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError wraps a JSON failure from the named pipeline stage.
func NewParseError(stage string, cause error) *ParseError {
	return &ParseError{Stage: stage, Cause: cause}
}
