package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error represents a structured vendor error with classification.
type Error struct {
	Vendor     string // Vendor name (anthropic, openai, gemini)
	Message    string // Human-readable message
	StatusCode int    // HTTP status code if applicable
	Timeout    bool   // True when the request hit a deadline
	Cause      error  // Underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	if e.Vendor != "" {
		parts = append(parts, e.Vendor)
	}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether the failure is worth a backoff retry. Rate
// limiting and server-side failures are transient; timeouts are not, the
// vendor is already slower than the caller will wait.
func (e *Error) IsRetryable() bool {
	if e.Timeout {
		return false
	}
	if e.StatusCode == 429 || e.StatusCode >= 500 {
		return true
	}
	return e.Message == "connection failed"
}

// NewError creates a structured vendor error.
func NewError(vendor, message string, statusCode int, cause error) *Error {
	return &Error{
		Vendor:     vendor,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// ClassifyError normalizes an SDK or transport error into *Error. Status
// codes are recovered from the error text when the SDK does not expose them
// structurally.
func ClassifyError(vendor string, err error) *Error {
	if err == nil {
		return nil
	}

	var vendorErr *Error
	if errors.As(err, &vendorErr) {
		return vendorErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	statusCode := 0
	for _, code := range []int{400, 401, 403, 404, 429, 500, 502, 503, 529} {
		if strings.Contains(errStr, fmt.Sprintf("%d", code)) {
			statusCode = code
			break
		}
	}

	e := &Error{
		Vendor:     vendor,
		Message:    "request failed",
		StatusCode: statusCode,
		Cause:      err,
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(lower, "deadline exceeded"):
		e.Message = "request timed out"
		e.Timeout = true
	case statusCode == 401 || strings.Contains(lower, "invalid api key") || strings.Contains(lower, "unauthorized"):
		e.Message = "authentication failed"
	case statusCode == 429 || strings.Contains(lower, "rate limit"):
		e.Message = "vendor rate limited"
	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host"):
		e.Message = "connection failed"
	}

	return e
}

// IsTimeout reports whether err is a vendor timeout.
func IsTimeout(err error) bool {
	var vendorErr *Error
	return errors.As(err, &vendorErr) && vendorErr.Timeout
}
