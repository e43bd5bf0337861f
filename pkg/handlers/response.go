package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
	"github.com/appforge-ai/appforge-engine/pkg/llm"
)

// ErrorResponse writes a JSON error envelope and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]any{
		"success":   false,
		"error":     message,
		"errorCode": errorCode,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// MapError converts a service error to its HTTP status and error code.
// Validation maps to 400, rate limiting to 429, vendor failures to 502 (504
// on timeout), and invalid pipeline transitions to 409.
func MapError(err error) (status int, errorCode string) {
	var (
		validationErr *apperrors.ValidationError
		parseErr      *apperrors.ParseError
		vendorErr     *llm.Error
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, apperrors.ErrMissingAPIKey):
		return http.StatusInternalServerError, "not_configured"
	case errors.As(err, &parseErr):
		return http.StatusInternalServerError, "parse_failed"
	case errors.As(err, &vendorErr):
		if vendorErr.Timeout {
			return http.StatusGatewayTimeout, "vendor_timeout"
		}
		return http.StatusBadGateway, "vendor_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
