package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
	"github.com/appforge-ai/appforge-engine/pkg/llm"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation",
			err:        apperrors.NewValidationError("prompt", "must not be empty"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "rate limited",
			err:        apperrors.ErrRateLimited,
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "rate_limited",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("get app: %w", apperrors.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "invalid transition",
			err:        fmt.Errorf("ui stage on completed app: %w", apperrors.ErrInvalidTransition),
			wantStatus: http.StatusConflict,
			wantCode:   "invalid_transition",
		},
		{
			name:       "missing api key",
			err:        apperrors.ErrMissingAPIKey,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "not_configured",
		},
		{
			name:       "parse failure",
			err:        apperrors.NewParseError("planner", errors.New("no valid JSON")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "parse_failed",
		},
		{
			name:       "vendor failure",
			err:        llm.NewError("gemini", "request failed", 503, nil),
			wantStatus: http.StatusBadGateway,
			wantCode:   "vendor_failed",
		},
		{
			name:       "vendor timeout",
			err:        &llm.Error{Vendor: "gemini", Message: "request timed out", Timeout: true},
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "vendor_timeout",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := MapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}
