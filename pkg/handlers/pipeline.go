package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
	"github.com/appforge-ai/appforge-engine/pkg/llm"
	"github.com/appforge-ai/appforge-engine/pkg/logging"
	"github.com/appforge-ai/appforge-engine/pkg/services"
)

// PipelineHandler exposes the three pipeline stages over HTTP. The client
// invokes them sequentially; the status guard inside the service rejects
// anything out of order.
type PipelineHandler struct {
	pipeline *services.PipelineService
	logger   *zap.Logger
}

// NewPipelineHandler creates a new pipeline handler.
func NewPipelineHandler(pipeline *services.PipelineService, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// RegisterRoutes registers the pipeline routes on the given mux.
func (h *PipelineHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/apps/plan", h.Plan)
	mux.HandleFunc("POST /api/apps/ui", h.ComposeUI)
	mux.HandleFunc("POST /api/apps/code", h.GenerateCode)
}

type planRequest struct {
	Prompt string `json:"prompt"`
	AppID  string `json:"appId"`
}

type stageRequest struct {
	AppID string `json:"appId"`
}

// Plan handles POST /api/apps/plan.
func (h *PipelineHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.NewValidationError("body", "malformed JSON"))
		return
	}
	if req.Prompt == "" {
		h.writeError(w, apperrors.NewValidationError("prompt", "must not be empty"))
		return
	}
	appID, err := parseAppID(req.AppID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	plan, err := h.pipeline.Plan(r.Context(), appID, req.Prompt)
	if err != nil {
		h.writeStageError(w, r, appID.String(), "plan", err)
		return
	}

	h.writeStageSuccess(w, map[string]any{"success": true, "plan": plan})
}

// ComposeUI handles POST /api/apps/ui.
func (h *PipelineHandler) ComposeUI(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.NewValidationError("body", "malformed JSON"))
		return
	}
	appID, err := parseAppID(req.AppID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ui, err := h.pipeline.ComposeUI(r.Context(), appID)
	if err != nil {
		h.writeStageError(w, r, appID.String(), "ui", err)
		return
	}

	h.writeStageSuccess(w, map[string]any{"success": true, "ui": ui})
}

// GenerateCode handles POST /api/apps/code.
func (h *PipelineHandler) GenerateCode(w http.ResponseWriter, r *http.Request) {
	var req stageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.NewValidationError("body", "malformed JSON"))
		return
	}
	appID, err := parseAppID(req.AppID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	code, err := h.pipeline.GenerateCode(r.Context(), appID)
	if err != nil {
		h.writeStageError(w, r, appID.String(), "code", err)
		return
	}

	h.writeStageSuccess(w, map[string]any{"success": true, "code": code})
}

func parseAppID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, apperrors.NewValidationError("appId", "must not be empty")
	}
	appID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError("appId", "must be a UUID")
	}
	return appID, nil
}

// writeStageError reports a stage failure. Guard failures, vendor failures
// and unparseable model output leave the app in its prior status so the
// client can retry the stage; only unexpected internal errors move the app
// to the terminal error status.
func (h *PipelineHandler) writeStageError(w http.ResponseWriter, r *http.Request, appID, stage string, err error) {
	status, errorCode := MapError(err)

	if isInternalStageFailure(err) {
		if id, parseErr := uuid.Parse(appID); parseErr == nil {
			h.pipeline.Fail(r.Context(), id, err)
		}
	}

	h.logger.Error("pipeline stage failed",
		zap.String("app_id", appID),
		zap.String("stage", stage),
		zap.String("error", logging.SanitizeError(err)))

	if err := ErrorResponse(w, status, errorCode, "Stage failed: "+errorCode); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}

// isInternalStageFailure reports whether err warrants marking the app
// errored. Everything a client can recover from by fixing input or
// retrying stays out.
func isInternalStageFailure(err error) bool {
	var (
		validationErr *apperrors.ValidationError
		parseErr      *apperrors.ParseError
		vendorErr     *llm.Error
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &parseErr),
		errors.As(err, &vendorErr),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrRateLimited):
		return false
	}
	return true
}

func (h *PipelineHandler) writeError(w http.ResponseWriter, err error) {
	status, errorCode := MapError(err)
	if writeErr := ErrorResponse(w, status, errorCode, err.Error()); writeErr != nil {
		h.logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}

func (h *PipelineHandler) writeStageSuccess(w http.ResponseWriter, payload map[string]any) {
	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
