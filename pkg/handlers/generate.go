package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
	"github.com/appforge-ai/appforge-engine/pkg/logging"
	"github.com/appforge-ai/appforge-engine/pkg/services"
)

// GenerateHandler exposes the three single-shot generators.
type GenerateHandler struct {
	generator *services.GeneratorService
	logger    *zap.Logger
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(generator *services.GeneratorService, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		logger:    logger,
	}
}

// RegisterRoutes registers the generator routes on the given mux.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate/page", h.Page)
	mux.HandleFunc("POST /api/generate/component", h.Component)
	mux.HandleFunc("POST /api/generate/snippet", h.Snippet)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// Page handles POST /api/generate/page: one prompt in, one sanitized HTML
// document out. This is the only rate-limited route.
func (h *GenerateHandler) Page(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	html, err := h.generator.GeneratePage(r.Context(), string(ClientKey(r, "")), req.Prompt)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSuccess(w, map[string]any{"success": true, "html": html})
}

// Component handles POST /api/generate/component.
func (h *GenerateHandler) Component(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	code, err := h.generator.GenerateComponent(r.Context(), req.Prompt)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSuccess(w, map[string]any{"success": true, "code": code})
}

// Snippet handles POST /api/generate/snippet.
func (h *GenerateHandler) Snippet(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	code, err := h.generator.GenerateSnippet(r.Context(), req.Prompt)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSuccess(w, map[string]any{"success": true, "code": code})
}

func (h *GenerateHandler) decode(w http.ResponseWriter, r *http.Request) (generateRequest, bool) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.NewValidationError("body", "malformed JSON"))
		return req, false
	}
	return req, true
}

func (h *GenerateHandler) writeError(w http.ResponseWriter, err error) {
	status, errorCode := MapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("generation failed",
			zap.String("error", logging.SanitizeError(err)))
	}
	if writeErr := ErrorResponse(w, status, errorCode, err.Error()); writeErr != nil {
		h.logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}

func (h *GenerateHandler) writeSuccess(w http.ResponseWriter, payload map[string]any) {
	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
