package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
	"github.com/appforge-ai/appforge-engine/pkg/models"
	"github.com/appforge-ai/appforge-engine/pkg/services"
)

// ProjectsHandler exposes save and list for one-shot generation results.
type ProjectsHandler struct {
	projects *services.ProjectService
	logger   *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projects *services.ProjectService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{
		projects: projects,
		logger:   logger,
	}
}

// RegisterRoutes registers the project routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/projects/save", h.Save)
	mux.HandleFunc("POST /api/projects/list", h.List)
}

type saveProjectRequest struct {
	ProjectName   string `json:"projectName"`
	Prompt        string `json:"prompt"`
	GeneratedCode string `json:"generatedCode"`
	UserIP        string `json:"userIP"`
}

type listProjectsRequest struct {
	UserIP string `json:"userIP"`
}

type projectSummary struct {
	ID            string `json:"id"`
	ProjectName   string `json:"projectName"`
	Prompt        string `json:"prompt"`
	GeneratedCode string `json:"generatedCode"`
	CreatedAt     string `json:"createdAt"`
}

// Save handles POST /api/projects/save.
func (h *ProjectsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.NewValidationError("body", "malformed JSON"))
		return
	}

	key := ClientKey(r, req.UserIP)
	project, err := h.projects.Save(r.Context(), key, req.ProjectName, req.Prompt, req.GeneratedCode)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSuccess(w, map[string]any{
		"success":     true,
		"projectId":   project.ID.String(),
		"projectName": project.ProjectName,
	})
}

// List handles POST /api/projects/list.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	var req listProjectsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.NewValidationError("body", "malformed JSON"))
		return
	}

	projects, err := h.projects.List(r.Context(), ClientKey(r, req.UserIP))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSuccess(w, map[string]any{
		"success":  true,
		"projects": toSummaries(projects),
	})
}

func toSummaries(projects []models.UserProject) []projectSummary {
	summaries := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		summaries = append(summaries, projectSummary{
			ID:            p.ID.String(),
			ProjectName:   p.ProjectName,
			Prompt:        p.Prompt,
			GeneratedCode: p.GeneratedCode,
			CreatedAt:     p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return summaries
}

func (h *ProjectsHandler) writeError(w http.ResponseWriter, err error) {
	status, errorCode := MapError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("project request failed", zap.Error(err))
	}
	if writeErr := ErrorResponse(w, status, errorCode, err.Error()); writeErr != nil {
		h.logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}

func (h *ProjectsHandler) writeSuccess(w http.ResponseWriter, payload map[string]any) {
	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
