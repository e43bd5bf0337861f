package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/appforge-ai/appforge-engine/pkg/models"
	"github.com/appforge-ai/appforge-engine/pkg/repositories"
	"github.com/appforge-ai/appforge-engine/pkg/sanitize"
)

// ProjectService saves and lists one-shot generation results, grouped by the
// caller's anonymous key. See models.AnonKey for what that key does and does
// not promise.
type ProjectService struct {
	projects repositories.UserProjectRepository
	logger   *zap.Logger
}

// NewProjectService creates the project service.
func NewProjectService(projects repositories.UserProjectRepository, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		logger:   logger.Named("projects"),
	}
}

// Save persists a generated artifact under the caller's anonymous key.
func (s *ProjectService) Save(ctx context.Context, key models.AnonKey, name, prompt, code string) (*models.UserProject, error) {
	if err := sanitize.ValidateProjectName(name); err != nil {
		return nil, err
	}

	project := &models.UserProject{
		AnonKey:       key,
		ProjectName:   name,
		Prompt:        prompt,
		GeneratedCode: code,
	}
	if err := s.projects.Save(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project saved",
		zap.String("project_id", project.ID.String()),
		zap.String("project_name", project.ProjectName))

	return project, nil
}

// List returns the caller's saved projects, newest first.
func (s *ProjectService) List(ctx context.Context, key models.AnonKey) ([]models.UserProject, error) {
	return s.projects.ListByAnonKey(ctx, key)
}
