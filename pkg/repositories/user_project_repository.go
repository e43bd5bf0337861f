package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/appforge-ai/appforge-engine/pkg/database"
	"github.com/appforge-ai/appforge-engine/pkg/models"
)

// UserProjectRepository defines the interface for saved-project data access.
type UserProjectRepository interface {
	Save(ctx context.Context, project *models.UserProject) error
	ListByAnonKey(ctx context.Context, key models.AnonKey) ([]models.UserProject, error)
}

type userProjectRepository struct {
	db *database.DB
}

// NewUserProjectRepository creates a new user project repository.
func NewUserProjectRepository(db *database.DB) UserProjectRepository {
	return &userProjectRepository{db: db}
}

func (r *userProjectRepository) Save(ctx context.Context, project *models.UserProject) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.CreatedAt = time.Now()

	query := `
		INSERT INTO user_projects (id, anon_key, project_name, prompt, generated_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		project.ID, string(project.AnonKey), project.ProjectName,
		project.Prompt, project.GeneratedCode, project.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

func (r *userProjectRepository) ListByAnonKey(ctx context.Context, key models.AnonKey) ([]models.UserProject, error) {
	query := `
		SELECT id, anon_key, project_name, prompt, generated_code, created_at
		FROM user_projects
		WHERE anon_key = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, string(key))
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.UserProject
	for rows.Next() {
		var p models.UserProject
		var anonKey string
		if err := rows.Scan(&p.ID, &anonKey, &p.ProjectName, &p.Prompt, &p.GeneratedCode, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.AnonKey = models.AnonKey(anonKey)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
