package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
	"github.com/appforge-ai/appforge-engine/pkg/database"
	"github.com/appforge-ai/appforge-engine/pkg/models"
)

// AppRepository defines the interface for app data access.
type AppRepository interface {
	Create(ctx context.Context, app *models.App) error
	Get(ctx context.Context, id uuid.UUID) (*models.App, error)
	// UpdatePlan writes the planner's output and advances the status in one
	// row update, guarded on the expected current status. Returns
	// apperrors.ErrInvalidTransition when the guard does not match.
	UpdatePlan(ctx context.Context, id uuid.UUID, name, description string, planData json.RawMessage, from, to models.AppStatus) error
	// UpdateUI writes ui_data and advances the status under the same guard.
	UpdateUI(ctx context.Context, id uuid.UUID, uiData json.RawMessage, from, to models.AppStatus) error
	// UpdateCode writes code_data and advances the status under the same guard.
	UpdateCode(ctx context.Context, id uuid.UUID, codeData json.RawMessage, from, to models.AppStatus) error
	// SetError moves the app to the terminal error status.
	SetError(ctx context.Context, id uuid.UUID) error
}

// appRepository implements AppRepository using PostgreSQL.
type appRepository struct {
	db *database.DB
}

// NewAppRepository creates a new app repository.
func NewAppRepository(db *database.DB) AppRepository {
	return &appRepository{db: db}
}

// Create inserts a new app row in status planning.
func (r *appRepository) Create(ctx context.Context, app *models.App) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = models.StatusPlanning
	}

	query := `
		INSERT INTO apps (id, name, description, prompt, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		app.ID, app.Name, app.Description, app.Prompt, app.Status,
		app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	return nil
}

// Get retrieves an app by ID.
func (r *appRepository) Get(ctx context.Context, id uuid.UUID) (*models.App, error) {
	query := `
		SELECT id, name, description, prompt, status, plan_data, ui_data, code_data, created_at, updated_at
		FROM apps
		WHERE id = $1`

	var app models.App
	err := r.db.QueryRow(ctx, query, id).Scan(
		&app.ID,
		&app.Name,
		&app.Description,
		&app.Prompt,
		&app.Status,
		&app.PlanData,
		&app.UIData,
		&app.CodeData,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get app: %w", err)
	}
	return &app, nil
}

func (r *appRepository) UpdatePlan(ctx context.Context, id uuid.UUID, name, description string, planData json.RawMessage, from, to models.AppStatus) error {
	query := `
		UPDATE apps
		SET name = $2, description = $3, plan_data = $4, status = $5, updated_at = now()
		WHERE id = $1 AND status = $6`
	return r.guardedUpdate(ctx, id, from, query, id, name, description, planData, to, from)
}

func (r *appRepository) UpdateUI(ctx context.Context, id uuid.UUID, uiData json.RawMessage, from, to models.AppStatus) error {
	query := `
		UPDATE apps
		SET ui_data = $2, status = $3, updated_at = now()
		WHERE id = $1 AND status = $4`
	return r.guardedUpdate(ctx, id, from, query, id, uiData, to, from)
}

func (r *appRepository) UpdateCode(ctx context.Context, id uuid.UUID, codeData json.RawMessage, from, to models.AppStatus) error {
	query := `
		UPDATE apps
		SET code_data = $2, status = $3, updated_at = now()
		WHERE id = $1 AND status = $4`
	return r.guardedUpdate(ctx, id, from, query, id, codeData, to, from)
}

// SetError marks the app failed. Completed apps stay completed.
func (r *appRepository) SetError(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE apps
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status NOT IN ($2, $3)`
	_, err := r.db.Exec(ctx, query, id, models.StatusError, models.StatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to mark app errored: %w", err)
	}
	return nil
}

// guardedUpdate executes an update whose WHERE clause includes the expected
// current status. An unmatched row is either a missing app or a concurrent or
// out-of-order stage invocation; the two are distinguished with a follow-up
// existence check.
func (r *appRepository) guardedUpdate(ctx context.Context, id uuid.UUID, from models.AppStatus, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update app: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current models.AppStatus
	err = r.db.QueryRow(ctx, `SELECT status FROM apps WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check app status: %w", err)
	}
	return fmt.Errorf("app is %s, expected %s: %w", current, from, apperrors.ErrInvalidTransition)
}
