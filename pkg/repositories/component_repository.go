package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/appforge-ai/appforge-engine/pkg/database"
	"github.com/appforge-ai/appforge-engine/pkg/models"
)

// ComponentRepository defines the interface for app component data access.
type ComponentRepository interface {
	// UpsertBatch mirrors ScreenRepository.UpsertBatch for components.
	UpsertBatch(ctx context.Context, appID uuid.UUID, components []models.AppComponent) error
	ListByApp(ctx context.Context, appID uuid.UUID) ([]models.AppComponent, error)
	SetCode(ctx context.Context, appID uuid.UUID, name, code string) error
}

type componentRepository struct {
	db *database.DB
}

// NewComponentRepository creates a new component repository.
func NewComponentRepository(db *database.DB) ComponentRepository {
	return &componentRepository{db: db}
}

func (r *componentRepository) UpsertBatch(ctx context.Context, appID uuid.UUID, components []models.AppComponent) error {
	components = dedupeComponents(components)
	if len(components) == 0 {
		return nil
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`
		INSERT INTO app_components (id, app_id, name, type, props_schema, code, created_at)
		VALUES `)

	now := time.Now()
	for i := range components {
		c := &components[i]
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		c.AppID = appID
		c.CreatedAt = now

		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 7
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, c.ID, c.AppID, c.Name, c.Type, c.PropsSchema, c.Code, c.CreatedAt)
	}

	sb.WriteString(`
		ON CONFLICT (app_id, name) DO UPDATE
		SET type = EXCLUDED.type,
		    props_schema = EXCLUDED.props_schema`)

	if _, err := r.db.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to upsert components: %w", err)
	}
	return nil
}

// dedupeComponents keeps the last entry per name, see dedupeScreens.
func dedupeComponents(components []models.AppComponent) []models.AppComponent {
	index := make(map[string]int, len(components))
	out := components[:0]
	for _, c := range components {
		if i, ok := index[c.Name]; ok {
			out[i] = c
			continue
		}
		index[c.Name] = len(out)
		out = append(out, c)
	}
	return out
}

func (r *componentRepository) ListByApp(ctx context.Context, appID uuid.UUID) ([]models.AppComponent, error) {
	query := `
		SELECT id, app_id, name, type, props_schema, code, created_at
		FROM app_components
		WHERE app_id = $1
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}
	defer rows.Close()

	var components []models.AppComponent
	for rows.Next() {
		var c models.AppComponent
		if err := rows.Scan(&c.ID, &c.AppID, &c.Name, &c.Type, &c.PropsSchema, &c.Code, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

func (r *componentRepository) SetCode(ctx context.Context, appID uuid.UUID, name, code string) error {
	query := `
		UPDATE app_components
		SET code = $3
		WHERE app_id = $1 AND name = $2`
	if _, err := r.db.Exec(ctx, query, appID, name, code); err != nil {
		return fmt.Errorf("failed to set component code: %w", err)
	}
	return nil
}
