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

// ScreenRepository defines the interface for app screen data access.
type ScreenRepository interface {
	// UpsertBatch inserts all screens for an app in one statement, keyed by
	// (app_id, name) so that re-running the UI stage updates rows instead of
	// duplicating them.
	UpsertBatch(ctx context.Context, appID uuid.UUID, screens []models.AppScreen) error
	ListByApp(ctx context.Context, appID uuid.UUID) ([]models.AppScreen, error)
	// SetCode writes generated code onto the screen matching componentName.
	SetCode(ctx context.Context, appID uuid.UUID, componentName, code string) error
}

type screenRepository struct {
	db *database.DB
}

// NewScreenRepository creates a new screen repository.
func NewScreenRepository(db *database.DB) ScreenRepository {
	return &screenRepository{db: db}
}

func (r *screenRepository) UpsertBatch(ctx context.Context, appID uuid.UUID, screens []models.AppScreen) error {
	screens = dedupeScreens(screens)
	if len(screens) == 0 {
		return nil
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`
		INSERT INTO app_screens (id, app_id, name, component_name, layout_data, code, created_at)
		VALUES `)

	now := time.Now()
	for i := range screens {
		s := &screens[i]
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.AppID = appID
		s.CreatedAt = now

		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 7
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, s.ID, s.AppID, s.Name, s.ComponentName, s.LayoutData, s.Code, s.CreatedAt)
	}

	sb.WriteString(`
		ON CONFLICT (app_id, name) DO UPDATE
		SET component_name = EXCLUDED.component_name,
		    layout_data = EXCLUDED.layout_data`)

	if _, err := r.db.Exec(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to upsert screens: %w", err)
	}
	return nil
}

// dedupeScreens collapses entries sharing a name, keeping the last one. A
// single INSERT ... ON CONFLICT DO UPDATE cannot touch the same row twice, so
// duplicate names in one batch would otherwise fail the whole statement.
func dedupeScreens(screens []models.AppScreen) []models.AppScreen {
	index := make(map[string]int, len(screens))
	out := screens[:0]
	for _, s := range screens {
		if i, ok := index[s.Name]; ok {
			out[i] = s
			continue
		}
		index[s.Name] = len(out)
		out = append(out, s)
	}
	return out
}

func (r *screenRepository) ListByApp(ctx context.Context, appID uuid.UUID) ([]models.AppScreen, error) {
	query := `
		SELECT id, app_id, name, component_name, layout_data, code, created_at
		FROM app_screens
		WHERE app_id = $1
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list screens: %w", err)
	}
	defer rows.Close()

	var screens []models.AppScreen
	for rows.Next() {
		var s models.AppScreen
		if err := rows.Scan(&s.ID, &s.AppID, &s.Name, &s.ComponentName, &s.LayoutData, &s.Code, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan screen: %w", err)
		}
		screens = append(screens, s)
	}
	return screens, rows.Err()
}

func (r *screenRepository) SetCode(ctx context.Context, appID uuid.UUID, componentName, code string) error {
	query := `
		UPDATE app_screens
		SET code = $3
		WHERE app_id = $1 AND component_name = $2`
	if _, err := r.db.Exec(ctx, query, appID, componentName, code); err != nil {
		return fmt.Errorf("failed to set screen code: %w", err)
	}
	return nil
}
