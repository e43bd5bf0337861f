package repositories

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appforge-ai/appforge-engine/pkg/models"
	"github.com/appforge-ai/appforge-engine/pkg/testhelpers"
)

func TestScreenRepository_UpsertBatchIdempotent(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	apps := NewAppRepository(db.DB)
	repo := NewScreenRepository(db.DB)
	ctx := context.Background()

	app := newTestApp(t, apps)

	screens := []models.AppScreen{
		{Name: "Home", ComponentName: "HomeScreen", LayoutData: json.RawMessage(`{"sections": ["list"]}`)},
		{Name: "Detail", ComponentName: "DetailScreen", LayoutData: json.RawMessage(`{"sections": ["hero"]}`)},
	}
	require.NoError(t, repo.UpsertBatch(ctx, app.ID, screens))

	listed, err := repo.ListByApp(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	// Re-running the batch with changed layout updates in place, no new rows.
	screens[0].LayoutData = json.RawMessage(`{"sections": ["grid"]}`)
	require.NoError(t, repo.UpsertBatch(ctx, app.ID, screens))

	listed, err = repo.ListByApp(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Detail", listed[0].Name)
	assert.Equal(t, "Home", listed[1].Name)
	assert.JSONEq(t, `{"sections": ["grid"]}`, string(listed[1].LayoutData))
}

func TestScreenRepository_UpsertEmptyBatch(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	apps := NewAppRepository(db.DB)
	repo := NewScreenRepository(db.DB)
	ctx := context.Background()

	app := newTestApp(t, apps)
	require.NoError(t, repo.UpsertBatch(ctx, app.ID, nil))

	listed, err := repo.ListByApp(ctx, app.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestScreenRepository_UpsertBatchDuplicateNames(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	apps := NewAppRepository(db.DB)
	repo := NewScreenRepository(db.DB)
	ctx := context.Background()

	app := newTestApp(t, apps)

	// Models sometimes emit the same screen twice. The batch must still
	// succeed and the last occurrence wins.
	screens := []models.AppScreen{
		{Name: "Home", ComponentName: "HomeScreen", LayoutData: json.RawMessage(`{"sections": ["list"]}`)},
		{Name: "Detail", ComponentName: "DetailScreen", LayoutData: json.RawMessage(`{}`)},
		{Name: "Home", ComponentName: "HomeScreenV2", LayoutData: json.RawMessage(`{"sections": ["grid"]}`)},
	}
	require.NoError(t, repo.UpsertBatch(ctx, app.ID, screens))

	listed, err := repo.ListByApp(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "HomeScreenV2", listed[1].ComponentName)
	assert.JSONEq(t, `{"sections": ["grid"]}`, string(listed[1].LayoutData))
}

func TestDedupeScreens(t *testing.T) {
	out := dedupeScreens([]models.AppScreen{
		{Name: "Home", ComponentName: "HomeScreen"},
		{Name: "Detail", ComponentName: "DetailScreen"},
		{Name: "Home", ComponentName: "HomeScreenV2"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "HomeScreenV2", out[0].ComponentName)
	assert.Equal(t, "DetailScreen", out[1].ComponentName)
}

func TestScreenRepository_SetCode(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	apps := NewAppRepository(db.DB)
	repo := NewScreenRepository(db.DB)
	ctx := context.Background()

	app := newTestApp(t, apps)
	require.NoError(t, repo.UpsertBatch(ctx, app.ID, []models.AppScreen{
		{Name: "Home", ComponentName: "HomeScreen", LayoutData: json.RawMessage(`{}`)},
	}))

	require.NoError(t, repo.SetCode(ctx, app.ID, "HomeScreen", "export function HomeScreen() {}"))

	listed, err := repo.ListByApp(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "export function HomeScreen() {}", listed[0].Code)
}

func TestComponentRepository_UpsertBatchIdempotent(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	apps := NewAppRepository(db.DB)
	repo := NewComponentRepository(db.DB)
	ctx := context.Background()

	app := newTestApp(t, apps)

	components := []models.AppComponent{
		{Name: "RecipeCard", Type: "display", PropsSchema: json.RawMessage(`{"title": "string"}`)},
	}
	require.NoError(t, repo.UpsertBatch(ctx, app.ID, components))

	components[0].Type = "interactive"
	require.NoError(t, repo.UpsertBatch(ctx, app.ID, components))

	listed, err := repo.ListByApp(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "interactive", listed[0].Type)
}

func TestDedupeComponents(t *testing.T) {
	out := dedupeComponents([]models.AppComponent{
		{Name: "RecipeCard", Type: "display"},
		{Name: "RecipeCard", Type: "interactive"},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "interactive", out[0].Type)
}

func TestComponentRepository_SetCode(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	apps := NewAppRepository(db.DB)
	repo := NewComponentRepository(db.DB)
	ctx := context.Background()

	app := newTestApp(t, apps)
	require.NoError(t, repo.UpsertBatch(ctx, app.ID, []models.AppComponent{
		{Name: "RecipeCard", Type: "display", PropsSchema: json.RawMessage(`{}`)},
	}))

	require.NoError(t, repo.SetCode(ctx, app.ID, "RecipeCard", "export function RecipeCard() {}"))

	listed, err := repo.ListByApp(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "export function RecipeCard() {}", listed[0].Code)
}
