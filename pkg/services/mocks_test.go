package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
	"github.com/appforge-ai/appforge-engine/pkg/models"
)

// mockAppRepository is an in-memory AppRepository that enforces the same
// status guard as the real one, so stage-ordering tests exercise both layers.
type mockAppRepository struct {
	apps map[uuid.UUID]*models.App

	createErr error
	updateErr error
}

func newMockAppRepository() *mockAppRepository {
	return &mockAppRepository{apps: make(map[uuid.UUID]*models.App)}
}

func (m *mockAppRepository) Create(ctx context.Context, app *models.App) error {
	if m.createErr != nil {
		return m.createErr
	}
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if app.Status == "" {
		app.Status = models.StatusPlanning
	}
	copied := *app
	m.apps[app.ID] = &copied
	return nil
}

func (m *mockAppRepository) Get(ctx context.Context, id uuid.UUID) (*models.App, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *app
	return &copied, nil
}

func (m *mockAppRepository) UpdatePlan(ctx context.Context, id uuid.UUID, name, description string, planData json.RawMessage, from, to models.AppStatus) error {
	return m.guarded(id, from, func(app *models.App) {
		app.Name = name
		app.Description = description
		app.PlanData = planData
		app.Status = to
	})
}

func (m *mockAppRepository) UpdateUI(ctx context.Context, id uuid.UUID, uiData json.RawMessage, from, to models.AppStatus) error {
	return m.guarded(id, from, func(app *models.App) {
		app.UIData = uiData
		app.Status = to
	})
}

func (m *mockAppRepository) UpdateCode(ctx context.Context, id uuid.UUID, codeData json.RawMessage, from, to models.AppStatus) error {
	return m.guarded(id, from, func(app *models.App) {
		app.CodeData = codeData
		app.Status = to
	})
}

func (m *mockAppRepository) SetError(ctx context.Context, id uuid.UUID) error {
	app, ok := m.apps[id]
	if !ok {
		return nil
	}
	if app.Status != models.StatusCompleted && app.Status != models.StatusError {
		app.Status = models.StatusError
	}
	return nil
}

func (m *mockAppRepository) guarded(id uuid.UUID, from models.AppStatus, apply func(*models.App)) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	app, ok := m.apps[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if app.Status != from {
		return apperrors.ErrInvalidTransition
	}
	apply(app)
	return nil
}

type mockScreenRepository struct {
	screens map[string]*models.AppScreen // keyed by name
	code    map[string]string            // keyed by component name

	upsertCalls int
	upsertErr   error
}

func newMockScreenRepository() *mockScreenRepository {
	return &mockScreenRepository{
		screens: make(map[string]*models.AppScreen),
		code:    make(map[string]string),
	}
}

func (m *mockScreenRepository) UpsertBatch(ctx context.Context, appID uuid.UUID, screens []models.AppScreen) error {
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, s := range screens {
		s.AppID = appID
		copied := s
		m.screens[s.Name] = &copied
	}
	return nil
}

func (m *mockScreenRepository) ListByApp(ctx context.Context, appID uuid.UUID) ([]models.AppScreen, error) {
	out := make([]models.AppScreen, 0, len(m.screens))
	for _, s := range m.screens {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockScreenRepository) SetCode(ctx context.Context, appID uuid.UUID, componentName, code string) error {
	m.code[componentName] = code
	return nil
}

type mockComponentRepository struct {
	components map[string]*models.AppComponent
	code       map[string]string

	upsertCalls int
}

func newMockComponentRepository() *mockComponentRepository {
	return &mockComponentRepository{
		components: make(map[string]*models.AppComponent),
		code:       make(map[string]string),
	}
}

func (m *mockComponentRepository) UpsertBatch(ctx context.Context, appID uuid.UUID, components []models.AppComponent) error {
	m.upsertCalls++
	for _, c := range components {
		c.AppID = appID
		copied := c
		m.components[c.Name] = &copied
	}
	return nil
}

func (m *mockComponentRepository) ListByApp(ctx context.Context, appID uuid.UUID) ([]models.AppComponent, error) {
	out := make([]models.AppComponent, 0, len(m.components))
	for _, c := range m.components {
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockComponentRepository) SetCode(ctx context.Context, appID uuid.UUID, name, code string) error {
	m.code[name] = code
	return nil
}

// mockLimiter records calls and returns a configurable error.
type mockLimiter struct {
	allowErr error
	calls    []string
}

func (m *mockLimiter) Allow(ctx context.Context, key string) error {
	m.calls = append(m.calls, key)
	return m.allowErr
}
