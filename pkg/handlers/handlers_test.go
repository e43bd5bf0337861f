package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appforge-ai/appforge-engine/pkg/config"
	"github.com/appforge-ai/appforge-engine/pkg/llm"
	"github.com/appforge-ai/appforge-engine/pkg/models"
	"github.com/appforge-ai/appforge-engine/pkg/ratelimit"
	"github.com/appforge-ai/appforge-engine/pkg/services"
)

// Function-field repository stubs. Unset fields fail loudly so a test only
// defines the calls it expects.

type stubAppRepo struct {
	CreateFunc     func(ctx context.Context, app *models.App) error
	GetFunc        func(ctx context.Context, id uuid.UUID) (*models.App, error)
	UpdatePlanFunc func(ctx context.Context, id uuid.UUID, name, description string, planData json.RawMessage, from, to models.AppStatus) error
	UpdateUIFunc   func(ctx context.Context, id uuid.UUID, uiData json.RawMessage, from, to models.AppStatus) error
	UpdateCodeFunc func(ctx context.Context, id uuid.UUID, codeData json.RawMessage, from, to models.AppStatus) error
	SetErrorFunc   func(ctx context.Context, id uuid.UUID) error

	setErrorCalls int
}

func (s *stubAppRepo) Create(ctx context.Context, app *models.App) error {
	if s.CreateFunc == nil {
		panic("unexpected Create call")
	}
	return s.CreateFunc(ctx, app)
}

func (s *stubAppRepo) Get(ctx context.Context, id uuid.UUID) (*models.App, error) {
	if s.GetFunc == nil {
		panic("unexpected Get call")
	}
	return s.GetFunc(ctx, id)
}

func (s *stubAppRepo) UpdatePlan(ctx context.Context, id uuid.UUID, name, description string, planData json.RawMessage, from, to models.AppStatus) error {
	if s.UpdatePlanFunc == nil {
		panic("unexpected UpdatePlan call")
	}
	return s.UpdatePlanFunc(ctx, id, name, description, planData, from, to)
}

func (s *stubAppRepo) UpdateUI(ctx context.Context, id uuid.UUID, uiData json.RawMessage, from, to models.AppStatus) error {
	if s.UpdateUIFunc == nil {
		panic("unexpected UpdateUI call")
	}
	return s.UpdateUIFunc(ctx, id, uiData, from, to)
}

func (s *stubAppRepo) UpdateCode(ctx context.Context, id uuid.UUID, codeData json.RawMessage, from, to models.AppStatus) error {
	if s.UpdateCodeFunc == nil {
		panic("unexpected UpdateCode call")
	}
	return s.UpdateCodeFunc(ctx, id, codeData, from, to)
}

func (s *stubAppRepo) SetError(ctx context.Context, id uuid.UUID) error {
	s.setErrorCalls++
	if s.SetErrorFunc == nil {
		return nil
	}
	return s.SetErrorFunc(ctx, id)
}

type stubScreenRepo struct {
	UpsertBatchFunc func(ctx context.Context, appID uuid.UUID, screens []models.AppScreen) error
	ListByAppFunc   func(ctx context.Context, appID uuid.UUID) ([]models.AppScreen, error)
	SetCodeFunc     func(ctx context.Context, appID uuid.UUID, componentName, code string) error
}

func (s *stubScreenRepo) UpsertBatch(ctx context.Context, appID uuid.UUID, screens []models.AppScreen) error {
	if s.UpsertBatchFunc == nil {
		panic("unexpected UpsertBatch call")
	}
	return s.UpsertBatchFunc(ctx, appID, screens)
}

func (s *stubScreenRepo) ListByApp(ctx context.Context, appID uuid.UUID) ([]models.AppScreen, error) {
	if s.ListByAppFunc == nil {
		return nil, nil
	}
	return s.ListByAppFunc(ctx, appID)
}

func (s *stubScreenRepo) SetCode(ctx context.Context, appID uuid.UUID, componentName, code string) error {
	if s.SetCodeFunc == nil {
		return nil
	}
	return s.SetCodeFunc(ctx, appID, componentName, code)
}

type stubComponentRepo struct {
	UpsertBatchFunc func(ctx context.Context, appID uuid.UUID, components []models.AppComponent) error
	ListByAppFunc   func(ctx context.Context, appID uuid.UUID) ([]models.AppComponent, error)
	SetCodeFunc     func(ctx context.Context, appID uuid.UUID, name, code string) error
}

func (s *stubComponentRepo) UpsertBatch(ctx context.Context, appID uuid.UUID, components []models.AppComponent) error {
	if s.UpsertBatchFunc == nil {
		panic("unexpected UpsertBatch call")
	}
	return s.UpsertBatchFunc(ctx, appID, components)
}

func (s *stubComponentRepo) ListByApp(ctx context.Context, appID uuid.UUID) ([]models.AppComponent, error) {
	if s.ListByAppFunc == nil {
		return nil, nil
	}
	return s.ListByAppFunc(ctx, appID)
}

func (s *stubComponentRepo) SetCode(ctx context.Context, appID uuid.UUID, name, code string) error {
	if s.SetCodeFunc == nil {
		return nil
	}
	return s.SetCodeFunc(ctx, appID, name, code)
}

type stubProjectRepo struct {
	SaveFunc          func(ctx context.Context, project *models.UserProject) error
	ListByAnonKeyFunc func(ctx context.Context, key models.AnonKey) ([]models.UserProject, error)
}

func (s *stubProjectRepo) Save(ctx context.Context, project *models.UserProject) error {
	if s.SaveFunc == nil {
		panic("unexpected Save call")
	}
	return s.SaveFunc(ctx, project)
}

func (s *stubProjectRepo) ListByAnonKey(ctx context.Context, key models.AnonKey) ([]models.UserProject, error) {
	if s.ListByAnonKeyFunc == nil {
		panic("unexpected ListByAnonKey call")
	}
	return s.ListByAnonKeyFunc(ctx, key)
}

type stubLimiter struct {
	err error
}

func (s stubLimiter) Allow(context.Context, string) error { return s.err }

var testVendorCfg = config.VendorConfig{Model: "test-model", MaxTokens: 4096}

var testLimits = config.LimitsConfig{MaxPromptLength: 500, RateWindowSecs: 60, RateCeiling: 10}

func newPipelineHandler(apps *stubAppRepo, screens *stubScreenRepo, components *stubComponentRepo, planner, coder llm.Generator) *PipelineHandler {
	svc := services.NewPipelineService(apps, screens, components, planner, coder,
		testVendorCfg, testVendorCfg, zap.NewNop())
	return NewPipelineHandler(svc, zap.NewNop())
}

func newGenerateHandler(page, component, snippet llm.Generator, limiter ratelimit.Limiter) *GenerateHandler {
	svc := services.NewGeneratorService(page, component, snippet, limiter,
		testLimits, testVendorCfg, zap.NewNop())
	return NewGenerateHandler(svc, zap.NewNop())
}

func newProjectsHandler(repo *stubProjectRepo) *ProjectsHandler {
	return NewProjectsHandler(services.NewProjectService(repo, zap.NewNop()), zap.NewNop())
}

// postJSON issues a POST with the given body through the handler's routes and
// returns the recorder.
func postJSON(t *testing.T, register func(*http.ServeMux), path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	mux := http.NewServeMux()
	register(mux)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// postRaw issues a POST with a literal body, for malformed-JSON cases.
func postRaw(t *testing.T, register func(*http.ServeMux), path, body string) *httptest.ResponseRecorder {
	t.Helper()

	mux := http.NewServeMux()
	register(mux)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// httptestPost builds a POST request with a literal JSON body so tests can
// attach headers before dispatch.
func httptestPost(t *testing.T, path, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func record(mux *http.ServeMux, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func textGenerator(text string) *llm.MockGenerator {
	g := llm.NewMockGenerator()
	g.GenerateFunc = func(ctx context.Context, req llm.Request) (*llm.Result, error) {
		return &llm.Result{Text: text, Model: "test-model"}, nil
	}
	return g
}

func plannedApp(id uuid.UUID, status models.AppStatus) *models.App {
	now := time.Now()
	return &models.App{
		ID:        id,
		Prompt:    "a recipe app",
		Status:    status,
		PlanData:  json.RawMessage(`{"appName": "Recipe Box"}`),
		UIData:    json.RawMessage(`{"screens": []}`),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
