package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
	"github.com/appforge-ai/appforge-engine/pkg/config"
	"github.com/appforge-ai/appforge-engine/pkg/llm"
	"github.com/appforge-ai/appforge-engine/pkg/models"
	"github.com/appforge-ai/appforge-engine/pkg/prompts"
	"github.com/appforge-ai/appforge-engine/pkg/repositories"
)

// PipelineService implements the three-stage generation pipeline. Each stage
// is one vendor round trip guarded by the app's status: stages only run in
// order, exactly once, and a failed stage leaves the row in its prior status.
type PipelineService struct {
	apps       repositories.AppRepository
	screens    repositories.ScreenRepository
	components repositories.ComponentRepository
	planner    llm.Generator // Anthropic: plan and UI stages
	coder      llm.Generator // OpenAI: code stage
	plannerCfg config.VendorConfig
	coderCfg   config.VendorConfig
	logger     *zap.Logger
}

// NewPipelineService creates the pipeline service.
func NewPipelineService(
	apps repositories.AppRepository,
	screens repositories.ScreenRepository,
	components repositories.ComponentRepository,
	planner llm.Generator,
	coder llm.Generator,
	plannerCfg config.VendorConfig,
	coderCfg config.VendorConfig,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		apps:       apps,
		screens:    screens,
		components: components,
		planner:    planner,
		coder:      coder,
		plannerCfg: plannerCfg,
		coderCfg:   coderCfg,
		logger:     logger.Named("pipeline"),
	}
}

// Plan runs the planner stage. The app row is created on first call; the
// stage advances planning -> designing. Re-invoking on an app past planning
// fails with ErrInvalidTransition.
func (s *PipelineService) Plan(ctx context.Context, appID uuid.UUID, prompt string) (json.RawMessage, error) {
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		app = &models.App{ID: appID, Prompt: prompt, Status: models.StatusPlanning}
		if err := s.apps.Create(ctx, app); err != nil {
			return nil, err
		}
	}

	if !app.Status.CanTransitionTo(models.StatusDesigning) {
		return nil, fmt.Errorf("plan stage on %s app: %w", app.Status, apperrors.ErrInvalidTransition)
	}

	result, err := generateWithRetry(ctx, s.planner, llm.Request{
		System:      prompts.PlanSystem,
		Prompt:      prompts.BuildPlanPrompt(prompt),
		MaxTokens:   s.plannerCfg.MaxTokens,
		Temperature: s.plannerCfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	planJSON, err := llm.ExtractJSON(result.Text)
	if err != nil {
		return nil, apperrors.NewParseError("planner", err)
	}
	var plan models.Plan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return nil, apperrors.NewParseError("planner", err)
	}

	raw := json.RawMessage(planJSON)
	if err := s.apps.UpdatePlan(ctx, appID, string(plan.AppName), string(plan.Description), raw,
		models.StatusPlanning, models.StatusDesigning); err != nil {
		return nil, err
	}

	s.logger.Info("plan stage completed",
		zap.String("app_id", appID.String()),
		zap.String("app_name", string(plan.AppName)),
		zap.Int("screens", len(plan.Screens)))

	return raw, nil
}

// ComposeUI runs the UI composition stage, advancing designing -> coding.
// Screen and component rows are written with one batch upsert each, keyed by
// (app_id, name), so a retried stage cannot duplicate rows.
func (s *PipelineService) ComposeUI(ctx context.Context, appID uuid.UUID) (json.RawMessage, error) {
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(models.StatusCoding) {
		return nil, fmt.Errorf("ui stage on %s app: %w", app.Status, apperrors.ErrInvalidTransition)
	}

	result, err := generateWithRetry(ctx, s.planner, llm.Request{
		System:      prompts.UISystem,
		Prompt:      prompts.BuildUIPrompt(string(app.PlanData)),
		MaxTokens:   s.plannerCfg.MaxTokens,
		Temperature: s.plannerCfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	uiJSON, err := llm.ExtractJSON(result.Text)
	if err != nil {
		return nil, apperrors.NewParseError("ui composer", err)
	}
	var design models.UIDesign
	if err := json.Unmarshal([]byte(uiJSON), &design); err != nil {
		return nil, apperrors.NewParseError("ui composer", err)
	}

	screens := make([]models.AppScreen, 0, len(design.Screens))
	for _, sc := range design.Screens {
		componentName := sc.ComponentName
		if componentName == "" {
			componentName = pascalCase(sc.Name) + "Screen"
		}
		screens = append(screens, models.AppScreen{
			Name:          sc.Name,
			ComponentName: componentName,
			LayoutData:    sc.Layout,
		})
	}
	components := make([]models.AppComponent, 0, len(design.Components))
	for _, c := range design.Components {
		components = append(components, models.AppComponent{
			Name:        c.Name,
			Type:        string(c.Type),
			PropsSchema: c.PropsSchema,
		})
	}

	if err := s.screens.UpsertBatch(ctx, appID, screens); err != nil {
		return nil, err
	}
	if err := s.components.UpsertBatch(ctx, appID, components); err != nil {
		return nil, err
	}

	raw := json.RawMessage(uiJSON)
	if err := s.apps.UpdateUI(ctx, appID, raw, models.StatusDesigning, models.StatusCoding); err != nil {
		return nil, err
	}

	s.logger.Info("ui stage completed",
		zap.String("app_id", appID.String()),
		zap.Int("screens", len(screens)),
		zap.Int("components", len(components)))

	return raw, nil
}

// GenerateCode runs the final stage, advancing coding -> completed. Generated
// files are matched onto screen and component rows by conventional path;
// unmatched rows keep empty code, logged at Warn but not fatal.
func (s *PipelineService) GenerateCode(ctx context.Context, appID uuid.UUID) (json.RawMessage, error) {
	app, err := s.apps.Get(ctx, appID)
	if err != nil {
		return nil, err
	}
	if !app.Status.CanTransitionTo(models.StatusCompleted) {
		return nil, fmt.Errorf("code stage on %s app: %w", app.Status, apperrors.ErrInvalidTransition)
	}

	result, err := generateWithRetry(ctx, s.coder, llm.Request{
		System:      prompts.CodeSystem,
		Prompt:      prompts.BuildCodePrompt(string(app.PlanData), string(app.UIData)),
		MaxTokens:   s.coderCfg.MaxTokens,
		Temperature: s.coderCfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	codeJSON, err := llm.ExtractJSON(result.Text)
	if err != nil {
		return nil, apperrors.NewParseError("code generator", err)
	}
	var bundle models.CodeBundle
	if err := json.Unmarshal([]byte(codeJSON), &bundle); err != nil {
		return nil, apperrors.NewParseError("code generator", err)
	}

	if err := s.assignScreenCode(ctx, appID, bundle); err != nil {
		return nil, err
	}
	if err := s.assignComponentCode(ctx, appID, bundle); err != nil {
		return nil, err
	}

	raw := json.RawMessage(codeJSON)
	if err := s.apps.UpdateCode(ctx, appID, raw, models.StatusCoding, models.StatusCompleted); err != nil {
		return nil, err
	}

	s.logger.Info("code stage completed",
		zap.String("app_id", appID.String()),
		zap.Int("files", len(bundle)))

	return raw, nil
}

// Fail moves an app to the terminal error status after a handler-level
// failure. Completed apps are left alone.
func (s *PipelineService) Fail(ctx context.Context, appID uuid.UUID, cause error) {
	if err := s.apps.SetError(ctx, appID); err != nil {
		s.logger.Error("failed to mark app errored",
			zap.String("app_id", appID.String()),
			zap.Error(err))
		return
	}
	s.logger.Warn("app moved to error status",
		zap.String("app_id", appID.String()),
		zap.Error(cause))
}

func (s *PipelineService) assignScreenCode(ctx context.Context, appID uuid.UUID, bundle models.CodeBundle) error {
	screens, err := s.screens.ListByApp(ctx, appID)
	if err != nil {
		return err
	}
	for _, screen := range screens {
		path := fmt.Sprintf("screens/%s.tsx", screen.ComponentName)
		code, ok := bundle[path]
		if !ok {
			s.logger.Warn("no generated file for screen",
				zap.String("app_id", appID.String()),
				zap.String("screen", screen.Name),
				zap.String("expected_path", path))
		}
		if err := s.screens.SetCode(ctx, appID, screen.ComponentName, code); err != nil {
			return err
		}
	}
	return nil
}

func (s *PipelineService) assignComponentCode(ctx context.Context, appID uuid.UUID, bundle models.CodeBundle) error {
	components, err := s.components.ListByApp(ctx, appID)
	if err != nil {
		return err
	}
	for _, component := range components {
		path := fmt.Sprintf("components/%s.tsx", component.Name)
		code, ok := bundle[path]
		if !ok {
			// Models sometimes pluralize component file names; try the
			// singular form before giving up.
			alt := fmt.Sprintf("components/%s.tsx", inflection.Singular(component.Name))
			code, ok = bundle[alt]
		}
		if !ok {
			s.logger.Warn("no generated file for component",
				zap.String("app_id", appID.String()),
				zap.String("component", component.Name),
				zap.String("expected_path", path))
		}
		if err := s.components.SetCode(ctx, appID, component.Name, code); err != nil {
			return err
		}
	}
	return nil
}

// pascalCase collapses a free-form name into a PascalCase identifier.
func pascalCase(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		first, size := utf8.DecodeRuneInString(word)
		b.WriteString(strings.ToUpper(string(first)))
		b.WriteString(word[size:])
	}
	return b.String()
}
