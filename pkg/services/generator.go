package services

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
	"github.com/appforge-ai/appforge-engine/pkg/config"
	"github.com/appforge-ai/appforge-engine/pkg/llm"
	"github.com/appforge-ai/appforge-engine/pkg/prompts"
	"github.com/appforge-ai/appforge-engine/pkg/ratelimit"
	"github.com/appforge-ai/appforge-engine/pkg/sanitize"
)

// GeneratorService implements the three single-shot generators. They hold no
// pipeline state: one prompt in, one artifact out.
//
// Only the page generator is rate limited and only the page generator
// sanitizes vendor output; the component and snippet generators return the
// model's text as-is because their output is shown in a code view, never
// rendered.
type GeneratorService struct {
	page      llm.Generator // Gemini
	component llm.Generator // Anthropic
	snippet   llm.Generator // OpenAI
	limiter   ratelimit.Limiter
	limits    config.LimitsConfig
	geminiCfg config.VendorConfig
	logger    *zap.Logger
}

// NewGeneratorService creates the single-shot generator service.
func NewGeneratorService(
	page, component, snippet llm.Generator,
	limiter ratelimit.Limiter,
	limits config.LimitsConfig,
	geminiCfg config.VendorConfig,
	logger *zap.Logger,
) *GeneratorService {
	return &GeneratorService{
		page:      page,
		component: component,
		snippet:   snippet,
		limiter:   limiter,
		limits:    limits,
		geminiCfg: geminiCfg,
		logger:    logger.Named("generator"),
	}
}

// GeneratePage produces one self-contained HTML document for the prompt.
// Input is validated before any vendor call; vendor output is scrubbed
// before it is returned.
func (s *GeneratorService) GeneratePage(ctx context.Context, clientKey, prompt string) (string, error) {
	if err := sanitize.ValidatePrompt(prompt, s.limits.MaxPromptLength); err != nil {
		return "", err
	}
	if err := s.limiter.Allow(ctx, clientKey); err != nil {
		return "", err
	}

	result, err := generateWithRetry(ctx, s.page, llm.Request{
		System:      prompts.PageSystem,
		Prompt:      prompts.BuildPagePrompt(prompt),
		MaxTokens:   s.geminiCfg.MaxTokens,
		Temperature: s.geminiCfg.Temperature,
	})
	if err != nil {
		return "", err
	}

	html := sanitize.CleanHTML(stripFences(result.Text))
	if strings.TrimSpace(html) == "" {
		return "", apperrors.NewParseError("page generator", errEmptyOutput)
	}

	s.logger.Info("page generated",
		zap.String("client_key", clientKey),
		zap.Int("html_len", len(html)))

	return html, nil
}

// GenerateComponent produces one component source file for the prompt.
func (s *GeneratorService) GenerateComponent(ctx context.Context, prompt string) (string, error) {
	if err := sanitize.ValidatePrompt(prompt, s.limits.MaxPromptLength); err != nil {
		return "", err
	}

	result, err := generateWithRetry(ctx, s.component, llm.Request{
		System:      prompts.ComponentSystem,
		Prompt:      prompts.BuildComponentPrompt(prompt),
		MaxTokens:   s.geminiCfg.MaxTokens,
		Temperature: s.geminiCfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	return stripFences(result.Text), nil
}

// GenerateSnippet produces a code snippet for the prompt. Length check only:
// snippet prompts legitimately contain code-like text the denylist would
// reject.
func (s *GeneratorService) GenerateSnippet(ctx context.Context, prompt string) (string, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", apperrors.NewValidationError("prompt", "must not be empty")
	}
	if len(trimmed) > s.limits.MaxPromptLength {
		return "", apperrors.NewValidationError("prompt", "exceeds maximum length")
	}

	result, err := generateWithRetry(ctx, s.snippet, llm.Request{
		System:      prompts.SnippetSystem,
		Prompt:      prompts.BuildSnippetPrompt(trimmed),
		MaxTokens:   s.geminiCfg.MaxTokens,
		Temperature: s.geminiCfg.Temperature,
	})
	if err != nil {
		return "", err
	}
	return stripFences(result.Text), nil
}

var errEmptyOutput = &emptyOutputError{}

type emptyOutputError struct{}

func (*emptyOutputError) Error() string { return "vendor returned empty output" }

var fencePattern = regexp.MustCompile("(?s)^\\s*```[a-zA-Z]*\\n(.*?)\\n?```\\s*$")

// stripFences unwraps output the model wrapped in a markdown code fence
// despite instructions.
func stripFences(s string) string {
	if m := fencePattern.FindStringSubmatch(s); len(m) == 2 {
		return m[1]
	}
	return strings.TrimSpace(s)
}
