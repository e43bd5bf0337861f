package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
	"github.com/appforge-ai/appforge-engine/pkg/config"
	"github.com/appforge-ai/appforge-engine/pkg/llm"
)

type generatorFixture struct {
	svc       *GeneratorService
	page      *llm.MockGenerator
	component *llm.MockGenerator
	snippet   *llm.MockGenerator
	limiter   *mockLimiter
}

func newGeneratorFixture() *generatorFixture {
	f := &generatorFixture{
		page:      llm.NewMockGenerator(),
		component: llm.NewMockGenerator(),
		snippet:   llm.NewMockGenerator(),
		limiter:   &mockLimiter{},
	}
	limits := config.LimitsConfig{MaxPromptLength: 500, RateWindowSecs: 60, RateCeiling: 10}
	f.svc = NewGeneratorService(f.page, f.component, f.snippet, f.limiter, limits,
		config.VendorConfig{Model: "test-model", MaxTokens: 8192}, zap.NewNop())
	return f
}

func TestGeneratePage_Success(t *testing.T) {
	f := newGeneratorFixture()
	f.page.GenerateFunc = func(ctx context.Context, req llm.Request) (*llm.Result, error) {
		return &llm.Result{Text: "```html\n<html><body><h1>Bakery</h1></body></html>\n```"}, nil
	}

	html, err := f.svc.GeneratePage(context.Background(), "1.2.3.4", "landing page for a bakery")
	require.NoError(t, err)
	assert.Equal(t, "<html><body><h1>Bakery</h1></body></html>", html)
	assert.Equal(t, []string{"1.2.3.4"}, f.limiter.calls)
}

func TestGeneratePage_SanitizesVendorOutput(t *testing.T) {
	f := newGeneratorFixture()
	f.page.GenerateFunc = func(ctx context.Context, req llm.Request) (*llm.Result, error) {
		return &llm.Result{Text: `<html><body><script>alert(1)</script><p onclick="x()">hi</p></body></html>`}, nil
	}

	html, err := f.svc.GeneratePage(context.Background(), "1.2.3.4", "landing page")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "onclick")
	assert.Contains(t, html, "hi")
}

func TestGeneratePage_InvalidPromptSkipsVendor(t *testing.T) {
	f := newGeneratorFixture()

	_, err := f.svc.GeneratePage(context.Background(), "1.2.3.4", "  ")
	require.Error(t, err)
	var valErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &valErr)

	_, err = f.svc.GeneratePage(context.Background(), "1.2.3.4", strings.Repeat("a", 501))
	assert.ErrorAs(t, err, &valErr)

	_, err = f.svc.GeneratePage(context.Background(), "1.2.3.4", `page with <script>alert(1)</script>`)
	assert.ErrorAs(t, err, &valErr)

	assert.Equal(t, 0, f.page.GenerateCalls)
	assert.Empty(t, f.limiter.calls, "rejected prompts must not consume rate budget")
}

func TestGeneratePage_RateLimitedSkipsVendor(t *testing.T) {
	f := newGeneratorFixture()
	f.limiter.allowErr = apperrors.ErrRateLimited

	_, err := f.svc.GeneratePage(context.Background(), "1.2.3.4", "landing page")
	assert.ErrorIs(t, err, apperrors.ErrRateLimited)
	assert.Equal(t, 0, f.page.GenerateCalls)
}

func TestGeneratePage_EmptyVendorOutput(t *testing.T) {
	f := newGeneratorFixture()
	f.page.GenerateFunc = func(ctx context.Context, req llm.Request) (*llm.Result, error) {
		return &llm.Result{Text: "<script>only payload</script>"}, nil
	}

	_, err := f.svc.GeneratePage(context.Background(), "1.2.3.4", "landing page")
	require.Error(t, err)
	var parseErr *apperrors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestGenerateComponent_NotRateLimited(t *testing.T) {
	f := newGeneratorFixture()
	f.component.GenerateFunc = func(ctx context.Context, req llm.Request) (*llm.Result, error) {
		return &llm.Result{Text: "export function Button() {}"}, nil
	}

	code, err := f.svc.GenerateComponent(context.Background(), "a primary button")
	require.NoError(t, err)
	assert.Equal(t, "export function Button() {}", code)
	assert.Empty(t, f.limiter.calls)
}

func TestGenerateComponent_LeavesCodePatternsIntact(t *testing.T) {
	f := newGeneratorFixture()
	f.component.GenerateFunc = func(ctx context.Context, req llm.Request) (*llm.Result, error) {
		return &llm.Result{Text: `<button onClick={handle}>Go</button>`}, nil
	}

	code, err := f.svc.GenerateComponent(context.Background(), "a go button")
	require.NoError(t, err)
	assert.Contains(t, code, "onClick={handle}")
}

func TestGenerateSnippet_AllowsCodeLikePrompts(t *testing.T) {
	f := newGeneratorFixture()
	f.snippet.GenerateFunc = func(ctx context.Context, req llm.Request) (*llm.Result, error) {
		return &llm.Result{Text: "const x = eval(input);"}, nil
	}

	// This prompt would trip the denylist, but snippet prompts legitimately
	// describe code.
	code, err := f.svc.GenerateSnippet(context.Background(), "explain eval( in javascript: when is it safe")
	require.NoError(t, err)
	assert.NotEmpty(t, code)
}

func TestGenerateSnippet_LengthStillEnforced(t *testing.T) {
	f := newGeneratorFixture()

	_, err := f.svc.GenerateSnippet(context.Background(), "")
	require.Error(t, err)

	_, err = f.svc.GenerateSnippet(context.Background(), strings.Repeat("x", 501))
	require.Error(t, err)
	assert.Equal(t, 0, f.snippet.GenerateCalls)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "<html></html>", stripFences("```html\n<html></html>\n```"))
	assert.Equal(t, "plain text", stripFences("  plain text  "))
	assert.Equal(t, "a\n```inner```\nb", stripFences("```\na\n```inner```\nb\n```"))
}
