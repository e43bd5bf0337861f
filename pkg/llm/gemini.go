package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// defaultGeminiTimeout bounds every Gemini call. This is the only hard
// deadline in the system; the SDK-backed vendors rely on default transport
// timeouts.
const defaultGeminiTimeout = 30 * time.Second

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient generates text via the generateContent endpoint using plain
// net/http. Used by the one-click page generator.
type GeminiClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewGeminiClient creates the Gemini gateway. A zero timeout falls back to
// the 30-second default.
func NewGeminiClient(apiKey, model string, timeout time.Duration, logger *zap.Logger) *GeminiClient {
	if timeout == 0 {
		timeout = defaultGeminiTimeout
	}
	return &GeminiClient{
		httpClient: &http.Client{},
		baseURL:    geminiBaseURL,
		apiKey:     apiKey,
		model:      model,
		timeout:    timeout,
		logger:     logger.Named("llm.gemini"),
	}
}

// SetBaseURL overrides the endpoint base, for tests.
func (c *GeminiClient) SetBaseURL(u string) {
	c.baseURL = u
}

// Vendor implements Generator.
func (c *GeminiClient) Vendor() string {
	return "gemini"
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
		Temperature     float64 `json:"temperature,omitempty"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate implements Generator. The call is aborted after the configured
// timeout; the caller sees a timeout-classified *Error.
func (c *GeminiClient) Generate(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	body.GenerationConfig.MaxOutputTokens = req.MaxTokens
	body.GenerationConfig.Temperature = req.Temperature

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Key goes in a header, not the URL, so it can never leak into logs.
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	c.logger.Debug("vendor request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(req.Prompt)))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("vendor request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, ClassifyError("gemini", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ClassifyError("gemini", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("vendor returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)))
		return nil, NewError("gemini", "request failed", resp.StatusCode, nil)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, NewError("gemini", "malformed response envelope", resp.StatusCode, err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, NewError("gemini", "no candidates in response", resp.StatusCode, nil)
	}

	c.logger.Info("vendor request completed",
		zap.Duration("elapsed", time.Since(start)))

	return &Result{
		Text:  parsed.Candidates[0].Content.Parts[0].Text,
		Model: c.model,
	}, nil
}

var _ Generator = (*GeminiClient)(nil)
