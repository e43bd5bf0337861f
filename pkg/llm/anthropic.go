package llm

import (
	"context"
	"time"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
)

// AnthropicClient generates text via the Anthropic messages endpoint. Used by
// the planner and UI composer stages and the component generator.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropicClient creates the Anthropic gateway. The API key is checked
// here, at first use, rather than at process start.
func NewAnthropicClient(apiKey, model string, logger *zap.Logger) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, apperrors.ErrMissingAPIKey
	}
	return &AnthropicClient{
		client: anthropic.NewClient(apiKey),
		model:  model,
		logger: logger.Named("llm.anthropic"),
	}, nil
}

// Vendor implements Generator.
func (c *AnthropicClient) Vendor() string {
	return "anthropic"
}

// Generate implements Generator.
func (c *AnthropicClient) Generate(ctx context.Context, req Request) (*Result, error) {
	c.logger.Debug("vendor request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(req.Prompt)))

	temperature := float32(req.Temperature)
	start := time.Now()

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.model),
		MaxTokens:   req.MaxTokens,
		System:      req.System,
		Temperature: &temperature,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(req.Prompt),
		},
	})
	if err != nil {
		c.logger.Error("vendor request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, ClassifyError("anthropic", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text = *block.Text
			break
		}
	}
	if text == "" {
		return nil, NewError("anthropic", "no text content in response", 0, nil)
	}

	c.logger.Info("vendor request completed",
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{Text: text, Model: c.model}, nil
}

var _ Generator = (*AnthropicClient)(nil)
