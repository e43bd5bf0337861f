package llm

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/appforge-ai/appforge-engine/pkg/apperrors"
)

// OpenAIClient generates text via the chat completions endpoint. Used by the
// code generator stage and the snippet generator.
type OpenAIClient struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient creates the OpenAI gateway. The API key is checked here,
// at first use, rather than at process start.
func NewOpenAIClient(apiKey, model string, logger *zap.Logger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, apperrors.ErrMissingAPIKey
	}
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger.Named("llm.openai"),
	}, nil
}

// Vendor implements Generator.
func (c *OpenAIClient) Vendor() string {
	return "openai"
}

// Generate implements Generator.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (*Result, error) {
	c.logger.Debug("vendor request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(req.Prompt)))

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.System},
		{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	})
	if err != nil {
		c.logger.Error("vendor request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, ClassifyError("openai", err)
	}

	if len(resp.Choices) == 0 {
		return nil, NewError("openai", "no choices in response", 0, nil)
	}

	c.logger.Info("vendor request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{Text: resp.Choices[0].Message.Content, Model: c.model}, nil
}

var _ Generator = (*OpenAIClient)(nil)
