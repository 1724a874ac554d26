// Package ai talks to hosted language models for the in-app assistant.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fabrictrade/backend/internal/infrastructure/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"
)

// ErrEmptyReply is returned when the model produced no text
var ErrEmptyReply = errors.New("ai: empty reply")

// OpenAIClient sends single-turn prompts through the OpenAI responses API
type OpenAIClient struct {
	client openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAIClient builds a client from config. extra options are appended last so tests can
// point the client at a local server.
func NewOpenAIClient(cfg config.AssistantConfig, logger *zap.Logger, extra ...option.RequestOption) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai: api key is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	opts = append(opts, extra...)

	model := cfg.Model
	if model == "" {
		model = string(shared.ChatModelGPT4oMini)
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  model,
		logger: logger,
	}, nil
}

// Reply sends instructions followed by the user's message and returns the model's text
func (c *OpenAIClient) Reply(ctx context.Context, instructions, message string) (string, error) {
	prompt := instructions + "\n\nCustomer question:\n" + message

	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
	})
	if err != nil {
		c.logger.Warn("Assistant request failed", zap.String("model", c.model), zap.Error(err))
		return "", fmt.Errorf("openai responses: %w", err)
	}

	text := strings.TrimSpace(resp.OutputText())
	if text == "" {
		return "", ErrEmptyReply
	}
	c.logger.Debug("Assistant replied",
		zap.String("model", c.model),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
	)
	return text, nil
}
