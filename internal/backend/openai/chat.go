// internal/backend/openai/chat.go
package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"copyflow/internal/common/errors"
	"copyflow/internal/common/logger"
	"copyflow/internal/generation"
)

// ChatConfig carries the provider settings for the chat-completion tier.
type ChatConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ChatClient is the second generation tier. It runs a single chat completion
// with the same prompt the assistant tier used, prefixed by the shared system
// prompt, and returns the raw completion text.
type ChatClient struct {
	client openai.Client
	model  shared.ChatModel
	logger logger.Logger
}

func NewChatClient(config ChatConfig, log logger.Logger) *ChatClient {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(config.BaseURL, "/")+"/v1"))
	}

	model := shared.ChatModel(config.Model)
	if model == "" {
		model = shared.ChatModelGPT4o
	}

	return &ChatClient{
		client: openai.NewClient(opts...),
		model:  model,
		logger: log.With(map[string]interface{}{
			"backend": "chat",
		}),
	}
}

// Complete runs one chat completion attempt.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(generation.SystemPrompt),
			openai.UserMessage(prompt),
		},
		Model:       c.model,
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", errors.NewChatCompletionFailedError(err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.NewChatCompletionFailedError(fmt.Errorf("completion returned no choices"))
	}
	return completion.Choices[0].Message.Content, nil
}
