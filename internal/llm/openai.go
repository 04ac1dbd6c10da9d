package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"codeberg.org/snonux/shabda/internal/prompt"
)

// OpenAIConfig configures the OpenAI chat backend
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // optional, for compatible endpoints
	Params  ParamTable
}

// OpenAIClient completes chats with the OpenAI API
type OpenAIClient struct {
	client *openai.Client
	params ParamTable
	logger *zap.Logger
}

// NewOpenAIClient creates a new OpenAI chat client
func NewOpenAIClient(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		params: cfg.Params,
		logger: logger.Named("openai"),
	}, nil
}

// Name returns the provider name
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Complete sends the messages with the parameters configured for model
func (c *OpenAIClient) Complete(ctx context.Context, model string, msgs []prompt.Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(msgs)),
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    openAIRole(m.Role),
			Content: m.Content,
		})
	}

	p := c.params.Lookup(model)
	if p.Temperature != nil {
		req.Temperature = *p.Temperature
	}
	if p.TopP != nil {
		req.TopP = *p.TopP
	}
	req.MaxTokens = p.MaxTokens

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", upstream(c.Name(), model, err)
	}

	if len(resp.Choices) == 0 {
		return "", upstream(c.Name(), model, ErrNoContent)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", upstream(c.Name(), model, ErrNoContent)
	}

	c.logger.Debug("completion received",
		zap.String("model", model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("raw", content))

	return content, nil
}

func openAIRole(r prompt.Role) string {
	if r == prompt.RoleSystem {
		return openai.ChatMessageRoleSystem
	}
	return openai.ChatMessageRoleUser
}
