package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"codeberg.org/snonux/shabda/internal/prompt"
)

// GeminiConfig configures the Gemini backend
type GeminiConfig struct {
	APIKey string
	Params ParamTable
}

// GeminiClient completes chats with the Gemini API
type GeminiClient struct {
	client *genai.Client
	params ParamTable
	logger *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		params: cfg.Params,
		logger: logger.Named("gemini"),
	}, nil
}

// Name returns the provider name
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Complete sends the messages with the parameters configured for model.
// System messages become the system instruction.
func (c *GeminiClient) Complete(ctx context.Context, model string, msgs []prompt.Message) (string, error) {
	contents, config := geminiRequest(msgs, c.params.Lookup(model))

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", upstream(c.Name(), model, err)
	}

	content := strings.TrimSpace(resp.Text())
	if content == "" {
		return "", upstream(c.Name(), model, ErrNoContent)
	}

	c.logger.Debug("completion received", zap.String("model", model), zap.String("raw", content))
	return content, nil
}

func geminiRequest(msgs []prompt.Message, p Params) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{
		Temperature: p.Temperature,
		TopP:        p.TopP,
	}
	if p.MaxTokens > 0 {
		config.MaxOutputTokens = int32(p.MaxTokens)
	}

	var system []string
	var contents []*genai.Content
	for _, m := range msgs {
		if m.Role == prompt.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
	}

	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	return contents, config
}
