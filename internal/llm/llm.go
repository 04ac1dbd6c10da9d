package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/shabda/internal/prompt"
)

// Completer sends a message list to a model and returns the raw text
type Completer interface {
	Complete(ctx context.Context, model string, msgs []prompt.Message) (string, error)

	// Name returns the provider name
	Name() string
}

// ErrNoContent is wrapped by UpstreamError when a call returns nothing usable
var ErrNoContent = errors.New("completion returned no content")

// UpstreamError is a failed, timed out or empty completion call
type UpstreamError struct {
	Provider string
	Model    string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s completion with model %s failed: %v", e.Provider, e.Model, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func upstream(provider, model string, err error) error {
	if err == nil {
		return nil
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &UpstreamError{Provider: provider, Model: model, Err: err}
}

// Params are the per-model call parameters
type Params struct {
	Temperature *float32 `mapstructure:"temperature" json:"temperature,omitempty"`
	MaxTokens   int      `mapstructure:"max_tokens" json:"max_tokens,omitempty"`
	TopP        *float32 `mapstructure:"top_p" json:"top_p,omitempty"`
}

// ParamTable maps a provider model id to its call parameters
type ParamTable map[string]Params

// Lookup returns the parameters for a model, or zero Params
func (t ParamTable) Lookup(model string) Params {
	if t == nil {
		return Params{}
	}
	return t[model]
}

// Config selects and configures a completion backend
type Config struct {
	Provider          string // "openai" or "gemini"
	OpenAIKey         string
	GeminiKey         string
	BaseURL           string
	Params            ParamTable
	Timeout           time.Duration
	RequestsPerMinute int
	MaxFailures       int
	BreakerTimeout    time.Duration
}

// New builds the configured backend wrapped in a Guard
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Completer, error) {
	var (
		backend Completer
		err     error
	)

	switch cfg.Provider {
	case "", "openai":
		backend, err = NewOpenAIClient(OpenAIConfig{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.BaseURL,
			Params:  cfg.Params,
		}, logger)
	case "gemini":
		backend, err = NewGeminiClient(ctx, GeminiConfig{
			APIKey: cfg.GeminiKey,
			Params: cfg.Params,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	return NewGuard(backend, GuardConfig{
		Timeout:           cfg.Timeout,
		RequestsPerMinute: cfg.RequestsPerMinute,
		MaxFailures:       cfg.MaxFailures,
		BreakerTimeout:    cfg.BreakerTimeout,
	}, logger), nil
}
