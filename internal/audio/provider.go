package audio

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio generates audio from text and saves it to the specified file
	GenerateAudio(ctx context.Context, text string, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// ErrSpeechDisabled is returned by every call when speech is turned off
var ErrSpeechDisabled = errors.New("speech synthesis is disabled")

// Config holds common configuration for audio providers
type Config struct {
	Provider     string // "openai" or "none"
	OutputFormat string // "mp3", "wav", "opus", "aac" or "flac"

	OpenAIKey         string
	BaseURL           string
	OpenAIModel       string // "tts-1", "tts-1-hd" or "gpt-4o-mini-tts"
	FallbackModel     string // tried when OpenAIModel fails, optional
	OpenAIVoice       string
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // voice instructions, gpt-4o-mini-tts only

	CacheDir    string
	EnableCache bool
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "openai",
		OutputFormat:      "mp3",
		OpenAIModel:       "gpt-4o-mini-tts",
		FallbackModel:     "tts-1",
		OpenAIVoice:       "alloy",
		OpenAISpeed:       1.0,
		OpenAIInstruction: "You are speaking Odia (ଓଡ଼ିଆ). Pronounce the Odia text with authentic Odia phonetics, not Hindi or Bengali. Speak slowly and clearly for language learners.",
	}
}

// NewProvider creates the appropriate audio provider based on configuration
func NewProvider(config *Config, logger *zap.Logger) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	switch config.Provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		primary, err := NewOpenAIProvider(config, logger)
		if err != nil {
			return nil, err
		}
		if config.FallbackModel == "" || config.FallbackModel == config.OpenAIModel {
			return primary, nil
		}

		fallbackConfig := *config
		fallbackConfig.OpenAIModel = config.FallbackModel
		fallback, err := NewOpenAIProvider(&fallbackConfig, logger)
		if err != nil {
			return nil, err
		}
		return NewProviderWithFallback(primary, fallback, logger), nil

	case "none", "":
		return DisabledProvider{}, nil

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	logger   *zap.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, outputFile)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidText) || ctx.Err() != nil {
		return err
	}

	p.logger.Warn("primary speech provider failed, falling back",
		zap.String("primary", p.primary.Name()),
		zap.String("fallback", p.fallback.Name()),
		zap.Error(err))

	return p.fallback.GenerateAudio(ctx, text, outputFile)
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}

// DisabledProvider is used when speech is turned off
type DisabledProvider struct{}

// GenerateAudio always fails with ErrSpeechDisabled
func (DisabledProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	return ErrSpeechDisabled
}

// Name returns the provider name
func (DisabledProvider) Name() string {
	return "none"
}

// IsAvailable always fails with ErrSpeechDisabled
func (DisabledProvider) IsAvailable() error {
	return ErrSpeechDisabled
}
