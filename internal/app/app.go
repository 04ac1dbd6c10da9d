package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"codeberg.org/snonux/shabda/internal/audio"
	"codeberg.org/snonux/shabda/internal/config"
	"codeberg.org/snonux/shabda/internal/llm"
	"codeberg.org/snonux/shabda/internal/phonetic"
	"codeberg.org/snonux/shabda/internal/pipeline"
	"codeberg.org/snonux/shabda/internal/server"
	"codeberg.org/snonux/shabda/internal/session"
)

// App holds the wired services
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Completer llm.Completer
	Pipeline  *pipeline.Pipeline
	Sessions  *session.Manager
	Speaker   *audio.Speaker
	Phonetic  *phonetic.Fetcher

	store session.Store
}

// New validates cfg and builds every service
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	completer, err := llm.New(ctx, cfg.LLMClient(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	store, err := OpenStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	provider, err := audio.NewProvider(SpeechConfig(cfg), logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create speech provider: %w", err)
	}
	speaker, err := audio.NewSpeaker(provider, cfg.Speech.Directory, cfg.Speech.Format, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Completer: completer,
		Pipeline:  pipeline.New(completer, PipelineConfig(cfg), logger),
		Sessions:  session.NewManager(store, logger),
		Speaker:   speaker,
		Phonetic:  phonetic.NewFetcher(completer, cfg.Models.Translation, logger),
		store:     store,
	}, nil
}

// OpenStore opens the configured session backend
func OpenStore(cfg config.StorageConfig) (session.Store, error) {
	switch cfg.Backend {
	case "file":
		store, err := session.NewFileStore(cfg.Directory)
		if err != nil {
			return nil, fmt.Errorf("failed to open session directory: %w", err)
		}
		return store, nil
	case "sqlite":
		store, err := session.OpenSQLStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session database: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
}

// PipelineConfig maps the configuration onto pipeline settings
func PipelineConfig(cfg *config.Config) pipeline.Config {
	return pipeline.Config{
		Models: pipeline.Models{
			WordGeneration:   cfg.Models.WordGeneration,
			PhraseGeneration: cfg.Models.PhraseGeneration,
			Translation:      cfg.Models.Translation,
		},
		WordCount:   cfg.Pipeline.WordCount,
		PhraseCount: cfg.Pipeline.PhraseCount,
		StrictDedup: cfg.Pipeline.StrictDedup,
		MaxExisting: cfg.Pipeline.MaxExisting,
	}
}

// SpeechConfig maps the configuration onto the speech provider settings
func SpeechConfig(cfg *config.Config) *audio.Config {
	speech := audio.DefaultProviderConfig()
	speech.Provider = cfg.Speech.Provider
	speech.OutputFormat = cfg.Speech.Format
	speech.OpenAIKey = cfg.LLM.OpenAIKey
	speech.BaseURL = cfg.LLM.BaseURL
	if cfg.Speech.Model != "" {
		speech.OpenAIModel = cfg.Speech.Model
	}
	speech.FallbackModel = cfg.Speech.FallbackModel
	if cfg.Speech.Voice != "" {
		speech.OpenAIVoice = cfg.Speech.Voice
	}
	if cfg.Speech.Speed > 0 {
		speech.OpenAISpeed = cfg.Speech.Speed
	}
	if cfg.Speech.Instruction != "" {
		speech.OpenAIInstruction = cfg.Speech.Instruction
	}
	speech.EnableCache = cfg.Speech.Cache
	speech.CacheDir = filepath.Join(cfg.Speech.Directory, ".cache")
	return speech
}

// Server returns the HTTP server over the app's services
func (a *App) Server() *server.Server {
	return server.New(a.Pipeline, a.Sessions, a.Speaker, a.Logger)
}

// Serve runs the HTTP server until ctx is cancelled
func (a *App) Serve(ctx context.Context) error {
	if a.Config.Storage.ClearOnStart {
		if err := a.Sessions.Reset(ctx); err != nil {
			return err
		}
	}

	a.Logger.Info("starting server",
		zap.String("llm", a.Completer.Name()),
		zap.String("storage", a.store.Backend()),
		zap.Bool("speech", a.Speaker.Enabled()))

	return a.Server().ListenAndServe(ctx, server.Config{
		Addr:         a.Config.Server.Addr,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	})
}

// Close releases the session store
func (a *App) Close() error {
	return a.store.Close()
}
