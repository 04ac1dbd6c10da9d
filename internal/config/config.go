package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"codeberg.org/snonux/shabda/internal/llm"
)

// EnvPrefix prefixes every environment override, e.g. SHABDA_LLM_PROVIDER
const EnvPrefix = "SHABDA"

// ConfigName is the config file name searched in the home and working directories
const ConfigName = ".shabda"

// Config is the typed application configuration
type Config struct {
	Models       ModelsConfig   `mapstructure:"models"`
	ModelConfigs []ModelParams  `mapstructure:"model_configs"`
	LLM          LLMConfig      `mapstructure:"llm"`
	Pipeline     PipelineConfig `mapstructure:"pipeline"`
	Storage      StorageConfig  `mapstructure:"storage"`
	Speech       SpeechConfig   `mapstructure:"speech"`
	Server       ServerConfig   `mapstructure:"server"`
	Log          LogConfig      `mapstructure:"log"`
}

// ModelsConfig maps logical names onto provider model ids
type ModelsConfig struct {
	WordGeneration   string `mapstructure:"word_generation"`
	PhraseGeneration string `mapstructure:"phrase_generation"`
	Translation      string `mapstructure:"translation"`
}

// Map returns the mapping keyed by logical name
func (m ModelsConfig) Map() map[string]string {
	return map[string]string{
		"word_generation":   m.WordGeneration,
		"phrase_generation": m.PhraseGeneration,
		"translation":       m.Translation,
	}
}

// ModelParams are the sampling parameters of one model id. Model ids are
// listed rather than used as keys because they may contain dots.
type ModelParams struct {
	Model      string `mapstructure:"model"`
	llm.Params `mapstructure:",squash"`
}

// LLMConfig configures the completion backend
type LLMConfig struct {
	Provider          string        `mapstructure:"provider"`
	OpenAIKey         string        `mapstructure:"openai_key"`
	GeminiKey         string        `mapstructure:"gemini_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Breaker           BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig configures the circuit breaker around the backend
type BreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PipelineConfig configures generation
type PipelineConfig struct {
	WordCount   int  `mapstructure:"word_count"`
	PhraseCount int  `mapstructure:"phrase_count"`
	StrictDedup bool `mapstructure:"strict_dedup"`
	MaxExisting int  `mapstructure:"max_existing"`
}

// StorageConfig selects the session backend
type StorageConfig struct {
	Backend      string `mapstructure:"backend"`
	Directory    string `mapstructure:"directory"`
	SQLitePath   string `mapstructure:"sqlite_path"`
	ClearOnStart bool   `mapstructure:"clear_on_start"`
}

// SpeechConfig configures text-to-speech
type SpeechConfig struct {
	Provider      string  `mapstructure:"provider"`
	Model         string  `mapstructure:"model"`
	FallbackModel string  `mapstructure:"fallback_model"`
	Voice         string  `mapstructure:"voice"`
	Speed         float64 `mapstructure:"speed"`
	Instruction   string  `mapstructure:"instruction"`
	Format        string  `mapstructure:"format"`
	Directory     string  `mapstructure:"directory"`
	Cache         bool    `mapstructure:"cache"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// DataDir is the default root of sessions, snapshots and audio
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shabda"
	}
	return filepath.Join(home, ".local", "state", "shabda")
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	data := DataDir()

	v.SetDefault("models.word_generation", "gpt-4o-mini")
	v.SetDefault("models.phrase_generation", "gpt-4o-mini")
	v.SetDefault("models.translation", "gpt-4o-mini")
	v.SetDefault("model_configs", []map[string]interface{}{
		{"model": "gpt-4o-mini", "temperature": 0.7, "max_tokens": 1000},
	})

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.timeout", llm.DefaultTimeout)
	v.SetDefault("llm.requests_per_minute", 0)
	v.SetDefault("llm.breaker.max_failures", 5)
	v.SetDefault("llm.breaker.timeout", 30*time.Second)

	v.SetDefault("pipeline.word_count", 5)
	v.SetDefault("pipeline.phrase_count", 10)
	v.SetDefault("pipeline.strict_dedup", false)
	v.SetDefault("pipeline.max_existing", 100)

	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.directory", data)
	v.SetDefault("storage.sqlite_path", filepath.Join(data, "shabda.db"))
	v.SetDefault("storage.clear_on_start", false)

	v.SetDefault("speech.provider", "openai")
	v.SetDefault("speech.model", "gpt-4o-mini-tts")
	v.SetDefault("speech.fallback_model", "tts-1")
	v.SetDefault("speech.voice", "alloy")
	v.SetDefault("speech.speed", 1.0)
	v.SetDefault("speech.format", "mp3")
	v.SetDefault("speech.directory", filepath.Join(data, "audio"))
	v.SetDefault("speech.cache", true)

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 3*time.Minute)
	v.SetDefault("server.idle_timeout", 60*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Init points v at cfgFile, or at .shabda.yaml in the home or working
// directory, and wires the environment. It reports the config file used;
// a missing default file is not an error.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(ConfigName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// the well-known variables win over the config file
	_ = v.BindEnv("llm.openai_key", EnvPrefix+"_LLM_OPENAI_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.gemini_key", EnvPrefix+"_LLM_GEMINI_KEY", "GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config: %w", err)
	}

	return v.ConfigFileUsed(), nil
}

// Load decodes v into a Config. PORT, when set, overrides the server port.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}

	return &cfg, nil
}

// Validate rejects configurations no service can run with
func (c *Config) Validate() error {
	var errs []error

	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIKey == "" {
			errs = append(errs, errors.New("OpenAI API key is required: set OPENAI_API_KEY or llm.openai_key"))
		}
	case "gemini":
		if c.LLM.GeminiKey == "" {
			errs = append(errs, errors.New("Gemini API key is required: set GEMINI_API_KEY or llm.gemini_key"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown llm provider: %q", c.LLM.Provider))
	}

	if c.Models.WordGeneration == "" {
		errs = append(errs, errors.New("models.word_generation is required"))
	}

	for i, p := range c.ModelConfigs {
		if p.Model == "" {
			errs = append(errs, fmt.Errorf("model_configs[%d]: model is required", i))
		}
	}

	switch c.Storage.Backend {
	case "file":
		if c.Storage.Directory == "" {
			errs = append(errs, errors.New("storage.directory is required"))
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend: %q", c.Storage.Backend))
	}

	switch c.Speech.Provider {
	case "none":
	case "openai":
		if c.LLM.OpenAIKey == "" && c.LLM.Provider != "openai" {
			errs = append(errs, errors.New("speech.provider openai needs an OpenAI API key"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown speech provider: %q", c.Speech.Provider))
	}

	if c.Pipeline.WordCount <= 0 || c.Pipeline.PhraseCount <= 0 {
		errs = append(errs, errors.New("pipeline counts must be positive"))
	}

	return errors.Join(errs...)
}

// ParamTable builds the per-model sampling parameters
func (c *Config) ParamTable() llm.ParamTable {
	table := make(llm.ParamTable, len(c.ModelConfigs))
	for _, p := range c.ModelConfigs {
		table[p.Model] = p.Params
	}
	return table
}

// LLMClient returns the completion client configuration
func (c *Config) LLMClient() llm.Config {
	return llm.Config{
		Provider:          c.LLM.Provider,
		OpenAIKey:         c.LLM.OpenAIKey,
		GeminiKey:         c.LLM.GeminiKey,
		BaseURL:           c.LLM.BaseURL,
		Params:            c.ParamTable(),
		Timeout:           c.LLM.Timeout,
		RequestsPerMinute: c.LLM.RequestsPerMinute,
		MaxFailures:       c.LLM.Breaker.MaxFailures,
		BreakerTimeout:    c.LLM.Breaker.Timeout,
	}
}
