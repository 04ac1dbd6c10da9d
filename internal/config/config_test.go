package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shabda.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 5, cfg.Pipeline.WordCount)
	assert.Equal(t, 10, cfg.Pipeline.PhraseCount)
	assert.Equal(t, 100, cfg.Pipeline.MaxExisting)
	assert.False(t, cfg.Pipeline.StrictDedup)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "gpt-4o-mini", cfg.Models.Translation)

	require.Len(t, cfg.ModelConfigs, 1)
	params := cfg.ParamTable().Lookup("gpt-4o-mini")
	require.NotNil(t, params.Temperature)
	assert.InDelta(t, 0.7, *params.Temperature, 1e-6)
	assert.Equal(t, 1000, params.MaxTokens)
}

func TestInitReadsFileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
models:
  word_generation: gpt-4.1-mini
  translation: gpt-4.1
model_configs:
  - model: gpt-4.1
    temperature: 0.2
    top_p: 0.9
llm:
  provider: openai
  openai_key: from-file
  timeout: 20s
pipeline:
  word_count: 8
storage:
  backend: sqlite
`)
	t.Setenv("SHABDA_PIPELINE_PHRASE_COUNT", "3")
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("PORT", "8080")

	v := viper.New()
	used, err := Init(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1-mini", cfg.Models.WordGeneration)
	assert.Equal(t, "from-env", cfg.LLM.OpenAIKey)
	assert.Equal(t, 20*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 8, cfg.Pipeline.WordCount)
	assert.Equal(t, 3, cfg.Pipeline.PhraseCount)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	params := cfg.ParamTable()["gpt-4.1"]
	require.NotNil(t, params.TopP)
	assert.InDelta(t, 0.9, *params.TopP, 1e-6)
	assert.Zero(t, params.MaxTokens)
}

func TestInitMissingExplicitFile(t *testing.T) {
	_, err := Init(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	require.NoError(t, err)
	cfg.LLM.OpenAIKey = "test-key"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing key", func(c *Config) { c.LLM.OpenAIKey = "" }, "OpenAI API key is required"},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "claude" }, "unknown llm provider"},
		{"gemini without key", func(c *Config) { c.LLM.Provider = "gemini" }, "Gemini API key is required"},
		{"gemini without speech key", func(c *Config) {
			c.LLM.Provider, c.LLM.GeminiKey, c.LLM.OpenAIKey = "gemini", "g", ""
		}, "speech.provider openai needs an OpenAI API key"},
		{"gemini with speech off", func(c *Config) {
			c.LLM.Provider, c.LLM.GeminiKey, c.LLM.OpenAIKey, c.Speech.Provider = "gemini", "g", "", "none"
		}, ""},
		{"missing model mapping", func(c *Config) { c.Models.WordGeneration = "" }, "models.word_generation is required"},
		{"unnamed model params", func(c *Config) { c.ModelConfigs = append(c.ModelConfigs, ModelParams{}) }, "model_configs[1]"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "azure" }, "unknown storage backend"},
		{"unknown speech", func(c *Config) { c.Speech.Provider = "espeak" }, "unknown speech provider"},
		{"zero count", func(c *Config) { c.Pipeline.WordCount = 0 }, "pipeline counts must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLLMClient(t *testing.T) {
	cfg := validConfig(t)
	cfg.LLM.RequestsPerMinute = 30

	client := cfg.LLMClient()
	assert.Equal(t, "openai", client.Provider)
	assert.Equal(t, "test-key", client.OpenAIKey)
	assert.Equal(t, 30, client.RequestsPerMinute)
	assert.Equal(t, 5, client.MaxFailures)
	assert.Contains(t, client.Params, "gpt-4o-mini")
}
