package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/shabda/internal/prompt"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-test",
		"object": "chat.completion",
		"model":  "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func newTestOpenAI(t *testing.T, handler http.HandlerFunc, params ParamTable) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1", Params: params}, nil)
	require.NoError(t, err)
	return client
}

var testMessages = []prompt.Message{
	{Role: prompt.RoleSystem, Content: "system"},
	{Role: prompt.RoleUser, Content: "user"},
}

func TestOpenAIClientComplete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	temp := float32(0.7)
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("  [\"eat\", \"book\"]\n"))
	}, ParamTable{"gpt-4o-mini": {Temperature: &temp, MaxTokens: 200}})

	text, err := client.Complete(context.Background(), "gpt-4o-mini", testMessages)
	require.NoError(t, err)

	assert.Equal(t, `["eat", "book"]`, text)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 0.001)
	assert.Equal(t, 200, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestOpenAIClientEmptyContent(t *testing.T) {
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse("   "))
	}, nil)

	_, err := client.Complete(context.Background(), "gpt-4o-mini", testMessages)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.True(t, errors.Is(err, ErrNoContent))
	assert.Equal(t, "openai", ue.Provider)
	assert.Equal(t, "gpt-4o-mini", ue.Model)
}

func TestOpenAIClientServerError(t *testing.T) {
	client := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}, nil)

	_, err := client.Complete(context.Background(), "gpt-4o-mini", testMessages)

	var ue *UpstreamError
	assert.True(t, errors.As(err, &ue))
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{}, nil)
	assert.Error(t, err)
}

func TestOpenAIClientIntegration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set, skipping integration test")
	}

	client, err := NewOpenAIClient(OpenAIConfig{APIKey: apiKey}, nil)
	require.NoError(t, err)

	msgs, err := prompt.Build(prompt.TaskWordGeneration, prompt.Request{Count: 3})
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), "gpt-4o-mini", msgs)
	require.NoError(t, err)
	assert.NotEmpty(t, text)
}
