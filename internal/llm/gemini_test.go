package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/shabda/internal/prompt"
)

func TestGeminiRequest(t *testing.T) {
	temp := float32(0.2)
	msgs := []prompt.Message{
		{Role: prompt.RoleSystem, Content: "be terse"},
		{Role: prompt.RoleUser, Content: "translate"},
	}

	contents, config := geminiRequest(msgs, Params{Temperature: &temp, MaxTokens: 300})

	require.Len(t, contents, 1)
	require.Len(t, contents[0].Parts, 1)
	assert.Equal(t, "translate", contents[0].Parts[0].Text)
	assert.Equal(t, "user", contents[0].Role)

	require.NotNil(t, config.SystemInstruction)
	assert.Equal(t, "be terse", config.SystemInstruction.Parts[0].Text)
	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.2, *config.Temperature, 0.001)
	assert.Equal(t, int32(300), config.MaxOutputTokens)
	assert.Nil(t, config.TopP)
}

func TestGeminiRequestWithoutSystem(t *testing.T) {
	contents, config := geminiRequest([]prompt.Message{{Role: prompt.RoleUser, Content: "hi"}}, Params{})

	assert.Len(t, contents, 1)
	assert.Nil(t, config.SystemInstruction)
	assert.Zero(t, config.MaxOutputTokens)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), GeminiConfig{}, nil)
	assert.Error(t, err)
}
