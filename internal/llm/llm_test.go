package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamTableLookup(t *testing.T) {
	temp := float32(0.5)
	table := ParamTable{"gpt-4o": {Temperature: &temp, MaxTokens: 100}}

	assert.Equal(t, 100, table.Lookup("gpt-4o").MaxTokens)
	assert.Equal(t, Params{}, table.Lookup("other"))
	assert.Equal(t, Params{}, ParamTable(nil).Lookup("gpt-4o"))
}

func TestUpstreamErrorWrapping(t *testing.T) {
	err := upstream("openai", "gpt-4o", ErrNoContent)

	var ue *UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Contains(t, err.Error(), "gpt-4o")
	assert.True(t, errors.Is(err, ErrNoContent))

	// already wrapped errors are kept as they are
	assert.Same(t, ue, upstream("gemini", "x", err).(*UpstreamError))
	assert.NoError(t, upstream("openai", "gpt-4o", nil))
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "llama"}, nil)
	assert.Error(t, err)
}

func TestNewWrapsBackendInGuard(t *testing.T) {
	c, err := New(context.Background(), Config{Provider: "openai", OpenAIKey: "k"}, nil)
	require.NoError(t, err)

	_, ok := c.(*Guard)
	assert.True(t, ok)
	assert.Equal(t, "openai", c.Name())
}
