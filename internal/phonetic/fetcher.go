package phonetic

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/shabda/internal/llm"
	"codeberg.org/snonux/shabda/internal/prompt"
	"codeberg.org/snonux/shabda/internal/validate"
)

// Fetcher handles fetching pronunciation guides for Odia text
type Fetcher struct {
	completer llm.Completer
	model     string
	logger    *zap.Logger
}

// NewFetcher creates a new pronunciation fetcher using model
func NewFetcher(completer llm.Completer, model string, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		completer: completer,
		model:     model,
		logger:    logger.Named("phonetic"),
	}
}

// Fetch returns a plain-text pronunciation guide for odia
func (f *Fetcher) Fetch(ctx context.Context, odia string) (string, error) {
	odia = validate.Normalize(odia)
	if !validate.IsOdia(odia) {
		return "", fmt.Errorf("not Odia text: %q", odia)
	}

	msgs, err := prompt.Build(prompt.TaskPronunciation, prompt.Request{Items: []string{odia}})
	if err != nil {
		return "", err
	}

	raw, err := f.completer.Complete(ctx, f.model, msgs)
	if err != nil {
		return "", fmt.Errorf("failed to fetch pronunciation: %w", err)
	}

	guide := strings.TrimSpace(raw)
	if guide == "" {
		return "", fmt.Errorf("failed to fetch pronunciation: %w", llm.ErrNoContent)
	}

	f.logger.Debug("pronunciation fetched", zap.String("odia", odia), zap.Int("length", len(guide)))
	return guide, nil
}
