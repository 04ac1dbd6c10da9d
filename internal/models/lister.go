package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Catalog groups the available model ids by use
type Catalog struct {
	Chat []string
	TTS  []string
}

// Availability tells whether a configured model id is served
type Availability struct {
	Name      string // logical name from the configuration, e.g. "translation"
	Model     string
	Available bool
}

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister. baseURL may be empty.
func NewLister(apiKey, baseURL string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// List fetches the models and sorts them into a catalog
func (l *Lister) List(ctx context.Context) (*Catalog, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .shabda.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	catalog := &Catalog{}
	for _, model := range models.Models {
		id := model.ID
		switch {
		case strings.Contains(id, "tts"):
			catalog.TTS = append(catalog.TTS, id)
		case strings.Contains(id, "gpt") || strings.Contains(id, "chat") || strings.HasPrefix(id, "o"):
			catalog.Chat = append(catalog.Chat, id)
		}
	}

	sort.Strings(catalog.Chat)
	sort.Strings(catalog.TTS)

	return catalog, nil
}

// Has reports whether id is in the catalog
func (c *Catalog) Has(id string) bool {
	for _, group := range [][]string{c.Chat, c.TTS} {
		i := sort.SearchStrings(group, id)
		if i < len(group) && group[i] == id {
			return true
		}
	}
	return false
}

// Check marks which of the configured models are available. configured
// maps logical names onto model ids.
func (c *Catalog) Check(configured map[string]string) []Availability {
	names := make([]string, 0, len(configured))
	for name := range configured {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Availability, 0, len(names))
	for _, name := range names {
		id := configured[name]
		out = append(out, Availability{Name: name, Model: id, Available: c.Has(id)})
	}
	return out
}

// Print writes a human readable listing
func (c *Catalog) Print(w io.Writer, checks []Availability) {
	fmt.Fprintln(w, "Available OpenAI Models:")

	fmt.Fprintln(w, "\nText-to-Speech (TTS) Models:")
	printGroup(w, c.TTS, "  No TTS models found")

	fmt.Fprintln(w, "\nChat Models (generation and translation):")
	printGroup(w, c.Chat, "  No chat models found")

	if len(checks) == 0 {
		return
	}

	fmt.Fprintln(w, "\nConfigured Models:")
	for _, a := range checks {
		mark := "ok"
		if !a.Available {
			mark = "MISSING"
		}
		fmt.Fprintf(w, "  %-18s %-28s %s\n", a.Name, a.Model, mark)
	}
}

func printGroup(w io.Writer, ids []string, empty string) {
	if len(ids) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	for _, id := range ids {
		fmt.Fprintf(w, "  %s\n", id)
	}
}
