package prompt

import (
	"fmt"
	"strings"
)

// Role is the author of a chat message
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single chat message
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Task selects a prompt template
type Task int

const (
	TaskWordGeneration Task = iota
	TaskPhraseGeneration
	TaskOdiaPhraseGeneration
	TaskOdiaTranslation
	TaskPhraseTranslation
	TaskEnglishTranslation
	TaskRomanization
	TaskPronunciation
)

var taskNames = map[Task]string{
	TaskWordGeneration:       "word_generation",
	TaskPhraseGeneration:     "phrase_generation",
	TaskOdiaPhraseGeneration: "odia_phrase_generation",
	TaskOdiaTranslation:      "odia_translation",
	TaskPhraseTranslation:    "phrase_translation",
	TaskEnglishTranslation:   "english_translation",
	TaskRomanization:         "romanization",
	TaskPronunciation:        "pronunciation",
}

func (t Task) String() string {
	if name, ok := taskNames[t]; ok {
		return name
	}
	return fmt.Sprintf("task(%d)", int(t))
}

// DefaultMaxExisting caps how many existing items are embedded in a prompt
const DefaultMaxExisting = 100

// Request carries the variable parts of a prompt
type Request struct {
	// Existing items the model is asked not to repeat
	Existing []string
	// Count is the number of items to generate
	Count int
	// Items are the inputs of translation and romanization tasks
	Items []string
	// MaxExisting overrides DefaultMaxExisting when positive
	MaxExisting int
}

type template struct {
	system       string
	defaultCount int
	needsItems   bool
	user         func(req Request) string
}

// Build returns the [system, user] message pair for a task
func Build(task Task, req Request) ([]Message, error) {
	tmpl, ok := templates[task]
	if !ok {
		return nil, fmt.Errorf("unknown prompt task: %s", task)
	}

	if tmpl.needsItems && len(nonEmpty(req.Items)) == 0 {
		return nil, fmt.Errorf("%s prompt needs at least one item", task)
	}
	req.Items = nonEmpty(req.Items)

	if req.Count <= 0 {
		req.Count = tmpl.defaultCount
	}
	req.Existing = recent(nonEmpty(req.Existing), req.MaxExisting)

	return []Message{
		{Role: RoleSystem, Content: tmpl.system},
		{Role: RoleUser, Content: tmpl.user(req)},
	}, nil
}

// recent keeps the last max values
func recent(values []string, max int) []string {
	if max <= 0 {
		max = DefaultMaxExisting
	}
	if len(values) > max {
		return values[len(values)-max:]
	}
	return values
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// exclusion renders the "do not repeat" clause, or nothing
func exclusion(existing []string) string {
	if len(existing) == 0 {
		return ""
	}
	return fmt.Sprintf("\nDo NOT include any of these already known items: %s", strings.Join(existing, ", "))
}

// numbered renders items one per line so the model keeps their order
func numbered(items []string) string {
	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, item)
	}
	return sb.String()
}
