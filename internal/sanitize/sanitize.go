package sanitize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseError reports model output that no repair strategy could turn
// into a JSON array
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("response is not a JSON array: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var errNotArray = errors.New("top-level value is not an array")

// Strategy is one named repair step
type Strategy struct {
	Name  string
	Apply func(text string) string
}

// Strategies are applied in order, each on the output of the previous one
var Strategies = []Strategy{
	{Name: "trim", Apply: trim},
	{Name: "unwrap", Apply: unwrap},
	{Name: "quotes", Apply: quotes},
	{Name: "escapes", Apply: escapes},
	{Name: "brackets", Apply: brackets},
	{Name: "fragments", Apply: fragments},
}

// Clean returns text that parses as a JSON array. A valid array is only
// trimmed, so Clean(Clean(x)) == Clean(x).
func Clean(raw string) (string, error) {
	text, _, err := CleanWith(raw, Strategies)
	return text, err
}

// CleanWith is Clean with an explicit strategy list. It also returns the
// name of the strategy that produced parseable text, or "" when the input
// parsed as-is.
func CleanWith(raw string, strategies []Strategy) (string, string, error) {
	lastErr := parseArray(raw)
	if lastErr == nil {
		return strings.TrimSpace(raw), "", nil
	}

	text := raw
	for _, s := range strategies {
		text = s.Apply(text)
		if lastErr = parseArray(text); lastErr == nil {
			return strings.TrimSpace(text), s.Name, nil
		}
	}

	return "", "", &ParseError{Raw: raw, Err: lastErr}
}

// Valid reports whether text is a JSON array
func Valid(text string) bool {
	return parseArray(text) == nil
}

func parseArray(text string) error {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") {
		if trimmed == "" {
			return errors.New("empty response")
		}
		if json.Valid([]byte(trimmed)) {
			return errNotArray
		}
	}

	var items []json.RawMessage
	return json.Unmarshal([]byte(trimmed), &items)
}
