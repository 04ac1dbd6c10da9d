package batch

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/shabda/internal/validate"
	"codeberg.org/snonux/shabda/internal/vocab"
)

// WordEntry represents an English item with an optional Odia translation
type WordEntry struct {
	English string
	Odia    string
	// NeedsTranslation indicates if translation from English to Odia is needed
	NeedsTranslation bool
}

// ReadBatchFile reads items from a file and returns WordEntry slice
// Supports formats:
// - English only: "water" (will be translated to Odia)
// - Several on one line: "water, book, house"
// - With translation: "water = ପାଣି" (no translation needed)
// Blank lines and lines starting with # are skipped. Repeated English
// items are kept once, first occurrence wins.
func ReadBatchFile(filename string) ([]WordEntry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	return parse(content)
}

func parse(content []byte) ([]WordEntry, error) {
	var entries []WordEntry
	seen := make(map[string]bool)

	add := func(e WordEntry) {
		key := strings.ToLower(e.English)
		if e.English == "" || seen[key] {
			return
		}
		seen[key] = true
		entries = append(entries, e)
	}

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if english, odia, ok := strings.Cut(line, "="); ok {
			english, odia = strings.TrimSpace(english), validate.Normalize(odia)
			switch {
			case english == "":
				return nil, fmt.Errorf("line %d: missing English text", n)
			case odia == "":
				add(WordEntry{English: english, NeedsTranslation: true})
			case !validate.IsOdia(odia):
				return nil, fmt.Errorf("line %d: %q is not Odia text", n, odia)
			default:
				add(WordEntry{English: english, Odia: odia})
			}
			continue
		}

		for _, item := range strings.Split(line, ",") {
			add(WordEntry{English: strings.TrimSpace(item), NeedsTranslation: true})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return entries, nil
}

// Pending returns the English items that still need a translation
func Pending(entries []WordEntry) []string {
	var out []string
	for _, e := range entries {
		if e.NeedsTranslation {
			out = append(out, e.English)
		}
	}
	return out
}

// Known returns the entries that came with a translation. Romanization is
// left empty for the pipeline to fill.
func Known(entries []WordEntry) []vocab.Entry {
	var out []vocab.Entry
	for _, e := range entries {
		if !e.NeedsTranslation {
			out = append(out, vocab.Entry{English: e.English, Odia: e.Odia})
		}
	}
	return out
}
