package validate

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"codeberg.org/snonux/shabda/internal/vocab"
)

// OdiaBlock is the Odia Unicode block, U+0B00 to U+0B7F
var OdiaBlock = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0B00, Hi: 0x0B7F, Stride: 1}},
}

// EmptyResultError means parsing worked but no item passed validation
type EmptyResultError struct {
	Check string // which check filtered everything out
	Total int    // number of items that were checked
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no valid items after %s check (%d checked)", e.Check, e.Total)
}

// HasScript reports whether text has at least one rune from table
func HasScript(text string, table *unicode.RangeTable) bool {
	for _, r := range text {
		if unicode.Is(table, r) {
			return true
		}
	}
	return false
}

// IsOdia reports whether text contains Odia script
func IsOdia(text string) bool {
	return HasScript(text, OdiaBlock)
}

// Normalize trims text and puts it in Unicode NFC form
func Normalize(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}

// NormalizeEntry normalizes every field of an entry
func NormalizeEntry(e vocab.Entry) vocab.Entry {
	return vocab.Entry{
		English:       Normalize(e.English),
		Odia:          Normalize(e.Odia),
		RomanizedOdia: Normalize(e.RomanizedOdia),
	}
}

// Script returns the normalized items that contain a rune from table
func Script(items []string, table *unicode.RangeTable) ([]string, error) {
	var out []string
	for _, item := range items {
		if item = Normalize(item); item != "" && HasScript(item, table) {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil, &EmptyResultError{Check: "script", Total: len(items)}
	}
	return out, nil
}

// Records converts records into entries, keeping their positions, and
// fails when not a single record carries every field in want
func Records(records []vocab.Record, want vocab.Field) ([]vocab.Entry, error) {
	entries := make([]vocab.Entry, len(records))
	valid := 0
	for i, r := range records {
		entries[i] = NormalizeEntry(r.Entry())
		if entries[i].Has(want) {
			valid++
		}
	}
	if valid == 0 {
		return nil, &EmptyResultError{Check: want.String() + " fields", Total: len(records)}
	}
	return entries, nil
}

// Entries returns the entries that carry every field in want. When want
// includes the Odia field, it must be written in Odia script.
func Entries(entries []vocab.Entry, want vocab.Field) ([]vocab.Entry, error) {
	var out []vocab.Entry
	for _, e := range entries {
		e = NormalizeEntry(e)
		if !e.Has(want) {
			continue
		}
		if want&vocab.FieldOdia != 0 && !IsOdia(e.Odia) {
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, &EmptyResultError{Check: want.String() + " fields", Total: len(entries)}
	}
	return out, nil
}

// Text returns the trimmed, non-empty items
func Text(items []string) ([]string, error) {
	var out []string
	for _, item := range items {
		if item = Normalize(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil, &EmptyResultError{Check: "text", Total: len(items)}
	}
	return out, nil
}
