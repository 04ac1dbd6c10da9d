package sanitize

import (
	"strings"
	"unicode"
)

var englishPunctuation = strings.NewReplacer(`"`, "", "?", "", "!", "", ".", "")

// English cleans an English-only item: quotes, question and exclamation
// marks, full stops and non-ASCII runes are dropped
func English(s string) string {
	s = englishPunctuation.Replace(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// EnglishAll cleans every item and drops the ones left empty
func EnglishAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if cleaned := English(item); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
