package vocab

import (
	"fmt"
	"strings"
)

// Kind selects what the pipeline generates
type Kind string

const (
	KindWords          Kind = "words"
	KindPhrases        Kind = "phrases"
	KindEnglishPhrases Kind = "english_phrases"
)

// Kinds lists every supported generation kind
var Kinds = []Kind{KindWords, KindPhrases, KindEnglishPhrases}

// ParseKind maps a request value onto a Kind. An empty value means words.
func ParseKind(s string) (Kind, error) {
	if strings.TrimSpace(s) == "" {
		return KindWords, nil
	}
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown generation type: %s", s)
}

// SourceField is the field the kind starts from. Odia phrases are generated
// in Odia first; everything else starts from English.
func (k Kind) SourceField() Field {
	if k == KindPhrases {
		return FieldOdia
	}
	return FieldEnglish
}

// Field is a bit set over the three entry fields
type Field uint8

const (
	FieldEnglish Field = 1 << iota
	FieldOdia
	FieldRomanized

	AllFields = FieldEnglish | FieldOdia | FieldRomanized
)

func (f Field) String() string {
	var names []string
	if f&FieldEnglish != 0 {
		names = append(names, "english")
	}
	if f&FieldOdia != 0 {
		names = append(names, "odia")
	}
	if f&FieldRomanized != 0 {
		names = append(names, "romanized_odia")
	}
	return strings.Join(names, "+")
}

// Entry is one vocabulary item as stored in a session
type Entry struct {
	English       string `json:"english,omitempty"`
	Odia          string `json:"odia,omitempty"`
	RomanizedOdia string `json:"romanized_odia,omitempty"`
}

// Get returns the value of a single field
func (e Entry) Get(f Field) string {
	switch f {
	case FieldEnglish:
		return e.English
	case FieldOdia:
		return e.Odia
	case FieldRomanized:
		return e.RomanizedOdia
	}
	return ""
}

// Has reports whether every field in want is non-empty after trimming
func (e Entry) Has(want Field) bool {
	for _, f := range []Field{FieldEnglish, FieldOdia, FieldRomanized} {
		if want&f != 0 && strings.TrimSpace(e.Get(f)) == "" {
			return false
		}
	}
	return true
}

// Trimmed returns a copy with surrounding whitespace removed from every field
func (e Entry) Trimmed() Entry {
	return Entry{
		English:       strings.TrimSpace(e.English),
		Odia:          strings.TrimSpace(e.Odia),
		RomanizedOdia: strings.TrimSpace(e.RomanizedOdia),
	}
}

// Record is one element of a structured model response. Translation
// prompts answer with romanized_odia, romanization prompts with romanized.
type Record struct {
	English       string `json:"english"`
	Odia          string `json:"odia"`
	RomanizedOdia string `json:"romanized_odia"`
	Romanized     string `json:"romanized"`
}

// Entry converts the record into an entry
func (r Record) Entry() Entry {
	romanized := r.RomanizedOdia
	if strings.TrimSpace(romanized) == "" {
		romanized = r.Romanized
	}
	return Entry{
		English:       r.English,
		Odia:          r.Odia,
		RomanizedOdia: romanized,
	}.Trimmed()
}

// Entries converts records positionally
func Entries(records []Record) []Entry {
	out := make([]Entry, len(records))
	for i, r := range records {
		out[i] = r.Entry()
	}
	return out
}

// FromValues builds single-field entries, one per value
func FromValues(f Field, values []string) []Entry {
	out := make([]Entry, len(values))
	for i, v := range values {
		v = strings.TrimSpace(v)
		switch f {
		case FieldEnglish:
			out[i].English = v
		case FieldOdia:
			out[i].Odia = v
		case FieldRomanized:
			out[i].RomanizedOdia = v
		}
	}
	return out
}

// Values extracts one field from every entry, skipping empty values
func Values(entries []Entry, f Field) []string {
	var out []string
	for _, e := range entries {
		if v := strings.TrimSpace(e.Get(f)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
