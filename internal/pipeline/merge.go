package pipeline

import (
	"strings"

	"codeberg.org/snonux/shabda/internal/vocab"
)

var entryFields = []vocab.Field{vocab.FieldEnglish, vocab.FieldOdia, vocab.FieldRomanized}

// Merge aligns layers by position. Each field takes the first non-empty
// value in layer order, and an entry is kept only when every field in
// want is set. The result is never longer than the shortest layer.
func Merge(want vocab.Field, layers ...[]vocab.Entry) ([]vocab.Entry, *MismatchError) {
	if len(layers) == 0 {
		return nil, nil
	}

	n := len(layers[0])
	lengths := make([]int, len(layers))
	aligned := true
	for i, layer := range layers {
		lengths[i] = len(layer)
		if len(layer) != n {
			aligned = false
		}
		n = min(n, len(layer))
	}

	var mismatch *MismatchError
	if !aligned {
		mismatch = &MismatchError{State: StateMerging, Lengths: lengths, Kept: n}
	}

	out := make([]vocab.Entry, 0, n)
	for i := 0; i < n; i++ {
		var e vocab.Entry
		for _, f := range entryFields {
			set(&e, f, first(f, i, layers))
		}
		if e.Has(want) {
			out = append(out, e)
		}
	}

	return out, mismatch
}

func first(f vocab.Field, i int, layers [][]vocab.Entry) string {
	for _, layer := range layers {
		if v := strings.TrimSpace(layer[i].Get(f)); v != "" {
			return v
		}
	}
	return ""
}

func set(e *vocab.Entry, f vocab.Field, v string) {
	switch f {
	case vocab.FieldEnglish:
		e.English = v
	case vocab.FieldOdia:
		e.Odia = v
	case vocab.FieldRomanized:
		e.RomanizedOdia = v
	}
}

// dedup drops entries whose source field matches an existing item,
// ignoring case, and repeats within entries
func dedup(entries []vocab.Entry, field vocab.Field, existing []string) []vocab.Entry {
	seen := make(map[string]bool, len(existing)+len(entries))
	for _, v := range existing {
		seen[strings.ToLower(strings.TrimSpace(v))] = true
	}

	var out []vocab.Entry
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Get(field)))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
