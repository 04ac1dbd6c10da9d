package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/shabda/internal/vocab"
)

func TestMergeOdiaSourceWithTranslations(t *testing.T) {
	source := vocab.FromValues(vocab.FieldOdia, []string{"ଧନ୍ୟବାଦ", "ନମସ୍କାର"})
	translations := vocab.Entries([]vocab.Record{{English: "thank you"}, {English: "hello"}})

	got, mismatch := Merge(vocab.FieldOdia|vocab.FieldEnglish, source, translations)

	assert.Nil(t, mismatch)
	assert.Equal(t, []vocab.Entry{
		{Odia: "ଧନ୍ୟବାଦ", English: "thank you"},
		{Odia: "ନମସ୍କାର", English: "hello"},
	}, got)
}

func TestMergeNeverExceedsShortestLayer(t *testing.T) {
	source := vocab.FromValues(vocab.FieldEnglish, []string{"a", "b", "c", "d"})
	translated := []vocab.Entry{{Odia: "ଅ"}, {Odia: "ବ"}, {Odia: "ଚ"}}
	romanized := []vocab.Entry{{RomanizedOdia: "a"}, {RomanizedOdia: "ba"}}

	got, mismatch := Merge(vocab.AllFields, source, translated, romanized)

	assert.LessOrEqual(t, len(got), 2)
	assert.Len(t, got, 2)
	require.NotNil(t, mismatch)
	assert.Equal(t, []int{4, 3, 2}, mismatch.Lengths)
	assert.Equal(t, 2, mismatch.Kept)
	assert.Equal(t, StateMerging, mismatch.State)
}

func TestMergeDropsIncompleteEntries(t *testing.T) {
	source := vocab.FromValues(vocab.FieldEnglish, []string{"hi", "book"})
	translated := []vocab.Entry{{Odia: ""}, {Odia: "ବହି", RomanizedOdia: "bahi"}}

	got, _ := Merge(vocab.AllFields, source, translated)

	assert.Equal(t, []vocab.Entry{{English: "book", Odia: "ବହି", RomanizedOdia: "bahi"}}, got)
}

func TestMergePrefersEarlierLayers(t *testing.T) {
	source := []vocab.Entry{{English: "eat"}}
	translated := []vocab.Entry{{English: "Eat ", Odia: "ଖାଇବା", RomanizedOdia: " "}}
	romanized := []vocab.Entry{{RomanizedOdia: "khaiba"}}

	got, _ := Merge(vocab.AllFields, source, translated, romanized)

	require.Len(t, got, 1)
	assert.Equal(t, vocab.Entry{English: "eat", Odia: "ଖାଇବା", RomanizedOdia: "khaiba"}, got[0])
}

func TestMergeWithoutLayers(t *testing.T) {
	got, mismatch := Merge(vocab.AllFields)
	assert.Empty(t, got)
	assert.Nil(t, mismatch)
}

func TestDedup(t *testing.T) {
	entries := []vocab.Entry{{English: "Eat"}, {English: "book"}, {English: "book"}, {English: "water"}}

	got := dedup(entries, vocab.FieldEnglish, []string{"eat", " WATER "})

	assert.Equal(t, []vocab.Entry{{English: "book"}}, got)
}
