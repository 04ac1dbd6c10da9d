package sanitize

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeStrings(t *testing.T, text string) []string {
	t.Helper()
	var out []string
	require.NoError(t, json.Unmarshal([]byte(text), &out), "text: %s", text)
	return out
}

func TestCleanLeavesValidArrays(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strings", `["eat","book"]`, `["eat","book"]`},
		{"records", `[{"english":"water","odia":"ପାଣି","romanized_odia":"paani"}]`, `[{"english":"water","odia":"ପାଣି","romanized_odia":"paani"}]`},
		{"surrounding whitespace", "  \n[\"a\", \"b\"]\n ", `["a", "b"]`},
		{"empty array", `[]`, `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Clean(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		`["a","b"]`,
		`["eat", "book", "water"`,
		"```json\n[\"a\"]\n```",
		`{"words": ["a", "b"]}`,
		`[“one”, “two”]`,
		`Sure! Here you go: ["a", "b",] Enjoy.`,
		`[{"english":"a","odia":"ଅ"},{"english":"b"`,
		`["hello "world"", "x"]`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once, err := Clean(input)
			require.NoError(t, err)
			twice, err := Clean(once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestCleanRepairsTruncatedArrays(t *testing.T) {
	t.Run("missing closing bracket", func(t *testing.T) {
		got, err := Clean(`["eat", "book", "water"`)
		require.NoError(t, err)
		assert.Equal(t, []string{"eat", "book", "water"}, decodeStrings(t, got))
	})

	t.Run("cut inside a string", func(t *testing.T) {
		got, err := Clean(`["eat", "book", "wat`)
		require.NoError(t, err)
		assert.Equal(t, []string{"eat", "book"}, decodeStrings(t, got))
	})

	t.Run("cut inside a record", func(t *testing.T) {
		got, err := Clean(`[{"english":"a","odia":"ଅ"},{"english":"b","od`)
		require.NoError(t, err)

		var records []map[string]string
		require.NoError(t, json.Unmarshal([]byte(got), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "a", records[0]["english"])
	})
}

func TestCleanStrategies(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []string
		strategy string
	}{
		{"code fence", "```json\n[\"a\", \"b\"]\n```", []string{"a", "b"}, "trim"},
		{"wrapped object", `{"words": ["a", "b"]}`, []string{"a", "b"}, "unwrap"},
		{"smart quotes", `[“a”, “b”]`, []string{"a", "b"}, "quotes"},
		{"stray backslash", `["it\'s", "ok"]`, []string{"it's", "ok"}, "escapes"},
		{"raw newline in string", "[\"a\nb\"]", []string{"a b"}, "escapes"},
		{"leading chatter", `Here are the words: ["a", "b"]`, []string{"a", "b"}, "brackets"},
		{"brackets in chatter", `Here are [5] words: ["a", "b"]`, []string{"a", "b"}, "brackets"},
		{"brackets in chatter, trailing comma", `Sure [ok]: ["a", "b",] done`, []string{"a", "b"}, "brackets"},
		{"trailing comma", `["a", "b",]`, []string{"a", "b"}, "brackets"},
		{"unescaped quotes", `["hello "world"", "x"]`, []string{"hello world", "x"}, "fragments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, strategy, err := CleanWith(tt.input, Strategies)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decodeStrings(t, got))
			assert.Equal(t, tt.strategy, strategy)
		})
	}
}

func TestCleanSalvagesObjects(t *testing.T) {
	got, err := Clean(`[{"english":"a","odia":"ଅ"} {"english":"b","odia":"ବ"} oops]`)
	require.NoError(t, err)

	var records []map[string]string
	require.NoError(t, json.Unmarshal([]byte(got), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[1]["english"])
}

func TestCleanWrapsSingleRecord(t *testing.T) {
	got, err := Clean(`{"english":"a","odia":"ଅ"}`)
	require.NoError(t, err)
	assert.Equal(t, `[{"english":"a","odia":"ଅ"}]`, got)
}

func TestCleanFailsWithParseError(t *testing.T) {
	for _, input := range []string{"", "I cannot help with that.", `{"a": [1], "b": [2]}`} {
		t.Run(input, func(t *testing.T) {
			_, err := Clean(input)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, input, parseErr.Raw)
			assert.Error(t, parseErr.Unwrap())
		})
	}
}

func TestLastCompleteElement(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{`["a"`, 4},
		{`["a", "b`, 4},
		{`["a]", "b`, 5},
		{`[{"x":"}"}, {"y"`, 10},
		{`[`, -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lastCompleteElement(tt.text), tt.text)
	}
}

func TestEnglish(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"Good morning!"`, "Good morning"},
		{"How are you?", "How are you"},
		{"café  au   lait.", "caf au lait"},
		{"ନମସ୍କାର", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, English(tt.input), tt.input)
	}

	assert.Equal(t, []string{"hello", "thank you"}, EnglishAll([]string{"hello.", "ଧନ୍ୟବାଦ", "thank you!"}))
}
