package sanitize

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
)

var fragmentSeparator = regexp.MustCompile(`"\s*,\s*"`)

func trim(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	// ```json\n[...]\n```
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// unwrap turns {"words": [...]} into [...] and a lone record into [record]
func unwrap(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "{") {
		return text
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &members); err != nil {
		return text
	}

	var arrays []json.RawMessage
	for _, v := range members {
		if strings.HasPrefix(strings.TrimSpace(string(v)), "[") {
			arrays = append(arrays, v)
		}
	}

	switch len(arrays) {
	case 0:
		return "[" + trimmed + "]"
	case 1:
		return strings.TrimSpace(string(arrays[0]))
	default:
		return text
	}
}

var quoteReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`, "″", `"`,
	"‘", "'", "’", "'", "‚", "'", "‛", "'", "′", "'",
)

func quotes(text string) string {
	return quoteReplacer.Replace(text)
}

// escapes drops backslashes that do not start a JSON escape and control
// characters that JSON strings cannot hold
func escapes(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\':
			if i+1 < len(runes) && isEscape(runes[i+1:]) {
				sb.WriteRune(r)
				sb.WriteRune(runes[i+1])
				i++
			}
		case r == '\n' || r == '\r' || r == '\t':
			sb.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			sb.WriteRune(r)
		}
	}

	return sb.String()
}

func isEscape(rest []rune) bool {
	switch rest[0] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return true
	case 'u':
		if len(rest) < 5 {
			return false
		}
		for _, r := range rest[1:5] {
			if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
				return false
			}
		}
		return true
	}
	return false
}

// brackets repairs the array delimiters: leading chatter, trailing chatter,
// a missing closing bracket and trailing commas
func brackets(text string) string {
	text = strings.TrimSpace(text)

	// chatter may hold brackets of its own, so try every opening one
	// against the last closing one
	if end := strings.LastIndexByte(text, ']'); end >= 0 {
		for start := 0; start < end; start++ {
			if text[start] != '[' {
				continue
			}
			if candidate := dropTrailingCommas(text[start : end+1]); Valid(candidate) {
				return candidate
			}
		}
	}

	if start := strings.IndexByte(text, '['); start > 0 {
		text = text[start:]
	} else if start < 0 {
		text = "[" + text
	}

	cut := lastCompleteElement(text)
	if cut < 0 {
		return text
	}

	body := strings.TrimRight(strings.TrimSpace(text[:cut]), ",")
	return dropTrailingCommas(body + "]")
}

// lastCompleteElement returns the offset just past the last top-level
// element of an array that was closed, or -1. Strings and escapes are
// tracked so brackets inside values are ignored.
func lastCompleteElement(text string) int {
	last := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
				if depth == 1 {
					last = i + 1
				}
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 1 {
				last = i + 1
			}
			if depth <= 0 {
				return last
			}
		}
	}

	return last
}

// dropTrailingCommas removes "," directly before "]" or "}" outside strings
func dropTrailingCommas(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))

	inString := false
	escaped := false
	pendingComma := -1

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			sb.WriteByte(c)
			continue
		}

		switch {
		case c == ',':
			if pendingComma >= 0 {
				sb.WriteByte(',')
			}
			pendingComma = i
			continue
		case c == ' ' || c == '\n' || c == '\r' || c == '\t':
			if pendingComma >= 0 {
				continue
			}
		case c == ']' || c == '}':
			pendingComma = -1
		default:
			if pendingComma >= 0 {
				sb.WriteByte(',')
				pendingComma = -1
			}
			if c == '"' {
				inString = true
			}
		}
		sb.WriteByte(c)
	}

	return sb.String()
}

// fragments salvages what it can. Object arrays keep every balanced
// {...} that parses on its own; string arrays are split on "," and each
// fragment is cleaned and re-quoted.
func fragments(text string) string {
	if objects := balancedObjects(text); len(objects) > 0 {
		return "[" + strings.Join(objects, ",") + "]"
	}

	body := strings.TrimSpace(text)
	body = strings.TrimPrefix(body, "[")
	body = strings.TrimSuffix(body, "]")
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, `"`) {
		return text
	}

	var items []string
	for _, part := range fragmentSeparator.Split(body, -1) {
		part = strings.Trim(part, " \t\r\n,\"\\")
		part = strings.ReplaceAll(part, `\`, "")
		part = strings.ReplaceAll(part, `"`, "")
		if part == "" {
			continue
		}
		quoted, err := json.Marshal(part)
		if err != nil {
			continue
		}
		items = append(items, string(quoted))
	}

	if len(items) == 0 {
		return text
	}
	return "[" + strings.Join(items, ",") + "]"
}

func balancedObjects(text string) []string {
	var objects []string

	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				candidate := text[start : i+1]
				if json.Valid([]byte(candidate)) {
					objects = append(objects, candidate)
				}
				start = -1
			}
		}
	}

	return objects
}
