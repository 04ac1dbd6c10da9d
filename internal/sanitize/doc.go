// Package sanitize repairs near-valid JSON returned by language models.
// Clean runs an ordered list of repair strategies until the text parses
// as a JSON array, and fails with a ParseError when none of them helps.
package sanitize
