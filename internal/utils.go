package internal

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"
)

// ContentHash returns the hex md5 of text. It keys audio files and
// cache entries.
func ContentHash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

// SanitizeFilename creates a safe filename from a string. Letters of any
// script are kept.
func SanitizeFilename(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	return sb.String()
}
