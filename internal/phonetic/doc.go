// Package phonetic fetches plain-text pronunciation guides for Odia words
// and phrases from a completion model. The guides fill the Notes field of
// exported flashcards.
package phonetic
