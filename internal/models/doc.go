// Package models lists the chat and text-to-speech models available to the
// configured API key and checks that the model ids named in the
// configuration exist.
package models
