// Package audio synthesizes Odia speech for vocabulary entries. Providers
// write one audio file per text; Speaker maps texts onto cached files
// served under /audio/.
package audio
