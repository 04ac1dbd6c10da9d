package audio

import (
	"errors"
	"testing"
)

func TestValidateOdiaText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"odia word", "ପାଣି", false},
		{"odia phrase", "ଆପଣ କେମିତି ଅଛନ୍ତି", false},
		{"mixed", "hello ନମସ୍କାର", false},
		{"empty", "", true},
		{"whitespace", "   ", true},
		{"latin", "namaskar", true},
		{"devanagari", "नमस्ते", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOdiaText(tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateOdiaText(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidText) {
				t.Errorf("ValidateOdiaText(%q) error does not wrap ErrInvalidText", tt.text)
			}
		})
	}
}
