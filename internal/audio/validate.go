package audio

import (
	"errors"
	"fmt"
	"strings"

	"codeberg.org/snonux/shabda/internal/validate"
)

// ErrInvalidText is wrapped by ValidateOdiaText failures
var ErrInvalidText = errors.New("invalid speech text")

// ValidateOdiaText validates that the input text contains Odia script
func ValidateOdiaText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text cannot be empty", ErrInvalidText)
	}

	if !validate.IsOdia(text) {
		return fmt.Errorf("%w: text must contain Odia characters", ErrInvalidText)
	}

	return nil
}
