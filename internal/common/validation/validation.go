package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength = 200
	MinTitleLength = 1
)

// ValidateTitle checks a giveaway title after trimming surrounding whitespace.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	n := utf8.RuneCountInString(title)
	if n < MinTitleLength {
		return fmt.Errorf("title cannot be empty")
	}
	if n > MaxTitleLength {
		return fmt.Errorf("title cannot exceed %d characters", MaxTitleLength)
	}
	return nil
}
