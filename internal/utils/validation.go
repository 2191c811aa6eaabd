package utils

import (
	"fmt"
	"html"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRequired checks that value is not blank once trimmed
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

// CleanCardFace sanitises a question or answer and rejects it if nothing
// printable is left. Entities the sanitiser escapes are decoded again so
// text such as "3 < 5" is stored as typed.
func CleanCardFace(field, input string) (string, error) {
	cleaned := strings.TrimSpace(html.UnescapeString(SanitizeHTML(input)))
	if err := ValidateRequired(field, cleaned); err != nil {
		return "", err
	}
	return cleaned, nil
}
