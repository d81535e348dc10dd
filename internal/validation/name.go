package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxNameLength bounds file and folder display names
const MaxNameLength = 255

// ValidateName validates a file or folder display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return errors.New("name is too long (max 255 characters)")
	}

	return nil
}

// ValidateUsername validates a login name
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)

	if trimmed == "" {
		return errors.New("username is required")
	}

	if len(trimmed) > 64 {
		return errors.New("username is too long (max 64 characters)")
	}

	if strings.ContainsAny(trimmed, " \t\r\n") {
		return errors.New("username must not contain whitespace")
	}

	return nil
}
