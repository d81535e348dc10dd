package validation

import (
	"errors"
	"unicode/utf8"

	"github.com/templui/filebox/internal/model"
)

// ValidateFolderCode checks that a protected folder code is exactly four characters
func ValidateFolderCode(code string) error {
	if code == "" {
		return errors.New("code is required for a protected folder")
	}

	if utf8.RuneCountInString(code) != model.FolderCodeLength {
		return errors.New("code must be exactly 4 characters")
	}

	return nil
}
