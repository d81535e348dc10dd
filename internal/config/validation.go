package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks the struct tags and the rules that cannot be expressed as tags
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		return formatValidationError(err)
	}

	if c.IsProduction() && c.AdminPassword == DefaultAdminPassword {
		return fmt.Errorf("ADMIN_PASSWORD: the default password is not allowed in production")
	}

	return nil
}

// formatValidationError reports the first failing field
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag", e.Namespace(), e.Tag())
	}
	return err
}
