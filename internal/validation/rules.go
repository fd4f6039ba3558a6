// Package validation holds the jellydator/validation rules shared by request DTOs.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/apikeys/internal/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email validates email format.
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NotBlank rejects strings that are empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// KeyName is the rule set for API key names: present, not blank, at most 100 characters.
var KeyName = []validation.Rule{
	validation.Required,
	NotBlank,
	validation.RuneLength(1, 100),
}

// ExpirationDays accepts nil (server default applies) or a value between 1 and 365.
var ExpirationDays = validation.By(func(value interface{}) error {
	var days int
	switch v := value.(type) {
	case nil:
		return nil
	case *int:
		if v == nil {
			return nil
		}
		days = *v
	case int:
		days = v
	default:
		return validation.NewError("validation_expiration_days_type", "must be an integer")
	}
	if days < 1 || days > 365 {
		return validation.NewError("validation_expiration_days_range", "must be between 1 and 365")
	}
	return nil
})
