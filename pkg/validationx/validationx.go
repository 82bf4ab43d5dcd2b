package validationx

import (
	"errors"
	"regexp"

	"github.com/ARUMANDESU/validation"
	"github.com/ARUMANDESU/validation/is"
)

var (
	EmailRules = []validation.Rule{
		validation.Required,
		is.Email,
		validation.Length(5, 255),
	}

	NameRules = []validation.Rule{
		validation.Required,
		validation.Length(1, 150),
		IsPersonName,
	}

	PhoneRules = []validation.Rule{
		validation.Required,
		validation.Length(6, 20),
		IsPhoneNumber,
	}
)

var ErrInvalidNameFormat = validation.NewError(
	"validation_is_name",
	"must be a valid name containing only letters, spaces, hyphens, apostrophes, and periods")

var ErrInvalidPhoneFormat = validation.NewError(
	"validation_is_phone",
	"must be a valid phone number with an optional leading + and 6 to 15 digits")

var (
	// Allow Unicode letters, spaces, hyphens, apostrophes, periods
	nameRegex = regexp.MustCompile(`^[\p{L}\p{M}\s'\-\.]+$`)
	// Optional +, then digits with optional separators
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 \-]{4,18}[0-9]$`)
)

var IsPersonName = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil // Let Required handle emptiness
	}

	if !nameRegex.MatchString(s) {
		return ErrInvalidNameFormat
	}
	return nil
})

var IsPhoneNumber = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil // Let Required handle emptiness
	}

	if !phoneRegex.MatchString(s) {
		return ErrInvalidPhoneFormat
	}
	return nil
})

// IsValidationError reports whether err originates from a validation
// rule, as opposed to an infrastructure or domain failure.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return true
	}

	var verr validation.Error
	return errors.As(err, &verr)
}
