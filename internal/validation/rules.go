// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"encoding/pem"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/trustcore/internal/errors"
)

var countryCodeRegex = regexp.MustCompile(`^[A-Z]{2}$`)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// CountryCode validates an ISO 3166-1 alpha-2 country code (e.g. "US").
var CountryCode = validation.NewStringRuleWithError(
	func(s string) bool {
		return countryCodeRegex.MatchString(s)
	},
	validation.NewError("validation_country_code", "must be a two-letter uppercase country code"),
)

// Base64 validates that a string is valid standard base64-encoded data.
var Base64 = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := base64.StdEncoding.DecodeString(s)
		return err == nil
	},
	validation.NewError("validation_base64", "must be valid base64-encoded data"),
)

// PEMBlock returns a rule that accepts a string holding at least one PEM block of blockType.
func PEMBlock(blockType string) validation.Rule {
	return validation.NewStringRuleWithError(
		func(s string) bool {
			block, _ := pem.Decode([]byte(s))
			return block != nil && block.Type == blockType
		},
		validation.NewError("validation_pem_block", "must be a PEM encoded "+blockType),
	)
}
