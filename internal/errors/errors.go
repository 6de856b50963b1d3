// Package errors defines the domain error kinds shared by every module. Use
// cases wrap one of the sentinels below; transports classify the result with
// Code and never inspect concrete error types.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConflict covers state conflicts such as initializing twice or revoking a
	// revoked certificate.
	ErrConflict = errors.New("conflict")

	ErrInvalidInput = errors.New("invalid input")

	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")

	// ErrSealed means the master key is not in memory.
	ErrSealed = errors.New("vault is sealed")

	// ErrUnavailable marks failures of an external dependency such as a KMS provider.
	ErrUnavailable = errors.New("unavailable")
)

// Stable machine-readable codes returned by Code.
const (
	CodeSealed       = "vault_sealed"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInvalidInput = "invalid_input"
	CodeUnavailable  = "provider_unavailable"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeInternal     = "internal_error"
)

// classification order matters: a sealed error wrapped in a conflict still
// reports as sealed.
var classification = []struct {
	sentinel error
	code     string
}{
	{ErrSealed, CodeSealed},
	{ErrNotFound, CodeNotFound},
	{ErrConflict, CodeConflict},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrUnavailable, CodeUnavailable},
	{ErrUnauthorized, CodeUnauthorized},
	{ErrForbidden, CodeForbidden},
}

// Code returns the code of the first sentinel found in err's tree, CodeInternal
// for unclassified errors and "" for nil.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range classification {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return CodeInternal
}

func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message, keeping it matchable with Is. Wrap(nil, ...) is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
