package domain

import (
	"fmt"

	"github.com/allisson/trustcore/internal/errors"
)

// ProviderError is a failed call to an auto-unseal KMS provider.
//
// Transient errors (network failures, throttling, 5xx responses) are retried
// with backoff; permanent ones (authorization, missing or disabled key,
// malformed ciphertext) surface immediately.
type ProviderError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("kms provider %s failed (%s): %v", e.Op, kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is makes every ProviderError match errors.ErrUnavailable.
func (e *ProviderError) Is(target error) bool {
	return target == errors.ErrUnavailable
}
