package domain

import (
	"github.com/allisson/trustcore/internal/errors"
)

// Seal state machine errors.
var (
	// ErrAlreadyInitialized indicates Initialize was called on an initialized vault.
	ErrAlreadyInitialized = errors.Wrap(errors.ErrConflict, "vault is already initialized")

	// ErrNotInitialized indicates an operation that requires an initialized vault.
	ErrNotInitialized = errors.Wrap(errors.ErrConflict, "vault is not initialized")

	// ErrVaultSealed indicates the master key is not available.
	ErrVaultSealed = errors.ErrSealed

	// ErrInvalidShareSet indicates the reconstructed key failed verification.
	// The pending accumulation has been discarded and a full set must be resubmitted.
	ErrInvalidShareSet = errors.Wrap(errors.ErrInvalidInput, "invalid share set")

	// ErrInvalidShare indicates a share with an out-of-range index or wrong length.
	ErrInvalidShare = errors.Wrap(errors.ErrInvalidInput, "invalid share")

	// ErrInvalidShareEncoding indicates a share string that is not valid base64.
	ErrInvalidShareEncoding = errors.Wrap(errors.ErrInvalidInput, "invalid share encoding")

	// ErrInvalidShareParameters indicates secret_shares/secret_threshold out of range.
	ErrInvalidShareParameters = errors.Wrap(
		errors.ErrInvalidInput,
		"secret_shares and secret_threshold must satisfy 1 <= threshold <= shares <= 255",
	)

	// ErrSealConfigNotFound indicates no seal configuration has been persisted.
	ErrSealConfigNotFound = errors.Wrap(errors.ErrNotFound, "seal config not found")

	// ErrAutoUnsealConfigNotFound indicates no active auto-unseal configuration exists.
	ErrAutoUnsealConfigNotFound = errors.Wrap(errors.ErrNotFound, "auto-unseal config not found")

	// ErrAutoUnsealConfigExists indicates an active configuration already exists for the provider.
	ErrAutoUnsealConfigExists = errors.Wrap(errors.ErrConflict, "active auto-unseal config already exists for provider")

	// ErrUnsupportedProvider indicates an unknown auto-unseal provider name.
	ErrUnsupportedProvider = errors.Wrap(errors.ErrInvalidInput, "unsupported auto-unseal provider")

	// ErrMasterKeyReleased indicates a Sealer was used after its WithMasterKey call returned.
	ErrMasterKeyReleased = errors.New("master key capability used outside WithMasterKey")
)
