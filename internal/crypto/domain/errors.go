package domain

import (
	"github.com/allisson/trustcore/internal/errors"
)

// Cryptographic operation errors.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is unknown.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates a symmetric key is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates authentication of a ciphertext failed.
	//
	// The cause (wrong key, wrong associated data, tampering) is deliberately
	// not distinguished.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrInvalidSealedBlob indicates a stored blob is not in "alg:nonce:ciphertext" form.
	ErrInvalidSealedBlob = errors.Wrap(errors.ErrInvalidInput, "invalid sealed blob format")
)
