// Package domain defines the cryptographic primitives shared by the seal and PKI
// subsystems: AEAD algorithm identifiers, the sealed blob storage format, and the
// KMS keeper abstraction used for auto-unseal.
package domain

import "strings"

// Algorithm identifies the AEAD cipher used to seal data at rest.
//
// Both algorithms take a 256-bit key, a 96-bit random nonce and append a
// 128-bit authentication tag to the ciphertext.
type Algorithm string

const (
	// AESGCM is AES-256 in Galois/Counter Mode.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305, preferred on hosts without AES-NI.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// KeySize is the length in bytes of every symmetric key handled by this module,
// including the vault master key.
const KeySize = 32

// ParseAlgorithm maps a configuration string to a supported Algorithm.
// Matching is case-insensitive and surrounding whitespace is ignored.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case AESGCM:
		return AESGCM, nil
	case ChaCha20:
		return ChaCha20, nil
	default:
		return "", ErrUnsupportedAlgorithm
	}
}
