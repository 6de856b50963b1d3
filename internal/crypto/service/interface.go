// Package service provides the AEAD ciphers used to seal CA private keys with
// keys derived from the vault master key, and the KMS keeper opener used by
// auto-unseal.
package service

import (
	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	Algorithm() cryptoDomain.Algorithm

	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager creates AEAD cipher instances and seals/opens SealedBlob values.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)

	// Seal encrypts plaintext under key with the given algorithm and AAD.
	Seal(key []byte, alg cryptoDomain.Algorithm, plaintext, aad []byte) (cryptoDomain.SealedBlob, error)

	// Open decrypts a SealedBlob under key with the given AAD.
	Open(key []byte, blob cryptoDomain.SealedBlob, aad []byte) ([]byte, error)
}
