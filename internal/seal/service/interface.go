// Package service provides the cryptographic building blocks of the seal state
// machine: master key verification, sub-key derivation and the KMS provider
// adapter used for auto-unseal.
package service

import (
	"context"

	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
)

// KeyVerifier produces and checks the non-reversible verification value stored at Initialize.
type KeyVerifier interface {
	Hash(key []byte) (string, error)
	Verify(key []byte, hash string) (bool, error)
}

// KMSProvider wraps and unwraps unseal shares with a key held by an external KMS.
// Every returned error is a *sealDomain.ProviderError.
type KMSProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// ProviderFactory opens a KMSProvider for an auto-unseal configuration.
type ProviderFactory interface {
	Open(ctx context.Context, cfg *sealDomain.AutoUnsealConfig) (KMSProvider, error)
}
