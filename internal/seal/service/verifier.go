package service

import (
	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/trustcore/internal/errors"
)

type argon2Verifier struct {
	hasher *pwdhash.PasswordHasher
}

// NewKeyVerifier returns a KeyVerifier backed by Argon2id with the Moderate policy.
func NewKeyVerifier() KeyVerifier {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &argon2Verifier{hasher: hasher}
}

// Hash returns an encoded Argon2id hash of key.
func (v *argon2Verifier) Hash(key []byte) (string, error) {
	hash, err := v.hasher.Hash(key)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash master key")
	}
	return hash, nil
}

// Verify reports whether key matches hash in constant time.
func (v *argon2Verifier) Verify(key []byte, hash string) (bool, error) {
	ok, err := v.hasher.Verify(key, hash)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to verify master key")
	}
	return ok, nil
}
