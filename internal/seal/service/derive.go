package service

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
	apperrors "github.com/allisson/trustcore/internal/errors"
)

// Sub-key purposes derived from the master key.
const (
	PurposeCAPrivateKeys = "pki/ca-private-keys"
)

// DerivedPurposes lists every purpose derived when the vault is unsealed.
var DerivedPurposes = []string{PurposeCAPrivateKeys}

// DeriveKey derives a KeySize sub-key from masterKey with HKDF-SHA256, using
// purpose as the info parameter.
func DeriveKey(masterKey []byte, purpose string) ([]byte, error) {
	if len(masterKey) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	key := make([]byte, cryptoDomain.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(purpose)), key); err != nil {
		return nil, apperrors.Wrap(err, "failed to derive key")
	}
	return key, nil
}
