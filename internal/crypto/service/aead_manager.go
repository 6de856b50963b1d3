package service

import (
	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
)

// AEADManagerService implements the AEADManager interface.
type AEADManagerService struct{}

// NewAEADManager creates a new AEADManagerService.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{}
}

// CreateCipher returns ErrInvalidKeySize unless key is KeySize bytes and
// ErrUnsupportedAlgorithm for unknown algorithms.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	return newCipher(key, alg)
}

// Seal encrypts plaintext and packs the result into a SealedBlob.
func (am *AEADManagerService) Seal(
	key []byte,
	alg cryptoDomain.Algorithm,
	plaintext, aad []byte,
) (cryptoDomain.SealedBlob, error) {
	cipher, err := am.CreateCipher(key, alg)
	if err != nil {
		return cryptoDomain.SealedBlob{}, err
	}

	ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
	if err != nil {
		return cryptoDomain.SealedBlob{}, err
	}

	return cryptoDomain.SealedBlob{Algorithm: alg, Nonce: nonce, Ciphertext: ciphertext}, nil
}

// Open decrypts a SealedBlob. Any authentication failure is reported as ErrDecryptionFailed.
func (am *AEADManagerService) Open(key []byte, blob cryptoDomain.SealedBlob, aad []byte) ([]byte, error) {
	cipher, err := am.CreateCipher(key, blob.Algorithm)
	if err != nil {
		return nil, err
	}

	plaintext, err := cipher.Decrypt(blob.Ciphertext, blob.Nonce, aad)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
