package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
)

var errNonceSize = errors.New("invalid nonce size")

// randomNonceCipher draws a fresh nonce from crypto/rand on every Encrypt. Safe
// for concurrent use.
type randomNonceCipher struct {
	alg  cryptoDomain.Algorithm
	aead cipher.AEAD
}

func newCipher(key []byte, alg cryptoDomain.Algorithm) (*randomNonceCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch alg {
	case cryptoDomain.AESGCM:
		var block cipher.Block
		if block, err = aes.NewCipher(key); err == nil {
			aead, err = cipher.NewGCM(block)
		}
	case cryptoDomain.ChaCha20:
		aead, err = chacha20poly1305.New(key)
	default:
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s cipher: %w", alg, err)
	}

	return &randomNonceCipher{alg: alg, aead: aead}, nil
}

func (c *randomNonceCipher) Algorithm() cryptoDomain.Algorithm {
	return c.alg
}

func (c *randomNonceCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return c.aead.Seal(nil, nonce, plaintext, aad), nonce, nil
}

func (c *randomNonceCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() {
		return nil, errNonceSize
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
