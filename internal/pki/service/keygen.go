package service

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"golang.org/x/sync/semaphore"

	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
)

type keyGenerator struct {
	sem *semaphore.Weighted
}

// NewKeyGenerator creates a KeyGenerator running at most maxConcurrent generations at once.
func NewKeyGenerator(maxConcurrent int) KeyGenerator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &keyGenerator{sem: semaphore.NewWeighted(int64(maxConcurrent))}
}

func (g *keyGenerator) Generate(
	ctx context.Context,
	keyType pkiDomain.KeyType,
	keySize int,
) (crypto.Signer, error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer g.sem.Release(1)

	switch keyType {
	case pkiDomain.KeyTypeRSA:
		key, err := rsa.GenerateKey(rand.Reader, keySize)
		if err != nil {
			return nil, fmt.Errorf("%w: generate rsa key: %v", pkiDomain.ErrCrypto, err)
		}
		return key, nil
	case pkiDomain.KeyTypeECDSA:
		key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("%w: generate ecdsa key: %v", pkiDomain.ErrCrypto, err)
		}
		return key, nil
	default:
		return nil, pkiDomain.ErrInvalidKeyType
	}
}
