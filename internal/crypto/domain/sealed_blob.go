package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// SealedBlob is an AEAD ciphertext together with the parameters needed to open it.
//
// It is serialized as "alg:nonce-base64:ciphertext-base64" so that the algorithm
// used for a stored value survives a later change of the configured default.
type SealedBlob struct {
	Algorithm  Algorithm
	Nonce      []byte
	Ciphertext []byte
}

// ParseSealedBlob decodes the string form produced by SealedBlob.String.
func ParseSealedBlob(content string) (SealedBlob, error) {
	parts := strings.Split(content, ":")
	if len(parts) != 3 {
		return SealedBlob{}, fmt.Errorf(
			"%w: expected 'alg:nonce:ciphertext', got %d parts",
			ErrInvalidSealedBlob,
			len(parts),
		)
	}

	alg, err := ParseAlgorithm(parts[0])
	if err != nil {
		return SealedBlob{}, err
	}

	nonce, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(nonce) == 0 {
		return SealedBlob{}, fmt.Errorf("%w: bad nonce encoding", ErrInvalidSealedBlob)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(ciphertext) == 0 {
		return SealedBlob{}, fmt.Errorf("%w: bad ciphertext encoding", ErrInvalidSealedBlob)
	}

	return SealedBlob{Algorithm: alg, Nonce: nonce, Ciphertext: ciphertext}, nil
}

// String serializes the blob for storage.
func (b SealedBlob) String() string {
	return fmt.Sprintf(
		"%s:%s:%s",
		b.Algorithm,
		base64.StdEncoding.EncodeToString(b.Nonce),
		base64.StdEncoding.EncodeToString(b.Ciphertext),
	)
}
