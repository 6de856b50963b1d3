// Package shamir implements threshold secret sharing over GF(256).
//
// Every byte of the secret is the constant term of an independent random
// polynomial of degree threshold-1. Share i holds the evaluations of all those
// polynomials at x = i, so share indices run from 1 to n. Any threshold shares
// recover the secret by Lagrange interpolation at x = 0; fewer shares yield an
// unrelated value without error, which is why callers must verify the result.
package shamir

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/allisson/trustcore/internal/errors"
)

// MaxShares is the largest number of shares Split can produce.
const MaxShares = 255

var (
	// ErrInvalidParameters indicates threshold and share count are out of range.
	ErrInvalidParameters = errors.Wrap(errors.ErrInvalidInput, "shares must satisfy 1 <= threshold <= n <= 255")

	// ErrEmptySecret indicates Split was given a zero-length secret.
	ErrEmptySecret = errors.Wrap(errors.ErrInvalidInput, "secret must not be empty")

	// ErrNoShares indicates Combine was called without shares.
	ErrNoShares = errors.Wrap(errors.ErrInvalidInput, "at least one share is required")

	// ErrInvalidShare indicates a share with an out-of-range index or a length
	// that differs from the other shares.
	ErrInvalidShare = errors.Wrap(errors.ErrInvalidInput, "invalid share")

	// ErrDuplicateShare indicates two shares carry the same index.
	ErrDuplicateShare = errors.Wrap(errors.ErrInvalidInput, "duplicate share index")
)

// Share is one participant's piece of a split secret.
type Share struct {
	Index int
	Value []byte
}

// Split divides secret into n shares, any threshold of which reconstruct it.
func Split(secret []byte, n, threshold int) ([]Share, error) {
	return split(rand.Reader, secret, n, threshold)
}

func split(random io.Reader, secret []byte, n, threshold int) ([]Share, error) {
	if threshold < 1 || threshold > n || n > MaxShares {
		return nil, ErrInvalidParameters
	}
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	shares := make([]Share, n)
	for i := range shares {
		shares[i] = Share{Index: i + 1, Value: make([]byte, len(secret))}
	}

	coefficients := make([]uint8, threshold)
	defer clear(coefficients)

	for pos, b := range secret {
		coefficients[0] = b
		if threshold > 1 {
			if _, err := io.ReadFull(random, coefficients[1:]); err != nil {
				return nil, fmt.Errorf("failed to generate polynomial coefficients: %w", err)
			}
		}

		for i := range shares {
			shares[i].Value[pos] = evaluate(coefficients, uint8(shares[i].Index))
		}
	}

	return shares, nil
}

// Combine reconstructs a secret from shares by interpolating at x = 0.
//
// Combine cannot know the original threshold. Passing fewer shares than were
// required at Split time returns a wrong secret and no error.
func Combine(shares []Share) ([]byte, error) {
	if len(shares) == 0 {
		return nil, ErrNoShares
	}

	size := len(shares[0].Value)
	xs := make([]uint8, len(shares))
	seen := make(map[int]struct{}, len(shares))

	for i, share := range shares {
		if share.Index < 1 || share.Index > MaxShares {
			return nil, fmt.Errorf("%w: index %d out of range", ErrInvalidShare, share.Index)
		}
		if len(share.Value) != size || size == 0 {
			return nil, fmt.Errorf("%w: share %d has length %d", ErrInvalidShare, share.Index, len(share.Value))
		}
		if _, dup := seen[share.Index]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateShare, share.Index)
		}
		seen[share.Index] = struct{}{}
		xs[i] = uint8(share.Index)
	}

	// basis[i] is the Lagrange basis polynomial for share i evaluated at zero.
	basis := make([]uint8, len(shares))
	for i := range shares {
		var l uint8 = 1
		for j := range shares {
			if i == j {
				continue
			}
			l = mul(l, div(xs[j], xs[j]^xs[i]))
		}
		basis[i] = l
	}

	secret := make([]byte, size)
	for pos := range secret {
		var value uint8
		for i, share := range shares {
			value ^= mul(share.Value[pos], basis[i])
		}
		secret[pos] = value
	}

	return secret, nil
}
