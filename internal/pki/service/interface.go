// Package service provides key generation, certificate signing and CSR parsing for the CA.
package service

import (
	"context"
	"crypto"
	"crypto/x509"

	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
)

// KeyGenerator creates asymmetric key pairs.
type KeyGenerator interface {
	// Generate returns a new RSA or P-384 ECDSA private key. It blocks while the
	// configured number of generations is already running.
	Generate(ctx context.Context, keyType pkiDomain.KeyType, keySize int) (crypto.Signer, error)
}

// CertificateSigner builds and signs certificates.
type CertificateSigner interface {
	// SelfSign issues a root certificate signed by key.
	SelfSign(tmpl *Template, key crypto.Signer) (*x509.Certificate, error)
	// Sign issues a certificate signed by issuer.
	Sign(tmpl *Template, issuer *Issuer) (*x509.Certificate, error)
}
