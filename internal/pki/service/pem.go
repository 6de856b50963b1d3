package service

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
)

// PEM block types.
const (
	PEMTypeCertificate = "CERTIFICATE"
	PEMTypePrivateKey  = "PRIVATE KEY"
)

// EncodeCertificatePEM encodes a DER certificate as PEM.
func EncodeCertificatePEM(der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: PEMTypeCertificate, Bytes: der}))
}

// DecodeCertificatePEM parses the first certificate in certPEM.
func DecodeCertificatePEM(certPEM string) (*x509.Certificate, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil || block.Type != PEMTypeCertificate {
		return nil, fmt.Errorf("%w: stored certificate is not PEM", pkiDomain.ErrCrypto)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse stored certificate: %v", pkiDomain.ErrCrypto, err)
	}
	return cert, nil
}

// MarshalPrivateKey returns the PKCS#8 DER encoding of key.
func MarshalPrivateKey(key crypto.Signer) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal private key: %v", pkiDomain.ErrCrypto, err)
	}
	return der, nil
}

// ParsePrivateKey parses a PKCS#8 DER private key.
func ParsePrivateKey(der []byte) (crypto.Signer, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", pkiDomain.ErrCrypto, err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%w: private key cannot sign", pkiDomain.ErrCrypto)
	}
	return signer, nil
}

// EncodePrivateKeyPEM encodes a PKCS#8 DER private key as PEM.
func EncodePrivateKeyPEM(der []byte) string {
	return string(pem.EncodeToMemory(&pem.Block{Type: PEMTypePrivateKey, Bytes: der}))
}
