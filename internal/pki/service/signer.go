package service

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"io"
	"math/big"
	"time"

	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
	"github.com/allisson/trustcore/internal/pki/x509der"
)

const (
	serialNumberLength = 20
	keyIDLength        = 20
)

// Template is the content of a certificate before it is signed.
type Template struct {
	Subject   x509der.Name
	PublicKey crypto.PublicKey
	NotBefore time.Time
	NotAfter  time.Time
	IsCA      bool
}

// Issuer is the CA that signs a certificate.
type Issuer struct {
	Certificate *x509.Certificate
	Signer      crypto.Signer
}

type certificateSigner struct {
	random io.Reader
}

// NewCertificateSigner creates a CertificateSigner drawing serial numbers and key
// identifiers from crypto/rand.
func NewCertificateSigner() CertificateSigner {
	return &certificateSigner{random: rand.Reader}
}

func (s *certificateSigner) SelfSign(tmpl *Template, key crypto.Signer) (*x509.Certificate, error) {
	subject, err := tmpl.Subject.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: encode subject: %v", pkiDomain.ErrCrypto, err)
	}
	return s.sign(tmpl, subject, nil, key, nil)
}

func (s *certificateSigner) Sign(tmpl *Template, issuer *Issuer) (*x509.Certificate, error) {
	if issuer == nil || issuer.Certificate == nil || issuer.Signer == nil {
		return nil, fmt.Errorf("%w: issuer is required", pkiDomain.ErrCrypto)
	}
	return s.sign(tmpl, issuer.Certificate.RawSubject, issuer.Certificate.SubjectKeyId, issuer.Signer, issuer.Certificate)
}

// sign assembles the TBSCertificate, signs it and checks the result against the
// issuer certificate. parent is nil for self-signed certificates.
func (s *certificateSigner) sign(
	tmpl *Template,
	issuerName []byte,
	authorityKeyID []byte,
	signer crypto.Signer,
	parent *x509.Certificate,
) (*x509.Certificate, error) {
	algorithm, hash, err := signatureAlgorithm(signer.Public())
	if err != nil {
		return nil, err
	}

	subject, err := tmpl.Subject.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: encode subject: %v", pkiDomain.ErrCrypto, err)
	}
	spki, err := x509.MarshalPKIXPublicKey(tmpl.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encode public key: %v", pkiDomain.ErrCrypto, err)
	}
	serial, err := s.serialNumber()
	if err != nil {
		return nil, err
	}
	extensions, err := s.extensions(tmpl.IsCA, parent != nil, authorityKeyID)
	if err != nil {
		return nil, err
	}

	tbs := &x509der.TBSCertificate{
		SerialNumber:         serial,
		SignatureAlgorithm:   algorithm,
		Issuer:               issuerName,
		Validity:             x509der.Validity{NotBefore: tmpl.NotBefore, NotAfter: tmpl.NotAfter},
		Subject:              subject,
		SubjectPublicKeyInfo: spki,
		Extensions:           extensions,
	}
	tbsDER, err := tbs.Marshal()
	if err != nil {
		return nil, fmt.Errorf("%w: encode tbs certificate: %v", pkiDomain.ErrCrypto, err)
	}

	digest := hash.New()
	digest.Write(tbsDER)
	signature, err := signer.Sign(s.random, digest.Sum(nil), hash)
	if err != nil {
		return nil, fmt.Errorf("%w: sign certificate: %v", pkiDomain.ErrCrypto, err)
	}

	der, err := x509der.MarshalCertificate(tbsDER, algorithm, signature)
	if err != nil {
		return nil, fmt.Errorf("%w: encode certificate: %v", pkiDomain.ErrCrypto, err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse issued certificate: %v", pkiDomain.ErrCrypto, err)
	}

	if parent == nil {
		parent = cert
	}
	if err := cert.CheckSignatureFrom(parent); err != nil {
		return nil, fmt.Errorf("%w: verify issued certificate: %v", pkiDomain.ErrCrypto, err)
	}
	return cert, nil
}

func (s *certificateSigner) extensions(isCA, hasIssuer bool, authorityKeyID []byte) ([]x509der.Extension, error) {
	keyID := make([]byte, keyIDLength)
	if _, err := io.ReadFull(s.random, keyID); err != nil {
		return nil, fmt.Errorf("%w: read key identifier: %v", pkiDomain.ErrCrypto, err)
	}

	keyUsage := x509der.KeyUsageDigitalSignature | x509der.KeyUsageKeyEncipherment
	if isCA {
		keyUsage = x509der.KeyUsageCertSign | x509der.KeyUsageCRLSign
	}

	builders := []func() (x509der.Extension, error){
		func() (x509der.Extension, error) { return x509der.SubjectKeyIDExtension(keyID) },
		func() (x509der.Extension, error) { return x509der.KeyUsageExtension(keyUsage) },
		func() (x509der.Extension, error) { return x509der.BasicConstraintsExtension(isCA) },
	}
	if hasIssuer && len(authorityKeyID) > 0 {
		builders = append(builders, func() (x509der.Extension, error) {
			return x509der.AuthorityKeyIDExtension(authorityKeyID)
		})
	}
	if !isCA {
		builders = append(builders, func() (x509der.Extension, error) {
			return x509der.ExtKeyUsageExtension(x509der.OIDExtKeyUsageClientAuth)
		})
	}

	extensions := make([]x509der.Extension, 0, len(builders))
	for _, build := range builders {
		ext, err := build()
		if err != nil {
			return nil, fmt.Errorf("%w: build extension: %v", pkiDomain.ErrCrypto, err)
		}
		extensions = append(extensions, ext)
	}
	return extensions, nil
}

// serialNumber returns a positive random integer of at most 20 octets.
func (s *certificateSigner) serialNumber() (*big.Int, error) {
	buf := make([]byte, serialNumberLength)
	for {
		if _, err := io.ReadFull(s.random, buf); err != nil {
			return nil, fmt.Errorf("%w: read serial number: %v", pkiDomain.ErrCrypto, err)
		}
		buf[0] &= 0x7f
		serial := new(big.Int).SetBytes(buf)
		if serial.Sign() > 0 {
			return serial, nil
		}
	}
}

func signatureAlgorithm(pub crypto.PublicKey) (x509der.AlgorithmIdentifier, crypto.Hash, error) {
	switch pub.(type) {
	case *rsa.PublicKey:
		return x509der.SHA256WithRSA, crypto.SHA256, nil
	case *ecdsa.PublicKey:
		return x509der.ECDSAWithSHA384, crypto.SHA384, nil
	default:
		return x509der.AlgorithmIdentifier{}, 0, fmt.Errorf("%w: unsupported signing key %T", pkiDomain.ErrCrypto, pub)
	}
}

// KeyUsageNames returns the stored key usage names for a certificate role.
func KeyUsageNames(isCA bool) []string {
	if isCA {
		return []string{pkiDomain.KeyUsageKeyCertSign, pkiDomain.KeyUsageCRLSign}
	}
	return []string{
		pkiDomain.KeyUsageDigitalSignature,
		pkiDomain.KeyUsageKeyEncipherment,
		pkiDomain.KeyUsageClientAuth,
	}
}
