package x509der

import (
	encoding_asn1 "encoding/asn1"
	"errors"
	"math/big"
	"time"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// AlgorithmIdentifier names a signature algorithm. RSA PKCS#1 v1.5 algorithms
// carry an explicit NULL parameter; ECDSA algorithms carry none.
type AlgorithmIdentifier struct {
	Algorithm      encoding_asn1.ObjectIdentifier
	NullParameters bool
}

// Signature algorithms used by the CA.
var (
	SHA256WithRSA = AlgorithmIdentifier{
		Algorithm:      encoding_asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11},
		NullParameters: true,
	}
	ECDSAWithSHA384 = AlgorithmIdentifier{
		Algorithm: encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 3},
	}
)

func (a AlgorithmIdentifier) marshal(b *cryptobyte.Builder) {
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(a.Algorithm)
		if a.NullParameters {
			b.AddASN1NULL()
		}
	})
}

// Validity is the certificate validity window.
type Validity struct {
	NotBefore time.Time
	NotAfter  time.Time
}

// TBSCertificate is a version 3 TBSCertificate. Issuer, Subject and
// SubjectPublicKeyInfo are complete DER elements.
type TBSCertificate struct {
	SerialNumber         *big.Int
	SignatureAlgorithm   AlgorithmIdentifier
	Issuer               []byte
	Validity             Validity
	Subject              []byte
	SubjectPublicKeyInfo []byte
	Extensions           []Extension
}

// Marshal encodes the TBSCertificate as DER.
func (t *TBSCertificate) Marshal() ([]byte, error) {
	if t.SerialNumber == nil || t.SerialNumber.Sign() <= 0 {
		return nil, errors.New("x509der: serial number must be positive")
	}
	if len(t.Issuer) == 0 || len(t.Subject) == 0 || len(t.SubjectPublicKeyInfo) == 0 {
		return nil, errors.New("x509der: issuer, subject and public key are required")
	}
	if !t.Validity.NotAfter.After(t.Validity.NotBefore) {
		return nil, errors.New("x509der: notAfter must be after notBefore")
	}

	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.Tag(0).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
			b.AddASN1Int64(2)
		})
		b.AddASN1BigInt(t.SerialNumber)
		t.SignatureAlgorithm.marshal(b)
		b.AddBytes(t.Issuer)
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			addTime(b, t.Validity.NotBefore)
			addTime(b, t.Validity.NotAfter)
		})
		b.AddBytes(t.Subject)
		b.AddBytes(t.SubjectPublicKeyInfo)
		if len(t.Extensions) > 0 {
			b.AddASN1(asn1.Tag(3).Constructed().ContextSpecific(), func(b *cryptobyte.Builder) {
				b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
					for _, ext := range t.Extensions {
						ext.marshal(b)
					}
				})
			})
		}
	})
	return b.Bytes()
}

// MarshalCertificate wraps a DER TBSCertificate and its signature into a Certificate.
func MarshalCertificate(tbs []byte, algorithm AlgorithmIdentifier, signature []byte) ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddBytes(tbs)
		algorithm.marshal(b)
		b.AddASN1BitString(signature)
	})
	return b.Bytes()
}

// addTime uses UTCTime through 2049 and GeneralizedTime afterwards (RFC 5280 4.1.2.5).
func addTime(b *cryptobyte.Builder, t time.Time) {
	t = t.UTC()
	if t.Year() >= 1950 && t.Year() < 2050 {
		b.AddASN1UTCTime(t)
		return
	}
	b.AddASN1GeneralizedTime(t)
}
