package x509der

import (
	encoding_asn1 "encoding/asn1"
	"errors"
	"math/bits"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Extension identifiers.
var (
	OIDExtSubjectKeyID     = encoding_asn1.ObjectIdentifier{2, 5, 29, 14}
	OIDExtKeyUsage         = encoding_asn1.ObjectIdentifier{2, 5, 29, 15}
	OIDExtBasicConstraints = encoding_asn1.ObjectIdentifier{2, 5, 29, 19}
	OIDExtAuthorityKeyID   = encoding_asn1.ObjectIdentifier{2, 5, 29, 35}
	OIDExtExtendedKeyUsage = encoding_asn1.ObjectIdentifier{2, 5, 29, 37}

	OIDExtKeyUsageClientAuth = encoding_asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 3, 2}
)

// Extension is a certificate extension whose Value holds the DER of extnValue's contents.
type Extension struct {
	ID       encoding_asn1.ObjectIdentifier
	Critical bool
	Value    []byte
}

func (e Extension) marshal(b *cryptobyte.Builder) {
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(e.ID)
		if e.Critical {
			b.AddASN1Boolean(true)
		}
		b.AddASN1OctetString(e.Value)
	})
}

// KeyUsage is a set of RFC 5280 key usage bits. Bit 0 is digitalSignature.
type KeyUsage uint16

// Key usage bits.
const (
	KeyUsageDigitalSignature KeyUsage = 1 << iota
	KeyUsageContentCommitment
	KeyUsageKeyEncipherment
	KeyUsageDataEncipherment
	KeyUsageKeyAgreement
	KeyUsageCertSign
	KeyUsageCRLSign
	KeyUsageEncipherOnly
	KeyUsageDecipherOnly
)

// bitString returns the DER BIT STRING contents: the unused-bit count and the
// minimal number of bytes.
func (ku KeyUsage) bitString() (unused uint8, data []byte) {
	var buf [2]byte
	for i := 0; i < 9; i++ {
		if ku&(1<<i) != 0 {
			buf[i/8] |= 0x80 >> (i % 8)
		}
	}

	n := len(buf)
	for n > 0 && buf[n-1] == 0 {
		n--
	}
	if n == 0 {
		return 0, nil
	}
	return uint8(bits.TrailingZeros8(buf[n-1])), buf[:n]
}

// SubjectKeyIDExtension builds the non-critical subjectKeyIdentifier extension.
func SubjectKeyIDExtension(keyID []byte) (Extension, error) {
	return newExtension(OIDExtSubjectKeyID, false, func(b *cryptobyte.Builder) {
		b.AddASN1OctetString(keyID)
	})
}

// AuthorityKeyIDExtension builds the non-critical authorityKeyIdentifier extension
// carrying only the keyIdentifier field.
func AuthorityKeyIDExtension(keyID []byte) (Extension, error) {
	return newExtension(OIDExtAuthorityKeyID, false, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1(asn1.Tag(0).ContextSpecific(), func(b *cryptobyte.Builder) {
				b.AddBytes(keyID)
			})
		})
	})
}

// KeyUsageExtension builds the critical keyUsage extension.
func KeyUsageExtension(ku KeyUsage) (Extension, error) {
	unused, data := ku.bitString()
	if len(data) == 0 {
		return Extension{}, errors.New("x509der: empty key usage")
	}
	return newExtension(OIDExtKeyUsage, true, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.BIT_STRING, func(b *cryptobyte.Builder) {
			b.AddUint8(unused)
			b.AddBytes(data)
		})
	})
}

// BasicConstraintsExtension builds the critical basicConstraints extension.
// cA is omitted for end-entity certificates since DER forbids encoding the default.
func BasicConstraintsExtension(isCA bool) (Extension, error) {
	return newExtension(OIDExtBasicConstraints, true, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			if isCA {
				b.AddASN1Boolean(true)
			}
		})
	})
}

// ExtKeyUsageExtension builds the non-critical extKeyUsage extension.
func ExtKeyUsageExtension(usages ...encoding_asn1.ObjectIdentifier) (Extension, error) {
	if len(usages) == 0 {
		return Extension{}, errors.New("x509der: empty extended key usage")
	}
	return newExtension(OIDExtExtendedKeyUsage, false, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			for _, oid := range usages {
				b.AddASN1ObjectIdentifier(oid)
			}
		})
	})
}

func newExtension(id encoding_asn1.ObjectIdentifier, critical bool, value cryptobyte.BuilderContinuation) (Extension, error) {
	b := cryptobyte.NewBuilder(nil)
	value(b)
	der, err := b.Bytes()
	if err != nil {
		return Extension{}, err
	}
	return Extension{ID: id, Critical: critical, Value: der}, nil
}
