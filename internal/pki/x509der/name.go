package x509der

import (
	encoding_asn1 "encoding/asn1"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Attribute types used in certificate subjects.
var (
	OIDCommonName         = encoding_asn1.ObjectIdentifier{2, 5, 4, 3}
	OIDCountry            = encoding_asn1.ObjectIdentifier{2, 5, 4, 6}
	OIDLocality           = encoding_asn1.ObjectIdentifier{2, 5, 4, 7}
	OIDState              = encoding_asn1.ObjectIdentifier{2, 5, 4, 8}
	OIDOrganization       = encoding_asn1.ObjectIdentifier{2, 5, 4, 10}
	OIDOrganizationalUnit = encoding_asn1.ObjectIdentifier{2, 5, 4, 11}
)

// AttributeTypeAndValue is a single naming attribute.
type AttributeTypeAndValue struct {
	Type  encoding_asn1.ObjectIdentifier
	Value AttributeValue
}

// NewTextAttribute builds an attribute from a Go string. Country codes are
// PrintableString as RFC 5280 requires; everything else is UTF8String.
func NewTextAttribute(oid encoding_asn1.ObjectIdentifier, value string) AttributeTypeAndValue {
	if oid.Equal(OIDCountry) {
		return AttributeTypeAndValue{Type: oid, Value: PrintableString(value)}
	}
	return AttributeTypeAndValue{Type: oid, Value: UTF8String(value)}
}

// Name is an X.501 distinguished name with one attribute per relative distinguished name.
type Name []AttributeTypeAndValue

// ParseName decodes a DER Name. Multi-valued RDNs are flattened in encoding order.
func ParseName(der []byte) (Name, error) {
	input := cryptobyte.String(der)
	var rdnSequence cryptobyte.String
	if !input.ReadASN1(&rdnSequence, asn1.SEQUENCE) || !input.Empty() {
		return nil, ErrMalformed
	}

	var name Name
	for !rdnSequence.Empty() {
		var set cryptobyte.String
		if !rdnSequence.ReadASN1(&set, asn1.SET) {
			return nil, ErrMalformed
		}
		for !set.Empty() {
			var atv cryptobyte.String
			var oid encoding_asn1.ObjectIdentifier
			var element cryptobyte.String
			var tag asn1.Tag
			if !set.ReadASN1(&atv, asn1.SEQUENCE) ||
				!atv.ReadASN1ObjectIdentifier(&oid) ||
				!atv.ReadAnyASN1Element(&element, &tag) ||
				!atv.Empty() {
				return nil, ErrMalformed
			}

			value, err := DecodeAttributeValue(element)
			if err != nil {
				return nil, err
			}
			name = append(name, AttributeTypeAndValue{Type: oid, Value: value})
		}
	}
	return name, nil
}

// Marshal encodes the name as DER.
func (n Name) Marshal() ([]byte, error) {
	b := cryptobyte.NewBuilder(nil)
	n.marshal(b)
	return b.Bytes()
}

func (n Name) marshal(b *cryptobyte.Builder) {
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, atv := range n {
			b.AddASN1(asn1.SET, func(b *cryptobyte.Builder) {
				b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
					b.AddASN1ObjectIdentifier(atv.Type)
					atv.Value.marshal(b)
				})
			})
		}
	})
}

// Get returns the first attribute of the given type.
func (n Name) Get(oid encoding_asn1.ObjectIdentifier) (AttributeTypeAndValue, bool) {
	for _, atv := range n {
		if atv.Type.Equal(oid) {
			return atv, true
		}
	}
	return AttributeTypeAndValue{}, false
}

// All returns every attribute of the given type in order.
func (n Name) All(oid encoding_asn1.ObjectIdentifier) []AttributeTypeAndValue {
	var out []AttributeTypeAndValue
	for _, atv := range n {
		if atv.Type.Equal(oid) {
			out = append(out, atv)
		}
	}
	return out
}
