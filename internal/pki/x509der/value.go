// Package x509der encodes X.509 certificate structures to DER and decodes the
// subject names of certificate requests, preserving each attribute's string type.
package x509der

import (
	"encoding/hex"
	"errors"
	"unicode/utf8"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Decoding errors.
var (
	ErrMalformed     = errors.New("x509der: malformed DER")
	ErrInvalidString = errors.New("x509der: string does not match its declared type")
)

// AttributeValue is the value of an AttributeTypeAndValue. It is always one of
// UTF8String, PrintableString, IA5String or RawValue.
type AttributeValue interface {
	String() string
	marshal(b *cryptobyte.Builder)
}

// UTF8String is an ASN.1 UTF8String value.
type UTF8String string

func (s UTF8String) String() string { return string(s) }

func (s UTF8String) marshal(b *cryptobyte.Builder) {
	if !utf8.ValidString(string(s)) {
		b.SetError(ErrInvalidString)
		return
	}
	b.AddASN1(asn1.UTF8String, func(b *cryptobyte.Builder) {
		b.AddBytes([]byte(s))
	})
}

// PrintableString is an ASN.1 PrintableString value.
type PrintableString string

func (s PrintableString) String() string { return string(s) }

func (s PrintableString) marshal(b *cryptobyte.Builder) {
	if !isPrintable([]byte(s)) {
		b.SetError(ErrInvalidString)
		return
	}
	b.AddASN1(asn1.PrintableString, func(b *cryptobyte.Builder) {
		b.AddBytes([]byte(s))
	})
}

// IA5String is an ASN.1 IA5String (ASCII) value.
type IA5String string

func (s IA5String) String() string { return string(s) }

func (s IA5String) marshal(b *cryptobyte.Builder) {
	if !isASCII([]byte(s)) {
		b.SetError(ErrInvalidString)
		return
	}
	b.AddASN1(asn1.IA5String, func(b *cryptobyte.Builder) {
		b.AddBytes([]byte(s))
	})
}

// RawValue is any other value, kept as its complete DER element and re-emitted unchanged.
type RawValue struct {
	Tag       asn1.Tag
	FullBytes []byte
}

// String renders the value in the RFC 4514 hex form.
func (v RawValue) String() string { return "#" + hex.EncodeToString(v.FullBytes) }

func (v RawValue) marshal(b *cryptobyte.Builder) {
	b.AddBytes(v.FullBytes)
}

// DecodeAttributeValue decodes one complete DER element into its typed value.
// Elements that are not UTF8String, PrintableString or IA5String become a RawValue.
func DecodeAttributeValue(element []byte) (AttributeValue, error) {
	input := cryptobyte.String(element)
	var contents cryptobyte.String
	var tag asn1.Tag
	if !input.ReadAnyASN1(&contents, &tag) || !input.Empty() {
		return nil, ErrMalformed
	}

	switch tag {
	case asn1.UTF8String:
		if !utf8.Valid(contents) {
			return nil, ErrInvalidString
		}
		return UTF8String(contents), nil
	case asn1.PrintableString:
		if !isPrintable(contents) {
			return nil, ErrInvalidString
		}
		return PrintableString(contents), nil
	case asn1.IA5String:
		if !isASCII(contents) {
			return nil, ErrInvalidString
		}
		return IA5String(contents), nil
	default:
		full := make([]byte, len(element))
		copy(full, element)
		return RawValue{Tag: tag, FullBytes: full}, nil
	}
}

// isPrintable accepts the PrintableString alphabet plus '*' and '&', which
// appear in deployed certificates.
func isPrintable(s []byte) bool {
	for _, c := range s {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case c == ' ', c == '\'', c == '(', c == ')', c == '+', c == ',', c == '-', c == '.',
			c == '/', c == ':', c == '=', c == '?', c == '*', c == '&':
		default:
			return false
		}
	}
	return true
}

func isASCII(s []byte) bool {
	for _, c := range s {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
