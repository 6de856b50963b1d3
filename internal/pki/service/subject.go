package service

import (
	"encoding/asn1"
	"strings"

	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
	"github.com/allisson/trustcore/internal/pki/x509der"
)

// CASubject builds a CA subject ordered C, ST, L, O, CN, leaving out empty attributes.
func CASubject(commonName, organization string, opts pkiDomain.KeyOptions) x509der.Name {
	var name x509der.Name
	for _, attr := range []struct {
		oid   asn1.ObjectIdentifier
		value string
	}{
		{x509der.OIDCountry, opts.Country},
		{x509der.OIDState, opts.State},
		{x509der.OIDLocality, opts.Locality},
		{x509der.OIDOrganization, organization},
		{x509der.OIDCommonName, commonName},
	} {
		if attr.value != "" {
			name = append(name, x509der.NewTextAttribute(attr.oid, attr.value))
		}
	}
	return name
}

// LeafSubject builds the subject of a certificate issued from a request. It keeps
// the request's C, ST, L, OU and CN attributes with their original string types,
// replaces any organization with the issuing CA's, and drops other attributes.
func LeafSubject(requested, caSubject x509der.Name) x509der.Name {
	var name x509der.Name
	name = append(name, requested.All(x509der.OIDCountry)...)
	name = append(name, requested.All(x509der.OIDState)...)
	name = append(name, requested.All(x509der.OIDLocality)...)
	name = append(name, caSubject.All(x509der.OIDOrganization)...)
	name = append(name, requested.All(x509der.OIDOrganizationalUnit)...)
	name = append(name, requested.All(x509der.OIDCommonName)...)
	return name
}

// CommonName returns the first typed, non-blank CN of name.
func CommonName(name x509der.Name) (string, bool) {
	return textAttribute(name, x509der.OIDCommonName)
}

// Organization returns the first typed, non-blank O of name.
func Organization(name x509der.Name) (string, bool) {
	return textAttribute(name, x509der.OIDOrganization)
}

func textAttribute(name x509der.Name, oid asn1.ObjectIdentifier) (string, bool) {
	atv, ok := name.Get(oid)
	if !ok {
		return "", false
	}
	if _, raw := atv.Value.(x509der.RawValue); raw {
		return "", false
	}
	value := atv.Value.String()
	if strings.TrimSpace(value) == "" {
		return "", false
	}
	return value, true
}
