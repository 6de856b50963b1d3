package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeyType is the asymmetric algorithm of a generated key pair.
type KeyType string

// Key types. ECDSA keys always use P-384.
const (
	KeyTypeRSA   KeyType = "rsa"
	KeyTypeECDSA KeyType = "ecdsa"
)

// Key and validity limits.
const (
	DefaultRSAKeySize = 2048
	ECDSAKeySize      = 384
	MaxValidityDays   = 36500
)

// KeyOptions controls key generation and the validity window of a CA certificate.
type KeyOptions struct {
	KeyType      KeyType
	KeySize      int
	ValidityDays int
	Country      string
	State        string
	Locality     string
}

// Normalize fills the key type, key size and validity days when unset.
func (o *KeyOptions) Normalize(defaultValidityDays int) {
	if o.KeyType == "" {
		o.KeyType = KeyTypeRSA
	}
	if o.KeySize == 0 {
		switch o.KeyType {
		case KeyTypeRSA:
			o.KeySize = DefaultRSAKeySize
		case KeyTypeECDSA:
			o.KeySize = ECDSAKeySize
		}
	}
	if o.ValidityDays == 0 {
		o.ValidityDays = defaultValidityDays
	}
}

// Validate checks the key type and size pair and the validity range.
func (o *KeyOptions) Validate() error {
	switch o.KeyType {
	case KeyTypeRSA:
		if o.KeySize != 2048 && o.KeySize != 4096 {
			return ErrInvalidKeySize
		}
	case KeyTypeECDSA:
		if o.KeySize != ECDSAKeySize {
			return ErrInvalidKeySize
		}
	default:
		return ErrInvalidKeyType
	}
	if o.Country != "" && !isCountryCode(o.Country) {
		return ErrInvalidCountry
	}
	return ValidateValidityDays(o.ValidityDays)
}

// ValidateValidityDays checks 1 <= days <= MaxValidityDays.
func ValidateValidityDays(days int) error {
	if days < 1 || days > MaxValidityDays {
		return ErrInvalidValidity
	}
	return nil
}

// RootCARequest describes a self-signed root CA.
type RootCARequest struct {
	CommonName   string
	Organization string
	Options      KeyOptions
}

// Validate checks names and key options.
func (r *RootCARequest) Validate() error {
	return validateNames(r.CommonName, r.Organization, &r.Options)
}

// IntermediateCARequest describes a CA signed by ParentCAID.
type IntermediateCARequest struct {
	CommonName   string
	Organization string
	ParentCAID   uuid.UUID
	Options      KeyOptions
}

// Validate checks names and key options.
func (r *IntermediateCARequest) Validate() error {
	return validateNames(r.CommonName, r.Organization, &r.Options)
}

// SignCSRRequest describes a leaf certificate issued from a PEM encoded CSR.
type SignCSRRequest struct {
	CSRPEM       string
	CAID         uuid.UUID
	CertType     CertType
	ValidityDays int
	EntityID     string
	EntityType   string
}

// Validate checks the certificate type and validity range.
func (r *SignCSRRequest) Validate() error {
	if !r.CertType.IsLeaf() {
		return ErrInvalidCertType
	}
	if strings.TrimSpace(r.CSRPEM) == "" {
		return ErrInvalidCSR
	}
	return ValidateValidityDays(r.ValidityDays)
}

func validateNames(commonName, organization string, opts *KeyOptions) error {
	if strings.TrimSpace(commonName) == "" {
		return ErrInvalidCommonName
	}
	if strings.TrimSpace(organization) == "" {
		return ErrInvalidOrganization
	}
	return opts.Validate()
}

func isCountryCode(s string) bool {
	return len(s) == 2 && 'A' <= s[0] && s[0] <= 'Z' && 'A' <= s[1] && s[1] <= 'Z'
}

// ValidityWindow returns [now, now+days) truncated to whole seconds, as encoded in certificates.
func ValidityWindow(now time.Time, days int) (notBefore, notAfter time.Time) {
	notBefore = now.UTC().Truncate(time.Second)
	return notBefore, notBefore.Add(time.Duration(days) * 24 * time.Hour)
}
