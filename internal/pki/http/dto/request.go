// Package dto provides data transfer objects for the /v1/pki endpoints.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
	customValidation "github.com/allisson/trustcore/internal/validation"
)

// KeyOptionsRequest holds the optional key and subject settings of a CA.
type KeyOptionsRequest struct {
	KeyType      string `json:"key_type"`
	KeySize      int    `json:"key_size"`
	ValidityDays int    `json:"validity_days"`
	Country      string `json:"country"`
	State        string `json:"state"`
	Locality     string `json:"locality"`
}

func (o *KeyOptionsRequest) fields() []*validation.FieldRules {
	return []*validation.FieldRules{
		validation.Field(&o.KeyType,
			validation.In(string(pkiDomain.KeyTypeRSA), string(pkiDomain.KeyTypeECDSA)),
		),
		validation.Field(&o.KeySize,
			validation.In(2048, 4096, pkiDomain.ECDSAKeySize),
		),
		validation.Field(&o.ValidityDays,
			validation.Min(0),
			validation.Max(pkiDomain.MaxValidityDays),
		),
		validation.Field(&o.Country, customValidation.CountryCode),
		validation.Field(&o.State, customValidation.NoWhitespace, validation.Length(0, 128)),
		validation.Field(&o.Locality, customValidation.NoWhitespace, validation.Length(0, 128)),
	}
}

func (o *KeyOptionsRequest) toDomain() pkiDomain.KeyOptions {
	return pkiDomain.KeyOptions{
		KeyType:      pkiDomain.KeyType(o.KeyType),
		KeySize:      o.KeySize,
		ValidityDays: o.ValidityDays,
		Country:      o.Country,
		State:        o.State,
		Locality:     o.Locality,
	}
}

// GenerateRootCARequest contains the parameters for generating a root CA.
type GenerateRootCARequest struct {
	CommonName   string `json:"common_name"`
	Organization string `json:"organization"`
	KeyOptionsRequest
}

// Validate checks if the generate root CA request is valid.
func (r *GenerateRootCARequest) Validate() error {
	rules := append([]*validation.FieldRules{
		validation.Field(&r.CommonName, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Organization, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
	}, r.KeyOptionsRequest.fields()...)
	return validation.ValidateStruct(r, rules...)
}

// ToDomain converts the request to a domain request.
func (r *GenerateRootCARequest) ToDomain() *pkiDomain.RootCARequest {
	return &pkiDomain.RootCARequest{
		CommonName:   r.CommonName,
		Organization: r.Organization,
		Options:      r.KeyOptionsRequest.toDomain(),
	}
}

// GenerateIntermediateCARequest contains the parameters for generating an intermediate CA.
type GenerateIntermediateCARequest struct {
	CommonName   string `json:"common_name"`
	Organization string `json:"organization"`
	ParentCAID   string `json:"parent_ca_id"`
	KeyOptionsRequest
}

// Validate checks if the generate intermediate CA request is valid.
func (r *GenerateIntermediateCARequest) Validate() error {
	rules := append([]*validation.FieldRules{
		validation.Field(&r.CommonName, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.Organization, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.ParentCAID, validation.Required, uuidRule),
	}, r.KeyOptionsRequest.fields()...)
	return validation.ValidateStruct(r, rules...)
}

// ToDomain converts the request to a domain request. Call Validate first.
func (r *GenerateIntermediateCARequest) ToDomain() *pkiDomain.IntermediateCARequest {
	return &pkiDomain.IntermediateCARequest{
		CommonName:   r.CommonName,
		Organization: r.Organization,
		ParentCAID:   uuid.MustParse(r.ParentCAID),
		Options:      r.KeyOptionsRequest.toDomain(),
	}
}

// SignCSRRequest contains a PEM encoded CSR and the CA that signs it.
type SignCSRRequest struct {
	CSR          string `json:"csr"`
	CAID         string `json:"ca_id"`
	CertType     string `json:"cert_type"`
	ValidityDays int    `json:"validity_days"`
	EntityID     string `json:"entity_id"`
	EntityType   string `json:"entity_type"`
}

// Validate checks if the sign CSR request is valid.
func (r *SignCSRRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CSR,
			validation.Required,
			customValidation.PEMBlock("CERTIFICATE REQUEST"),
		),
		validation.Field(&r.CAID, validation.Required, uuidRule),
		validation.Field(&r.CertType,
			validation.Required,
			validation.In(
				string(pkiDomain.CertTypeAgentClient),
				string(pkiDomain.CertTypeAppClient),
				string(pkiDomain.CertTypeAdminClient),
			),
		),
		validation.Field(&r.ValidityDays, validation.Min(0), validation.Max(pkiDomain.MaxValidityDays)),
		validation.Field(&r.EntityID, customValidation.NoWhitespace, validation.Length(0, 255)),
		validation.Field(&r.EntityType, customValidation.NoWhitespace, validation.Length(0, 64)),
	)
}

// ToDomain converts the request to a domain request. Call Validate first.
func (r *SignCSRRequest) ToDomain() *pkiDomain.SignCSRRequest {
	return &pkiDomain.SignCSRRequest{
		CSRPEM:       r.CSR,
		CAID:         uuid.MustParse(r.CAID),
		CertType:     pkiDomain.CertType(r.CertType),
		ValidityDays: r.ValidityDays,
		EntityID:     r.EntityID,
		EntityType:   r.EntityType,
	}
}

// RevokeCertificateRequest carries the revocation reason.
type RevokeCertificateRequest struct {
	Reason string `json:"reason"`
}

// Validate checks if the revoke request is valid.
func (r *RevokeCertificateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Reason, validation.Required, customValidation.NotBlank, validation.Length(1, 1024)),
	)
}

var uuidRule = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_uuid", "must be a valid UUID")
	}
	return nil
})
