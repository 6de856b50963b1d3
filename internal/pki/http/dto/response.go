package dto

import (
	"time"

	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
)

// CertificateResponse represents a certificate record in API responses.
// The encrypted CA private key is never exposed.
type CertificateResponse struct {
	ID               string     `json:"id"`
	SerialNumber     string     `json:"serial_number"`
	Fingerprint      string     `json:"fingerprint"`
	CertificatePEM   string     `json:"certificate_pem"`
	Subject          string     `json:"subject"`
	Issuer           string     `json:"issuer"`
	CommonName       string     `json:"common_name"`
	Organization     string     `json:"organization"`
	ValidFrom        time.Time  `json:"valid_from"`
	ValidUntil       time.Time  `json:"valid_until"`
	CertType         string     `json:"cert_type"`
	KeyUsage         []string   `json:"key_usage"`
	IssuerID         *string    `json:"issuer_id"`
	Revoked          bool       `json:"revoked"`
	RevokedAt        *time.Time `json:"revoked_at"`
	RevocationReason *string    `json:"revocation_reason"`
	EntityID         *string    `json:"entity_id"`
	EntityType       *string    `json:"entity_type"`
	CreatedAt        time.Time  `json:"created_at"`
}

// GenerateRootCAResponse is returned once by POST /v1/pki/ca/root/generate.
// SECURITY: PrivateKeyPEM is never retrievable again.
type GenerateRootCAResponse struct {
	CertificateResponse
	PrivateKeyPEM string `json:"private_key_pem"`
}

// ListCertificatesResponse wraps a list of certificates.
type ListCertificatesResponse struct {
	Data []CertificateResponse `json:"data"`
}

// MapCertificateToResponse converts a domain certificate to an API response.
func MapCertificateToResponse(cert *pkiDomain.Certificate) CertificateResponse {
	var issuerID *string
	if cert.IssuerID != nil {
		s := cert.IssuerID.String()
		issuerID = &s
	}

	keyUsage := cert.KeyUsage
	if keyUsage == nil {
		keyUsage = []string{}
	}

	return CertificateResponse{
		ID:               cert.ID.String(),
		SerialNumber:     cert.SerialNumber,
		Fingerprint:      cert.Fingerprint,
		CertificatePEM:   cert.CertificatePEM,
		Subject:          cert.Subject,
		Issuer:           cert.Issuer,
		CommonName:       cert.CommonName,
		Organization:     cert.Organization,
		ValidFrom:        cert.ValidFrom,
		ValidUntil:       cert.ValidUntil,
		CertType:         string(cert.CertType),
		KeyUsage:         keyUsage,
		IssuerID:         issuerID,
		Revoked:          cert.Revoked,
		RevokedAt:        cert.RevokedAt,
		RevocationReason: cert.RevocationReason,
		EntityID:         cert.EntityID,
		EntityType:       cert.EntityType,
		CreatedAt:        cert.CreatedAt,
	}
}

// MapIssuedCertificateToResponse converts a freshly generated root CA to its one-time response.
func MapIssuedCertificateToResponse(issued *pkiDomain.IssuedCertificate) GenerateRootCAResponse {
	return GenerateRootCAResponse{
		CertificateResponse: MapCertificateToResponse(issued.Certificate),
		PrivateKeyPEM:       issued.PrivateKeyPEM,
	}
}

// MapCertificatesToListResponse converts a list of certificates to an API response.
func MapCertificatesToListResponse(certs []*pkiDomain.Certificate) ListCertificatesResponse {
	data := make([]CertificateResponse, 0, len(certs))
	for _, cert := range certs {
		data = append(data, MapCertificateToResponse(cert))
	}
	return ListCertificatesResponse{Data: data}
}
