// Package domain defines certificate authority records, request options and errors.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CertType classifies a certificate by its role in the hierarchy.
type CertType string

// Certificate types.
const (
	CertTypeRootCA         CertType = "root_ca"
	CertTypeIntermediateCA CertType = "intermediate_ca"
	CertTypeAgentClient    CertType = "agent_client"
	CertTypeAppClient      CertType = "app_client"
	CertTypeAdminClient    CertType = "admin_client"
)

// IsCA reports whether the type can issue certificates.
func (t CertType) IsCA() bool {
	return t == CertTypeRootCA || t == CertTypeIntermediateCA
}

// IsLeaf reports whether the type is a client certificate issued from a CSR.
func (t CertType) IsLeaf() bool {
	switch t {
	case CertTypeAgentClient, CertTypeAppClient, CertTypeAdminClient:
		return true
	}
	return false
}

// Validate returns ErrInvalidCertType for unknown types.
func (t CertType) Validate() error {
	if t.IsCA() || t.IsLeaf() {
		return nil
	}
	return ErrInvalidCertType
}

// Key usage names stored with each certificate.
const (
	KeyUsageDigitalSignature = "digital_signature"
	KeyUsageKeyEncipherment  = "key_encipherment"
	KeyUsageKeyCertSign      = "key_cert_sign"
	KeyUsageCRLSign          = "crl_sign"
	KeyUsageClientAuth       = "client_auth"
)

// Certificate is an issued certificate. Records are append-only; only Revoke mutates them.
// PrivateKeyEncrypted is set for CA certificates only and holds a sealed PKCS#8 key.
type Certificate struct {
	ID                  uuid.UUID
	SerialNumber        string
	Fingerprint         string
	CertificatePEM      string
	PrivateKeyEncrypted *string
	Subject             string
	Issuer              string
	CommonName          string
	Organization        string
	ValidFrom           time.Time
	ValidUntil          time.Time
	CertType            CertType
	KeyUsage            []string
	IssuerID            *uuid.UUID
	Revoked             bool
	RevokedAt           *time.Time
	RevocationReason    *string
	EntityID            *string
	EntityType          *string
	CreatedAt           time.Time
}

// IssuedCertificate pairs a new certificate with its private key PEM. The key is
// only available in the response that created the certificate.
type IssuedCertificate struct {
	Certificate   *Certificate
	PrivateKeyPEM string
}

// CertificateFilter narrows a certificate listing. Nil fields are not filtered.
type CertificateFilter struct {
	CertType *CertType
	Revoked  *bool
	IssuerID *uuid.UUID
	Offset   int
	Limit    int
}

// Fingerprint returns "sha256:" followed by the lowercase colon-separated SHA-256 of der.
func Fingerprint(der []byte) string {
	sum := sha256.Sum256(der)
	encoded := hex.EncodeToString(sum[:])

	var sb strings.Builder
	sb.Grow(len("sha256:") + len(sum)*3)
	sb.WriteString("sha256:")
	for i := 0; i < len(encoded); i += 2 {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(encoded[i : i+2])
	}
	return sb.String()
}
