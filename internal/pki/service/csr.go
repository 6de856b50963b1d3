package service

import (
	"crypto"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
	"github.com/allisson/trustcore/internal/pki/x509der"
)

// CSR is a verified certificate request whose subject keeps each attribute's string type.
type CSR struct {
	Subject    x509der.Name
	PublicKey  crypto.PublicKey
	CommonName string
}

// ParseCSR decodes a PEM certificate request, checks its self-signature and decodes
// its subject. A request without a common name is rejected.
func ParseCSR(csrPEM string) (*CSR, error) {
	block, _ := pem.Decode([]byte(csrPEM))
	if block == nil || (block.Type != "CERTIFICATE REQUEST" && block.Type != "NEW CERTIFICATE REQUEST") {
		return nil, fmt.Errorf("%w: expected a CERTIFICATE REQUEST PEM block", pkiDomain.ErrInvalidCSR)
	}

	req, err := x509.ParseCertificateRequest(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkiDomain.ErrInvalidCSR, err)
	}
	if err := req.CheckSignature(); err != nil {
		return nil, fmt.Errorf("%w: signature: %v", pkiDomain.ErrInvalidCSR, err)
	}

	subject, err := x509der.ParseName(req.RawSubject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject: %v", pkiDomain.ErrInvalidCSR, err)
	}

	commonName, ok := CommonName(subject)
	if !ok {
		return nil, fmt.Errorf("%w: subject has no common name", pkiDomain.ErrInvalidCSR)
	}

	return &CSR{
		Subject:    subject,
		PublicKey:  req.PublicKey,
		CommonName: commonName,
	}, nil
}
