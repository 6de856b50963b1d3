package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
)

// CertificateRepository persists certificate records.
type CertificateRepository interface {
	// Create returns pkiDomain.ErrSerialCollision when the serial number or fingerprint exists.
	Create(ctx context.Context, cert *pkiDomain.Certificate) error
	// Get returns pkiDomain.ErrCertificateNotFound when id does not exist.
	Get(ctx context.Context, id uuid.UUID) (*pkiDomain.Certificate, error)
	List(ctx context.Context, filter pkiDomain.CertificateFilter) ([]*pkiDomain.Certificate, error)
	// ListActiveCAs returns every non-revoked root and intermediate CA ordered by creation.
	ListActiveCAs(ctx context.Context) ([]*pkiDomain.Certificate, error)
	// Revoke marks an unrevoked certificate as revoked. It returns
	// pkiDomain.ErrCertificateAlreadyRevoked when no unrevoked row matched.
	Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time, reason string) error
}

// PKIUseCase is the certificate authority engine.
type PKIUseCase interface {
	// GenerateRootCA issues a self-signed root CA. The private key PEM is returned once.
	GenerateRootCA(ctx context.Context, req *pkiDomain.RootCARequest) (*pkiDomain.IssuedCertificate, error)
	GenerateIntermediateCA(ctx context.Context, req *pkiDomain.IntermediateCARequest) (*pkiDomain.Certificate, error)
	SignCSR(ctx context.Context, req *pkiDomain.SignCSRRequest) (*pkiDomain.Certificate, error)
	// GetCAChain returns the PEM bundle of non-revoked CAs, roots first.
	GetCAChain(ctx context.Context) (string, error)
	Revoke(ctx context.Context, id uuid.UUID, reason string) (*pkiDomain.Certificate, error)
	Get(ctx context.Context, id uuid.UUID) (*pkiDomain.Certificate, error)
	List(ctx context.Context, filter pkiDomain.CertificateFilter) ([]*pkiDomain.Certificate, error)
}
