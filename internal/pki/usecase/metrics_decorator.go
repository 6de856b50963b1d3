package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/trustcore/internal/metrics"
	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
)

// pkiUseCaseWithMetrics decorates PKIUseCase with metrics instrumentation.
type pkiUseCaseWithMetrics struct {
	next    PKIUseCase
	metrics metrics.BusinessMetrics
}

// NewPKIUseCaseWithMetrics wraps a PKIUseCase with metrics recording.
func NewPKIUseCaseWithMetrics(useCase PKIUseCase, m metrics.BusinessMetrics) PKIUseCase {
	return &pkiUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (p *pkiUseCaseWithMetrics) observe(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	p.metrics.RecordOperation(ctx, "pki", operation, status)
	p.metrics.RecordDuration(ctx, "pki", operation, time.Since(start), status)
}

func (p *pkiUseCaseWithMetrics) countCertificate(ctx context.Context, cert *pkiDomain.Certificate, event string) {
	if cert != nil {
		p.metrics.RecordCertificate(ctx, string(cert.CertType), event)
	}
}

// GenerateRootCA records metrics for root CA generation.
func (p *pkiUseCaseWithMetrics) GenerateRootCA(
	ctx context.Context,
	req *pkiDomain.RootCARequest,
) (*pkiDomain.IssuedCertificate, error) {
	start := time.Now()
	issued, err := p.next.GenerateRootCA(ctx, req)
	p.observe(ctx, "generate_root_ca", start, err)
	if err == nil {
		p.countCertificate(ctx, issued.Certificate, metrics.CertificateIssued)
	}
	return issued, err
}

// GenerateIntermediateCA records metrics for intermediate CA generation.
func (p *pkiUseCaseWithMetrics) GenerateIntermediateCA(
	ctx context.Context,
	req *pkiDomain.IntermediateCARequest,
) (*pkiDomain.Certificate, error) {
	start := time.Now()
	cert, err := p.next.GenerateIntermediateCA(ctx, req)
	p.observe(ctx, "generate_intermediate_ca", start, err)
	if err == nil {
		p.countCertificate(ctx, cert, metrics.CertificateIssued)
	}
	return cert, err
}

// SignCSR records metrics for CSR signing.
func (p *pkiUseCaseWithMetrics) SignCSR(
	ctx context.Context,
	req *pkiDomain.SignCSRRequest,
) (*pkiDomain.Certificate, error) {
	start := time.Now()
	cert, err := p.next.SignCSR(ctx, req)
	p.observe(ctx, "sign_csr", start, err)
	if err == nil {
		p.countCertificate(ctx, cert, metrics.CertificateIssued)
	}
	return cert, err
}

// GetCAChain records metrics for CA chain retrieval.
func (p *pkiUseCaseWithMetrics) GetCAChain(ctx context.Context) (string, error) {
	start := time.Now()
	bundle, err := p.next.GetCAChain(ctx)
	p.observe(ctx, "get_ca_chain", start, err)
	return bundle, err
}

// Revoke records metrics for certificate revocation.
func (p *pkiUseCaseWithMetrics) Revoke(
	ctx context.Context,
	id uuid.UUID,
	reason string,
) (*pkiDomain.Certificate, error) {
	start := time.Now()
	cert, err := p.next.Revoke(ctx, id, reason)
	p.observe(ctx, "revoke", start, err)
	if err == nil {
		p.countCertificate(ctx, cert, metrics.CertificateRevoked)
	}
	return cert, err
}

// Get records metrics for certificate retrieval.
func (p *pkiUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*pkiDomain.Certificate, error) {
	start := time.Now()
	cert, err := p.next.Get(ctx, id)
	p.observe(ctx, "get", start, err)
	return cert, err
}

// List records metrics for certificate listing.
func (p *pkiUseCaseWithMetrics) List(
	ctx context.Context,
	filter pkiDomain.CertificateFilter,
) ([]*pkiDomain.Certificate, error) {
	start := time.Now()
	certs, err := p.next.List(ctx, filter)
	p.observe(ctx, "list", start, err)
	return certs, err
}
