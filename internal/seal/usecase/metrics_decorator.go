package usecase

import (
	"context"
	"time"

	"github.com/allisson/trustcore/internal/metrics"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
)

// sealUseCaseWithMetrics decorates SealUseCase with metrics instrumentation.
type sealUseCaseWithMetrics struct {
	next    SealUseCase
	metrics metrics.BusinessMetrics
}

// NewSealUseCaseWithMetrics wraps a SealUseCase with metrics recording.
func NewSealUseCaseWithMetrics(useCase SealUseCase, m metrics.BusinessMetrics) SealUseCase {
	return &sealUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *sealUseCaseWithMetrics) observe(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	s.metrics.RecordOperation(ctx, "seal", operation, status)
	s.metrics.RecordDuration(ctx, "seal", operation, time.Since(start), status)
}

// Restore is not instrumented; it runs once at startup.
func (s *sealUseCaseWithMetrics) Restore(ctx context.Context) error {
	return s.next.Restore(ctx)
}

// Initialize records metrics for vault initialization.
func (s *sealUseCaseWithMetrics) Initialize(
	ctx context.Context,
	totalShares, threshold int,
) (*sealDomain.InitResult, error) {
	start := time.Now()
	result, err := s.next.Initialize(ctx, totalShares, threshold)
	s.observe(ctx, "initialize", start, err)
	return result, err
}

// Unseal records metrics for share submissions.
func (s *sealUseCaseWithMetrics) Unseal(ctx context.Context, share sealDomain.Share) (*sealDomain.SealStatus, error) {
	start := time.Now()
	status, err := s.next.Unseal(ctx, share)
	s.observe(ctx, "unseal", start, err)
	return status, err
}

// Seal records metrics for seal operations.
func (s *sealUseCaseWithMetrics) Seal(ctx context.Context) (*sealDomain.SealStatus, error) {
	start := time.Now()
	status, err := s.next.Seal(ctx)
	s.observe(ctx, "seal", start, err)
	return status, err
}

// Status is a pure read and is not instrumented.
func (s *sealUseCaseWithMetrics) Status(ctx context.Context) *sealDomain.SealStatus {
	return s.next.Status(ctx)
}

// WithMasterKey records metrics for master key usage.
func (s *sealUseCaseWithMetrics) WithMasterKey(ctx context.Context, purpose string, fn func(Sealer) error) error {
	start := time.Now()
	err := s.next.WithMasterKey(ctx, purpose, fn)
	s.observe(ctx, "with_master_key", start, err)
	return err
}

// AutoUnseal records metrics for auto-unseal runs.
func (s *sealUseCaseWithMetrics) AutoUnseal(ctx context.Context) (*sealDomain.SealStatus, error) {
	start := time.Now()
	status, err := s.next.AutoUnseal(ctx)
	s.observe(ctx, "auto_unseal", start, err)
	return status, err
}

// CreateAutoUnsealConfig records metrics for auto-unseal config creation.
func (s *sealUseCaseWithMetrics) CreateAutoUnsealConfig(
	ctx context.Context,
	cfg *sealDomain.AutoUnsealConfig,
) error {
	start := time.Now()
	err := s.next.CreateAutoUnsealConfig(ctx, cfg)
	s.observe(ctx, "auto_unseal_config_create", start, err)
	return err
}

// ListAutoUnsealConfigs records metrics for auto-unseal config listing.
func (s *sealUseCaseWithMetrics) ListAutoUnsealConfigs(ctx context.Context) ([]*sealDomain.AutoUnsealConfig, error) {
	start := time.Now()
	configs, err := s.next.ListAutoUnsealConfigs(ctx)
	s.observe(ctx, "auto_unseal_config_list", start, err)
	return configs, err
}
