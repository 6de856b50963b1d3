// Package mocks provides testify mocks for the seal use case and its KMS collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
	sealService "github.com/allisson/trustcore/internal/seal/service"
	"github.com/allisson/trustcore/internal/seal/usecase"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockSealUseCase is a mock implementation of usecase.SealUseCase.
type MockSealUseCase struct {
	mock.Mock
}

// NewMockSealUseCase creates a MockSealUseCase that asserts its expectations on cleanup.
func NewMockSealUseCase(t testingT) *MockSealUseCase {
	m := &MockSealUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSealUseCase) Restore(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSealUseCase) Initialize(ctx context.Context, totalShares, threshold int) (*sealDomain.InitResult, error) {
	args := m.Called(ctx, totalShares, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sealDomain.InitResult), args.Error(1)
}

func (m *MockSealUseCase) Unseal(ctx context.Context, share sealDomain.Share) (*sealDomain.SealStatus, error) {
	args := m.Called(ctx, share)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sealDomain.SealStatus), args.Error(1)
}

func (m *MockSealUseCase) Seal(ctx context.Context) (*sealDomain.SealStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sealDomain.SealStatus), args.Error(1)
}

func (m *MockSealUseCase) Status(ctx context.Context) *sealDomain.SealStatus {
	args := m.Called(ctx)
	return args.Get(0).(*sealDomain.SealStatus)
}

func (m *MockSealUseCase) WithMasterKey(ctx context.Context, purpose string, fn func(usecase.Sealer) error) error {
	args := m.Called(ctx, purpose, fn)
	return args.Error(0)
}

func (m *MockSealUseCase) AutoUnseal(ctx context.Context) (*sealDomain.SealStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sealDomain.SealStatus), args.Error(1)
}

func (m *MockSealUseCase) CreateAutoUnsealConfig(ctx context.Context, cfg *sealDomain.AutoUnsealConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockSealUseCase) ListAutoUnsealConfigs(ctx context.Context) ([]*sealDomain.AutoUnsealConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sealDomain.AutoUnsealConfig), args.Error(1)
}

// MockKMSProvider is a mock implementation of service.KMSProvider.
type MockKMSProvider struct {
	mock.Mock
}

// NewMockKMSProvider creates a MockKMSProvider that asserts its expectations on cleanup.
func NewMockKMSProvider(t testingT) *MockKMSProvider {
	m := &MockKMSProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockKMSProvider) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSProvider) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSProvider) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockProviderFactory is a mock implementation of service.ProviderFactory.
type MockProviderFactory struct {
	mock.Mock
}

// NewMockProviderFactory creates a MockProviderFactory that asserts its expectations on cleanup.
func NewMockProviderFactory(t testingT) *MockProviderFactory {
	m := &MockProviderFactory{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockProviderFactory) Open(
	ctx context.Context,
	cfg *sealDomain.AutoUnsealConfig,
) (sealService.KMSProvider, error) {
	args := m.Called(ctx, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(sealService.KMSProvider), args.Error(1)
}
