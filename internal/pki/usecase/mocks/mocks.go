// Package mocks provides testify mocks for the PKI use case.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
)

// MockPKIUseCase is a mock implementation of usecase.PKIUseCase.
type MockPKIUseCase struct {
	mock.Mock
}

// NewMockPKIUseCase creates a MockPKIUseCase that asserts its expectations on cleanup.
func NewMockPKIUseCase(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockPKIUseCase {
	m := &MockPKIUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPKIUseCase) GenerateRootCA(
	ctx context.Context,
	req *pkiDomain.RootCARequest,
) (*pkiDomain.IssuedCertificate, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pkiDomain.IssuedCertificate), args.Error(1)
}

func (m *MockPKIUseCase) GenerateIntermediateCA(
	ctx context.Context,
	req *pkiDomain.IntermediateCARequest,
) (*pkiDomain.Certificate, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pkiDomain.Certificate), args.Error(1)
}

func (m *MockPKIUseCase) SignCSR(ctx context.Context, req *pkiDomain.SignCSRRequest) (*pkiDomain.Certificate, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pkiDomain.Certificate), args.Error(1)
}

func (m *MockPKIUseCase) GetCAChain(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPKIUseCase) Revoke(ctx context.Context, id uuid.UUID, reason string) (*pkiDomain.Certificate, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pkiDomain.Certificate), args.Error(1)
}

func (m *MockPKIUseCase) Get(ctx context.Context, id uuid.UUID) (*pkiDomain.Certificate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pkiDomain.Certificate), args.Error(1)
}

func (m *MockPKIUseCase) List(
	ctx context.Context,
	filter pkiDomain.CertificateFilter,
) ([]*pkiDomain.Certificate, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*pkiDomain.Certificate), args.Error(1)
}
