package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/trustcore/internal/metrics"
	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
	"github.com/allisson/trustcore/internal/pki/usecase"
	pkiMocks "github.com/allisson/trustcore/internal/pki/usecase/mocks"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *mockBusinessMetrics) RecordCertificate(ctx context.Context, certType, event string) {
	m.Called(ctx, certType, event)
}

func expectMetrics(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "pki", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "pki", operation, mock.AnythingOfType("time.Duration"), status).Return().Once()
}

func TestPKIUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("GenerateRootCA_Success", func(t *testing.T) {
		next := pkiMocks.NewMockPKIUseCase(t)
		m := &mockBusinessMetrics{}
		uc := usecase.NewPKIUseCaseWithMetrics(next, m)

		req := &pkiDomain.RootCARequest{CommonName: "Root", Organization: "Acme"}
		expected := &pkiDomain.IssuedCertificate{
			Certificate: &pkiDomain.Certificate{ID: uuid.New(), CertType: pkiDomain.CertTypeRootCA},
		}
		next.On("GenerateRootCA", ctx, req).Return(expected, nil).Once()
		expectMetrics(m, ctx, "generate_root_ca", "success")
		m.On("RecordCertificate", ctx, "root_ca", metrics.CertificateIssued).Return().Once()

		issued, err := uc.GenerateRootCA(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, expected, issued)
		m.AssertExpectations(t)
	})

	t.Run("GenerateIntermediateCA_Error", func(t *testing.T) {
		next := pkiMocks.NewMockPKIUseCase(t)
		m := &mockBusinessMetrics{}
		uc := usecase.NewPKIUseCaseWithMetrics(next, m)

		req := &pkiDomain.IntermediateCARequest{CommonName: "Inter", Organization: "Acme"}
		next.On("GenerateIntermediateCA", ctx, req).Return(nil, pkiDomain.ErrNotACA).Once()
		expectMetrics(m, ctx, "generate_intermediate_ca", "error")

		cert, err := uc.GenerateIntermediateCA(ctx, req)
		assert.Nil(t, cert)
		assert.ErrorIs(t, err, pkiDomain.ErrNotACA)
		m.AssertExpectations(t)
		m.AssertNotCalled(t, "RecordCertificate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("SignCSR_Success", func(t *testing.T) {
		next := pkiMocks.NewMockPKIUseCase(t)
		m := &mockBusinessMetrics{}
		uc := usecase.NewPKIUseCaseWithMetrics(next, m)

		req := &pkiDomain.SignCSRRequest{CertType: pkiDomain.CertTypeAgentClient}
		expected := &pkiDomain.Certificate{ID: uuid.New(), CertType: pkiDomain.CertTypeAgentClient}
		next.On("SignCSR", ctx, req).Return(expected, nil).Once()
		expectMetrics(m, ctx, "sign_csr", "success")
		m.On("RecordCertificate", ctx, "agent_client", metrics.CertificateIssued).Return().Once()

		cert, err := uc.SignCSR(ctx, req)
		assert.NoError(t, err)
		assert.Equal(t, expected, cert)
		m.AssertExpectations(t)
	})

	t.Run("GetCAChain_Error", func(t *testing.T) {
		next := pkiMocks.NewMockPKIUseCase(t)
		m := &mockBusinessMetrics{}
		uc := usecase.NewPKIUseCaseWithMetrics(next, m)

		dbErr := errors.New("db down")
		next.On("GetCAChain", ctx).Return("", dbErr).Once()
		expectMetrics(m, ctx, "get_ca_chain", "error")

		bundle, err := uc.GetCAChain(ctx)
		assert.Empty(t, bundle)
		assert.ErrorIs(t, err, dbErr)
		m.AssertExpectations(t)
	})

	t.Run("Revoke_Success", func(t *testing.T) {
		next := pkiMocks.NewMockPKIUseCase(t)
		m := &mockBusinessMetrics{}
		uc := usecase.NewPKIUseCaseWithMetrics(next, m)

		id := uuid.New()
		expected := &pkiDomain.Certificate{ID: id, Revoked: true, CertType: pkiDomain.CertTypeAppClient}
		next.On("Revoke", ctx, id, "compromised").Return(expected, nil).Once()
		expectMetrics(m, ctx, "revoke", "success")
		m.On("RecordCertificate", ctx, "app_client", metrics.CertificateRevoked).Return().Once()

		cert, err := uc.Revoke(ctx, id, "compromised")
		assert.NoError(t, err)
		assert.Equal(t, expected, cert)
		m.AssertExpectations(t)
	})

	t.Run("Get_Error", func(t *testing.T) {
		next := pkiMocks.NewMockPKIUseCase(t)
		m := &mockBusinessMetrics{}
		uc := usecase.NewPKIUseCaseWithMetrics(next, m)

		id := uuid.New()
		next.On("Get", ctx, id).Return(nil, pkiDomain.ErrCertificateNotFound).Once()
		expectMetrics(m, ctx, "get", "error")

		cert, err := uc.Get(ctx, id)
		assert.Nil(t, cert)
		assert.ErrorIs(t, err, pkiDomain.ErrCertificateNotFound)
		m.AssertExpectations(t)
	})

	t.Run("List_Success", func(t *testing.T) {
		next := pkiMocks.NewMockPKIUseCase(t)
		m := &mockBusinessMetrics{}
		uc := usecase.NewPKIUseCaseWithMetrics(next, m)

		filter := pkiDomain.CertificateFilter{Limit: 10}
		expected := []*pkiDomain.Certificate{{ID: uuid.New()}}
		next.On("List", ctx, filter).Return(expected, nil).Once()
		expectMetrics(m, ctx, "list", "success")

		certs, err := uc.List(ctx, filter)
		assert.NoError(t, err)
		assert.Equal(t, expected, certs)
		m.AssertExpectations(t)
	})
}
