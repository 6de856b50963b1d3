package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"

	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
	sealMocks "github.com/allisson/trustcore/internal/seal/usecase/mocks"
)

func TestAutoUnsealOnStart(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("sealed-vault-is-auto-unsealed", func(t *testing.T) {
		sealUC := sealMocks.NewMockSealUseCase(t)
		sealUC.On("Status", mock.Anything).Return(&sealDomain.SealStatus{Initialized: true, Sealed: true})
		sealUC.On("AutoUnseal", mock.Anything).Return(&sealDomain.SealStatus{Initialized: true}, nil)

		autoUnsealOnStart(ctx, sealUC, logger)
	})

	t.Run("uninitialized-vault-is-skipped", func(t *testing.T) {
		sealUC := sealMocks.NewMockSealUseCase(t)
		sealUC.On("Status", mock.Anything).Return(&sealDomain.SealStatus{})

		autoUnsealOnStart(ctx, sealUC, logger)
	})

	t.Run("missing-config-is-tolerated", func(t *testing.T) {
		sealUC := sealMocks.NewMockSealUseCase(t)
		sealUC.On("Status", mock.Anything).Return(&sealDomain.SealStatus{Initialized: true, Sealed: true})
		sealUC.On("AutoUnseal", mock.Anything).Return(nil, sealDomain.ErrAutoUnsealConfigNotFound)

		autoUnsealOnStart(ctx, sealUC, logger)
	})

	t.Run("provider-failure-is-tolerated", func(t *testing.T) {
		sealUC := sealMocks.NewMockSealUseCase(t)
		sealUC.On("Status", mock.Anything).Return(&sealDomain.SealStatus{Initialized: true, Sealed: true})
		sealUC.On("AutoUnseal", mock.Anything).Return(nil, &sealDomain.ProviderError{
			Op:        "decrypt",
			Transient: true,
			Err:       errors.New("throttled"),
		})

		autoUnsealOnStart(ctx, sealUC, logger)
	})
}
