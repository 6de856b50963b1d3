package usecase_test

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"

	auditMocks "github.com/allisson/trustcore/internal/audit/usecase/mocks"
	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
	cryptoService "github.com/allisson/trustcore/internal/crypto/service"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
	sealService "github.com/allisson/trustcore/internal/seal/service"
	"github.com/allisson/trustcore/internal/seal/usecase"
)

type txManagerStub struct{}

func (txManagerStub) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// sha256Verifier keeps tests fast; the Argon2id verifier is covered separately.
type sha256Verifier struct{}

func (sha256Verifier) Hash(key []byte) (string, error) {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:]), nil
}

func (v sha256Verifier) Verify(key []byte, hash string) (bool, error) {
	expected, _ := v.Hash(key)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(hash)) == 1, nil
}

type memSealConfigRepo struct {
	mu  sync.Mutex
	cfg *sealDomain.SealConfig
}

func (r *memSealConfigRepo) Create(_ context.Context, cfg *sealDomain.SealConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	return nil
}

func (r *memSealConfigRepo) Get(_ context.Context) (*sealDomain.SealConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg == nil {
		return nil, sealDomain.ErrSealConfigNotFound
	}
	return r.cfg, nil
}

type memAutoUnsealRepo struct {
	mu      sync.Mutex
	configs []*sealDomain.AutoUnsealConfig
}

func (r *memAutoUnsealRepo) Create(_ context.Context, cfg *sealDomain.AutoUnsealConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = append(r.configs, cfg)
	return nil
}

func (r *memAutoUnsealRepo) GetActive(_ context.Context) (*sealDomain.AutoUnsealConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cfg := range r.configs {
		if cfg.Active {
			return cfg, nil
		}
	}
	return nil, sealDomain.ErrAutoUnsealConfigNotFound
}

func (r *memAutoUnsealRepo) List(_ context.Context) ([]*sealDomain.AutoUnsealConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*sealDomain.AutoUnsealConfig(nil), r.configs...), nil
}

func (r *memAutoUnsealRepo) UpdateWrappedShares(_ context.Context, id uuid.UUID, wrapped [][]byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cfg := range r.configs {
		if cfg.ID == id {
			cfg.WrappedShares = wrapped
			return nil
		}
	}
	return sealDomain.ErrAutoUnsealConfigNotFound
}

type fixture struct {
	uc       usecase.SealUseCase
	sealRepo *memSealConfigRepo
	autoRepo *memAutoUnsealRepo
	audit    *auditMocks.RecorderSpy
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, providers sealService.ProviderFactory) *fixture {
	t.Helper()
	if providers == nil {
		providers = sealService.NewProviderFactory(cryptoService.NewKMSService())
	}

	f := &fixture{
		sealRepo: &memSealConfigRepo{},
		autoRepo: &memAutoUnsealRepo{},
		audit:    &auditMocks.RecorderSpy{},
	}
	f.uc = usecase.NewSealUseCase(
		usecase.Config{Algorithm: cryptoDomain.AESGCM},
		txManagerStub{},
		f.sealRepo,
		f.autoRepo,
		sha256Verifier{},
		providers,
		cryptoService.NewAEADManager(),
		f.audit,
		discardLogger(),
	)
	return f
}
