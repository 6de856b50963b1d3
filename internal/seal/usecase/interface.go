package usecase

import (
	"context"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
)

// SealConfigRepository persists the single seal configuration row.
type SealConfigRepository interface {
	Create(ctx context.Context, cfg *sealDomain.SealConfig) error
	// Get returns sealDomain.ErrSealConfigNotFound when the vault was never initialized.
	Get(ctx context.Context) (*sealDomain.SealConfig, error)
}

// AutoUnsealConfigRepository persists auto-unseal provider configurations.
type AutoUnsealConfigRepository interface {
	Create(ctx context.Context, cfg *sealDomain.AutoUnsealConfig) error
	// GetActive returns sealDomain.ErrAutoUnsealConfigNotFound when no config is active.
	GetActive(ctx context.Context) (*sealDomain.AutoUnsealConfig, error)
	List(ctx context.Context) ([]*sealDomain.AutoUnsealConfig, error)
	UpdateWrappedShares(ctx context.Context, id uuid.UUID, wrappedShares [][]byte) error
}

// Sealer encrypts and decrypts with a key derived from the master key. A Sealer
// is only valid inside the WithMasterKey callback that produced it.
type Sealer interface {
	Seal(plaintext, aad []byte) (cryptoDomain.SealedBlob, error)
	Open(blob cryptoDomain.SealedBlob, aad []byte) ([]byte, error)
}

// KeyHolder grants scoped use of the master key without exposing it.
type KeyHolder interface {
	// WithMasterKey runs fn with a Sealer bound to the sub-key for purpose. It fails
	// with sealDomain.ErrVaultSealed unless the vault is unsealed, and a concurrent
	// Seal waits until fn returns.
	WithMasterKey(ctx context.Context, purpose string, fn func(Sealer) error) error
}

// SealUseCase is the seal state machine: Uninitialized -> Sealed <-> Unsealed.
type SealUseCase interface {
	KeyHolder

	// Restore loads the persisted seal configuration after a process start.
	Restore(ctx context.Context) error
	Initialize(ctx context.Context, totalShares, threshold int) (*sealDomain.InitResult, error)
	Unseal(ctx context.Context, share sealDomain.Share) (*sealDomain.SealStatus, error)
	Seal(ctx context.Context) (*sealDomain.SealStatus, error)
	Status(ctx context.Context) *sealDomain.SealStatus

	// AutoUnseal unwraps the shares stored with the active auto-unseal config and feeds them to Unseal.
	AutoUnseal(ctx context.Context) (*sealDomain.SealStatus, error)
	CreateAutoUnsealConfig(ctx context.Context, cfg *sealDomain.AutoUnsealConfig) error
	ListAutoUnsealConfigs(ctx context.Context) ([]*sealDomain.AutoUnsealConfig, error)
}
