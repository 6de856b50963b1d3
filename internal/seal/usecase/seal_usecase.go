// Package usecase implements the seal state machine and auto-unseal.
//
// The master key exists only in memory while the vault is unsealed. Initialize
// splits a fresh key into threshold shares and persists an Argon2id hash of it;
// Unseal accumulates shares until the threshold is reached and accepts the
// reconstructed key only if it matches that hash. Collaborators never see the
// key: WithMasterKey hands them a Sealer bound to an HKDF sub-key for the
// duration of a callback.
//
// All transitions are serialized by one RWMutex. Status and WithMasterKey take
// the read side, so they run concurrently with each other while Seal waits for
// in-flight WithMasterKey calls before wiping the key.
package usecase

import (
	"context"
	"crypto/rand"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
	auditUsecase "github.com/allisson/trustcore/internal/audit/usecase"
	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
	cryptoService "github.com/allisson/trustcore/internal/crypto/service"
	"github.com/allisson/trustcore/internal/database"
	apperrors "github.com/allisson/trustcore/internal/errors"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
	sealService "github.com/allisson/trustcore/internal/seal/service"
	"github.com/allisson/trustcore/internal/seal/shamir"
)

const auditResource = "vault"

// Config holds seal use case configuration.
type Config struct {
	// Algorithm is the AEAD used by Sealer.Seal.
	Algorithm cryptoDomain.Algorithm
}

type sealUseCase struct {
	config         Config
	txManager      database.TxManager
	sealConfigRepo SealConfigRepository
	autoUnsealRepo AutoUnsealConfigRepository
	verifier       sealService.KeyVerifier
	providers      sealService.ProviderFactory
	aeadManager    cryptoService.AEADManager
	audit          auditUsecase.Recorder
	logger         *slog.Logger

	mu        sync.RWMutex
	state     sealDomain.State
	sealCfg   *sealDomain.SealConfig
	masterKey []byte
	derived   map[string][]byte
	pending   map[int][]byte
}

// NewSealUseCase creates the seal state machine in the Uninitialized state.
// Call Restore to pick up a persisted configuration.
func NewSealUseCase(
	config Config,
	txManager database.TxManager,
	sealConfigRepo SealConfigRepository,
	autoUnsealRepo AutoUnsealConfigRepository,
	verifier sealService.KeyVerifier,
	providers sealService.ProviderFactory,
	aeadManager cryptoService.AEADManager,
	audit auditUsecase.Recorder,
	logger *slog.Logger,
) SealUseCase {
	return &sealUseCase{
		config:         config,
		txManager:      txManager,
		sealConfigRepo: sealConfigRepo,
		autoUnsealRepo: autoUnsealRepo,
		verifier:       verifier,
		providers:      providers,
		aeadManager:    aeadManager,
		audit:          audit,
		logger:         logger,
		state:          sealDomain.StateUninitialized,
		pending:        make(map[int][]byte),
	}
}

// Restore moves an uninitialized state machine to Sealed when a seal config exists.
func (s *sealUseCase) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != sealDomain.StateUninitialized {
		return nil
	}

	cfg, err := s.sealConfigRepo.Get(ctx)
	if err != nil {
		if apperrors.Is(err, sealDomain.ErrSealConfigNotFound) {
			return nil
		}
		return err
	}

	s.sealCfg = cfg
	s.state = sealDomain.StateSealed
	s.logger.Info("seal config restored",
		slog.Int("threshold", cfg.Threshold),
		slog.Int("total_shares", cfg.TotalShares),
	)
	return nil
}

// Initialize generates the master key, persists its verification hash and
// returns the shares. With an active auto-unseal config the shares are wrapped
// by the KMS provider and stored instead of being returned.
func (s *sealUseCase) Initialize(
	ctx context.Context,
	totalShares, threshold int,
) (result *sealDomain.InitResult, err error) {
	defer func() { s.record(ctx, auditDomain.EventSealInitialize, err) }()

	if threshold < 1 || threshold > totalShares || totalShares > shamir.MaxShares {
		return nil, sealDomain.ErrInvalidShareParameters
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != sealDomain.StateUninitialized {
		return nil, sealDomain.ErrAlreadyInitialized
	}

	existing, err := s.sealConfigRepo.Get(ctx)
	if err == nil {
		s.sealCfg = existing
		s.state = sealDomain.StateSealed
		return nil, sealDomain.ErrAlreadyInitialized
	}
	if !apperrors.Is(err, sealDomain.ErrSealConfigNotFound) {
		return nil, err
	}

	autoCfg, err := s.autoUnsealRepo.GetActive(ctx)
	if err != nil {
		if !apperrors.Is(err, sealDomain.ErrAutoUnsealConfigNotFound) {
			return nil, err
		}
		autoCfg = nil
	}

	masterKey := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(masterKey)
	if _, err := rand.Read(masterKey); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate master key")
	}

	hash, err := s.verifier.Hash(masterKey)
	if err != nil {
		return nil, err
	}

	parts, err := shamir.Split(masterKey, totalShares, threshold)
	if err != nil {
		return nil, err
	}
	shares := make([]sealDomain.Share, len(parts))
	for i, part := range parts {
		shares[i] = sealDomain.Share{Index: part.Index, Value: part.Value}
	}

	var wrapped [][]byte
	if autoCfg != nil {
		wrapped, err = s.wrapShares(ctx, autoCfg, shares)
		for _, share := range shares {
			cryptoDomain.Zero(share.Value)
		}
		shares = nil
		if err != nil {
			return nil, err
		}
	}

	sealCfg := &sealDomain.SealConfig{
		ID:               uuid.Must(uuid.NewV7()),
		Threshold:        threshold,
		TotalShares:      totalShares,
		VerificationHash: hash,
		CreatedAt:        time.Now().UTC(),
	}

	err = s.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := s.sealConfigRepo.Create(ctx, sealCfg); err != nil {
			return err
		}
		if autoCfg != nil {
			return s.autoUnsealRepo.UpdateWrappedShares(ctx, autoCfg.ID, wrapped)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sealCfg = sealCfg
	s.state = sealDomain.StateSealed
	clear(s.pending)

	s.logger.Info("vault initialized",
		slog.Int("threshold", threshold),
		slog.Int("total_shares", totalShares),
		slog.Bool("auto_unseal", autoCfg != nil),
	)

	return &sealDomain.InitResult{
		Shares:      shares,
		Threshold:   threshold,
		TotalShares: totalShares,
		AutoUnseal:  autoCfg != nil,
	}, nil
}

// Unseal adds share to the current attempt. Once threshold distinct shares are
// collected the candidate key is verified; a mismatch discards the whole attempt.
func (s *sealUseCase) Unseal(ctx context.Context, share sealDomain.Share) (*sealDomain.SealStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case sealDomain.StateUninitialized:
		return nil, sealDomain.ErrNotInitialized
	case sealDomain.StateUnsealed:
		return s.statusLocked(), nil
	}

	if share.Index < 1 || share.Index > s.sealCfg.TotalShares || len(share.Value) != cryptoDomain.KeySize {
		return nil, sealDomain.ErrInvalidShare
	}

	if _, seen := s.pending[share.Index]; !seen {
		value := make([]byte, len(share.Value))
		copy(value, share.Value)
		s.pending[share.Index] = value
	}

	if len(s.pending) < s.sealCfg.Threshold {
		s.logger.Info("unseal progress",
			slog.Int("progress", len(s.pending)),
			slog.Int("threshold", s.sealCfg.Threshold),
		)
		return s.statusLocked(), nil
	}

	parts := make([]shamir.Share, 0, len(s.pending))
	for index, value := range s.pending {
		parts = append(parts, shamir.Share{Index: index, Value: value})
	}
	candidate, err := shamir.Combine(parts)
	s.resetPending()
	if err != nil {
		s.record(ctx, auditDomain.EventSealUnseal, err)
		return nil, err
	}

	ok, err := s.verifier.Verify(candidate, s.sealCfg.VerificationHash)
	if err != nil || !ok {
		cryptoDomain.Zero(candidate)
		if err == nil {
			err = sealDomain.ErrInvalidShareSet
		}
		s.logger.Warn("unseal attempt rejected", slog.Any("error", err))
		s.record(ctx, auditDomain.EventSealUnseal, err)
		return nil, err
	}

	derived := make(map[string][]byte, len(sealService.DerivedPurposes))
	for _, purpose := range sealService.DerivedPurposes {
		key, err := sealService.DeriveKey(candidate, purpose)
		if err != nil {
			cryptoDomain.Zero(candidate)
			wipe(derived)
			return nil, err
		}
		derived[purpose] = key
	}

	s.masterKey = candidate
	s.derived = derived
	s.state = sealDomain.StateUnsealed

	s.logger.Info("vault unsealed")
	s.record(ctx, auditDomain.EventSealUnseal, nil)

	return s.statusLocked(), nil
}

// Seal wipes the master key and every derived key. Sealing a sealed vault is a no-op.
func (s *sealUseCase) Seal(ctx context.Context) (*sealDomain.SealStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != sealDomain.StateUnsealed {
		return s.statusLocked(), nil
	}

	cryptoDomain.Zero(s.masterKey)
	s.masterKey = nil
	wipe(s.derived)
	s.derived = nil
	s.resetPending()
	s.state = sealDomain.StateSealed

	s.logger.Info("vault sealed")
	s.record(ctx, auditDomain.EventSealSeal, nil)

	return s.statusLocked(), nil
}

// Status returns a snapshot of the state machine.
func (s *sealUseCase) Status(ctx context.Context) *sealDomain.SealStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked()
}

func (s *sealUseCase) WithMasterKey(ctx context.Context, purpose string, fn func(Sealer) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != sealDomain.StateUnsealed {
		return sealDomain.ErrVaultSealed
	}

	key, ok := s.derived[purpose]
	if !ok {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown key purpose %q", purpose)
	}

	sealer := &boundSealer{key: key, algorithm: s.config.Algorithm, aeadManager: s.aeadManager}
	defer sealer.released.Store(true)

	return fn(sealer)
}

// AutoUnseal decrypts the wrapped shares of the active config, retrying
// transient provider failures, and feeds them to Unseal until the vault opens.
func (s *sealUseCase) AutoUnseal(ctx context.Context) (status *sealDomain.SealStatus, err error) {
	defer func() { s.record(ctx, auditDomain.EventSealAutoUnseal, err) }()

	current := s.Status(ctx)
	if !current.Initialized {
		return nil, sealDomain.ErrNotInitialized
	}
	if !current.Sealed {
		return current, nil
	}

	cfg, err := s.autoUnsealRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(cfg.WrappedShares) == 0 {
		return nil, apperrors.Wrap(sealDomain.ErrAutoUnsealConfigNotFound, "active config holds no wrapped shares")
	}

	provider, err := s.providers.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = provider.Close() }()

	s.logger.Info("auto-unseal started",
		slog.String("provider", string(cfg.Provider)),
		slog.Int("wrapped_shares", len(cfg.WrappedShares)),
	)

	status, err = s.feedWrappedShares(ctx, cfg, provider)
	if err != nil {
		// A partial automated attempt must not linger as unseal progress.
		s.discardPending()
		s.logger.Error("auto-unseal failed", slog.String("provider", string(cfg.Provider)), slog.Any("error", err))
		return nil, err
	}

	s.logger.Info("auto-unseal completed", slog.String("provider", string(cfg.Provider)))
	return status, nil
}

func (s *sealUseCase) feedWrappedShares(
	ctx context.Context,
	cfg *sealDomain.AutoUnsealConfig,
	provider sealService.KMSProvider,
) (*sealDomain.SealStatus, error) {
	for _, wrappedShare := range cfg.WrappedShares {
		var raw []byte
		err := s.retry(ctx, cfg, "decrypt", func() error {
			var decryptErr error
			raw, decryptErr = provider.Decrypt(ctx, wrappedShare)
			return decryptErr
		})
		if err != nil {
			return nil, err
		}

		share, err := sealDomain.ShareFromBytes(raw)
		cryptoDomain.Zero(raw)
		if err != nil {
			return nil, err
		}

		status, err := s.Unseal(ctx, share)
		cryptoDomain.Zero(share.Value)
		if err != nil {
			return nil, err
		}
		if !status.Sealed {
			return status, nil
		}
	}

	return nil, sealDomain.ErrInvalidShareSet
}

// discardPending drops the shares of the current unseal attempt.
func (s *sealUseCase) discardPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetPending()
}

// CreateAutoUnsealConfig validates the provider with an encrypt/decrypt probe and
// stores the config as active. Only allowed before Initialize.
func (s *sealUseCase) CreateAutoUnsealConfig(
	ctx context.Context,
	cfg *sealDomain.AutoUnsealConfig,
) (err error) {
	defer func() { s.record(ctx, auditDomain.EventAutoUnsealConfigCreate, err) }()

	if err := cfg.Provider.Validate(); err != nil {
		return err
	}

	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	if state != sealDomain.StateUninitialized {
		return sealDomain.ErrAlreadyInitialized
	}

	if _, err := s.autoUnsealRepo.GetActive(ctx); err == nil {
		return sealDomain.ErrAutoUnsealConfigExists
	} else if !apperrors.Is(err, sealDomain.ErrAutoUnsealConfigNotFound) {
		return err
	}

	if err := s.probe(ctx, cfg); err != nil {
		return err
	}

	cfg.ID = uuid.Must(uuid.NewV7())
	cfg.Active = true
	cfg.WrappedShares = nil
	cfg.CreatedAt = time.Now().UTC()

	if err := s.autoUnsealRepo.Create(ctx, cfg); err != nil {
		return err
	}

	s.logger.Info("auto-unseal config created",
		slog.String("id", cfg.ID.String()),
		slog.String("provider", string(cfg.Provider)),
	)
	return nil
}

func (s *sealUseCase) ListAutoUnsealConfigs(ctx context.Context) ([]*sealDomain.AutoUnsealConfig, error) {
	return s.autoUnsealRepo.List(ctx)
}

func (s *sealUseCase) wrapShares(
	ctx context.Context,
	cfg *sealDomain.AutoUnsealConfig,
	shares []sealDomain.Share,
) ([][]byte, error) {
	provider, err := s.providers.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = provider.Close() }()

	wrapped := make([][]byte, len(shares))
	for i, share := range shares {
		plaintext := share.Bytes()
		err := s.retry(ctx, cfg, "encrypt", func() error {
			var encryptErr error
			wrapped[i], encryptErr = provider.Encrypt(ctx, plaintext)
			return encryptErr
		})
		cryptoDomain.Zero(plaintext)
		if err != nil {
			return nil, err
		}
	}
	return wrapped, nil
}

func (s *sealUseCase) probe(ctx context.Context, cfg *sealDomain.AutoUnsealConfig) error {
	provider, err := s.providers.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Close() }()

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return apperrors.Wrap(err, "failed to generate probe")
	}

	var ciphertext, plaintext []byte
	if err := s.retry(ctx, cfg, "encrypt", func() error {
		var encryptErr error
		ciphertext, encryptErr = provider.Encrypt(ctx, nonce)
		return encryptErr
	}); err != nil {
		return err
	}
	if err := s.retry(ctx, cfg, "decrypt", func() error {
		var decryptErr error
		plaintext, decryptErr = provider.Decrypt(ctx, ciphertext)
		return decryptErr
	}); err != nil {
		return err
	}

	if string(plaintext) != string(nonce) {
		return &sealDomain.ProviderError{Op: "probe", Err: apperrors.New("round trip mismatch")}
	}
	return nil
}

func (s *sealUseCase) statusLocked() *sealDomain.SealStatus {
	status := &sealDomain.SealStatus{
		Initialized: s.state != sealDomain.StateUninitialized,
		Sealed:      s.state != sealDomain.StateUnsealed,
		Progress:    len(s.pending),
	}
	if s.sealCfg != nil {
		status.Threshold = s.sealCfg.Threshold
		status.TotalShares = s.sealCfg.TotalShares
	}
	return status
}

func (s *sealUseCase) resetPending() {
	wipe(s.pending)
}

func (s *sealUseCase) record(ctx context.Context, eventType string, err error) {
	s.audit.Record(ctx, auditDomain.NewEvent(eventType, auditDomain.ActorFromContext(ctx), auditResource, err))
}

func wipe[K comparable](keys map[K][]byte) {
	for k, v := range keys {
		cryptoDomain.Zero(v)
		delete(keys, k)
	}
}

type boundSealer struct {
	key         []byte
	algorithm   cryptoDomain.Algorithm
	aeadManager cryptoService.AEADManager
	released    atomic.Bool
}

func (b *boundSealer) Seal(plaintext, aad []byte) (cryptoDomain.SealedBlob, error) {
	if b.released.Load() {
		return cryptoDomain.SealedBlob{}, sealDomain.ErrMasterKeyReleased
	}
	return b.aeadManager.Seal(b.key, b.algorithm, plaintext, aad)
}

func (b *boundSealer) Open(blob cryptoDomain.SealedBlob, aad []byte) ([]byte, error) {
	if b.released.Load() {
		return nil, sealDomain.ErrMasterKeyReleased
	}
	return b.aeadManager.Open(b.key, blob, aad)
}
