package service

import (
	"context"

	"gocloud.dev/gcerrors"

	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
	cryptoService "github.com/allisson/trustcore/internal/crypto/service"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
)

type kmsProviderFactory struct {
	kmsService cryptoService.KMSService
}

// NewProviderFactory returns a ProviderFactory that opens gocloud.dev keepers.
func NewProviderFactory(kmsService cryptoService.KMSService) ProviderFactory {
	return &kmsProviderFactory{kmsService: kmsService}
}

// Open opens the keeper referenced by cfg.KeyURI.
func (f *kmsProviderFactory) Open(ctx context.Context, cfg *sealDomain.AutoUnsealConfig) (KMSProvider, error) {
	keeper, err := f.kmsService.OpenKeeper(ctx, cfg.KeyURI())
	if err != nil {
		return nil, &sealDomain.ProviderError{Op: "open", Transient: false, Err: err}
	}
	return &kmsProvider{keeper: keeper}, nil
}

type kmsProvider struct {
	keeper cryptoDomain.KMSKeeper
}

func (p *kmsProvider) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	ciphertext, err := p.keeper.Encrypt(ctx, plaintext)
	if err != nil {
		return nil, classify(ctx, "encrypt", err)
	}
	return ciphertext, nil
}

func (p *kmsProvider) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	plaintext, err := p.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, classify(ctx, "decrypt", err)
	}
	return plaintext, nil
}

func (p *kmsProvider) Close() error {
	return p.keeper.Close()
}

func classify(ctx context.Context, op string, err error) error {
	transient := ctx.Err() == nil && isTransient(gcerrors.Code(err))
	return &sealDomain.ProviderError{Op: op, Transient: transient, Err: err}
}

// isTransient reports whether a KMS error code is worth retrying. Network errors,
// throttling and server-side failures are; authorization, missing or disabled
// keys and malformed ciphertext are not.
func isTransient(code gcerrors.ErrorCode) bool {
	switch code {
	case gcerrors.Unknown, gcerrors.Internal, gcerrors.ResourceExhausted, gcerrors.DeadlineExceeded:
		return true
	default:
		return false
	}
}
