package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	apperrors "github.com/allisson/trustcore/internal/errors"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
)

const maxRetryInterval = 10 * time.Minute

// newBackOff returns the auto-unseal retry policy: retry_delay_ms * 2^attempt,
// at most max_retries retries, stopped early when ctx is done.
func newBackOff(ctx context.Context, cfg *sealDomain.AutoUnsealConfig) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.RetryDelay()
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = maxRetryInterval
	b.MaxElapsedTime = 0

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)
}

// retry runs fn until it succeeds, returns a permanent provider error, or the
// retry budget of cfg is exhausted.
func (s *sealUseCase) retry(ctx context.Context, cfg *sealDomain.AutoUnsealConfig, op string, fn func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}

		var providerErr *sealDomain.ProviderError
		if apperrors.As(err, &providerErr) && !providerErr.Transient {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, next time.Duration) {
		s.logger.Warn("kms provider call failed, retrying",
			slog.String("provider", string(cfg.Provider)),
			slog.String("op", op),
			slog.Int("attempt", attempt),
			slog.Duration("next_retry_in", next),
			slog.Any("error", err),
		)
	}

	return backoff.RetryNotify(operation, newBackOff(ctx, cfg), notify)
}
