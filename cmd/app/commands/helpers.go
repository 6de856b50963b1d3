// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/trustcore/internal/app"
	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
	sealUseCase "github.com/allisson/trustcore/internal/seal/usecase"
	customValidation "github.com/allisson/trustcore/internal/validation"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// UnlockOptions tells a one-shot CLI process how to obtain the master key.
// The key lives only in this process and is wiped when the container shuts down.
type UnlockOptions struct {
	Shares     []string
	AutoUnseal bool
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// unlock restores the persisted seal state and unseals it with the given shares
// or through the active auto-unseal configuration.
func unlock(ctx context.Context, sealUC sealUseCase.SealUseCase, opts UnlockOptions) error {
	if err := sealUC.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore seal state: %w", err)
	}

	if opts.AutoUnseal {
		if _, err := sealUC.AutoUnseal(ctx); err != nil {
			return fmt.Errorf("auto-unseal failed: %w", err)
		}
		return nil
	}

	if len(opts.Shares) == 0 {
		return errors.New("vault is sealed: pass --share once per unseal share or use --auto-unseal")
	}

	var status *sealDomain.SealStatus
	for _, encoded := range opts.Shares {
		share, err := sealDomain.ParseShare(encoded)
		if err != nil {
			return err
		}

		status, err = sealUC.Unseal(ctx, share)
		cryptoDomain.Zero(share.Value)
		if err != nil {
			return fmt.Errorf("failed to unseal: %w", err)
		}
		if !status.Sealed {
			return nil
		}
	}

	return fmt.Errorf(
		"vault is still sealed: %d of %d shares provided",
		status.Progress,
		status.Threshold,
	)
}

// validateFormat rejects output formats other than text and json.
func validateFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}

// validationError converts a jellydator validation error into a domain error.
func validationError(err error) error {
	return customValidation.WrapValidationError(err)
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, err = fmt.Fprintln(w, string(jsonBytes))
	return err
}
