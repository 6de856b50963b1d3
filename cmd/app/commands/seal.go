package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
	sealDTO "github.com/allisson/trustcore/internal/seal/http/dto"
	sealUseCase "github.com/allisson/trustcore/internal/seal/usecase"
)

// RunInit initializes the vault and prints the unseal shares exactly once. When an
// auto-unseal config is active the shares are wrapped by the KMS key instead.
//
// Requirements: Database must be migrated and the vault must not be initialized.
func RunInit(
	ctx context.Context,
	sealUC sealUseCase.SealUseCase,
	logger *slog.Logger,
	writer io.Writer,
	totalShares int,
	threshold int,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	req := sealDTO.InitRequest{SecretShares: totalShares, SecretThreshold: threshold}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	ctx = auditDomain.WithActor(ctx, auditDomain.ActorCLI)
	logger.Info("initializing vault",
		slog.Int("secret_shares", totalShares),
		slog.Int("secret_threshold", threshold),
	)

	if err := sealUC.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore seal state: %w", err)
	}

	result, err := sealUC.Initialize(ctx, req.SecretShares, req.SecretThreshold)
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}

	response := sealDTO.MapInitResultToResponse(result, true)
	if format == "json" {
		return writeJSON(writer, response)
	}

	if response.AutoUnseal {
		_, _ = fmt.Fprintf(writer,
			"Vault initialized with auto-unseal: %d shares wrapped by the active KMS key, threshold %d\n",
			response.TotalShares, response.Threshold)
		return nil
	}

	for i, share := range response.Shares {
		_, _ = fmt.Fprintf(writer, "Unseal Share %d: %s\n", i+1, share)
	}
	_, _ = fmt.Fprintf(writer,
		"\nVault initialized with %d shares and a threshold of %d.\n"+
			"Distribute the shares to separate operators. They will not be shown again.\n",
		response.TotalShares, response.Threshold)
	return nil
}

// RunUnseal submits shares to a freshly restored vault and reports whether they
// reconstruct the master key. The key is held by this process only.
func RunUnseal(
	ctx context.Context,
	sealUC sealUseCase.SealUseCase,
	logger *slog.Logger,
	writer io.Writer,
	shares []string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	ctx = auditDomain.WithActor(ctx, auditDomain.ActorCLI)
	logger.Info("verifying unseal shares", slog.Int("shares", len(shares)))

	if err := unlock(ctx, sealUC, UnlockOptions{Shares: shares}); err != nil {
		return err
	}

	return writeSealStatus(writer, sealDTO.MapSealStatusToResponse(sealUC.Status(ctx)), format)
}

// RunStatus prints the persisted seal configuration.
func RunStatus(ctx context.Context, sealUC sealUseCase.SealUseCase, writer io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if err := sealUC.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore seal state: %w", err)
	}

	return writeSealStatus(writer, sealDTO.MapSealStatusToResponse(sealUC.Status(ctx)), format)
}

// RunCreateAutoUnseal registers the KMS key used to wrap unseal shares. The key is
// probed with an encrypt/decrypt round trip before it is stored.
//
// Requirements: the vault must not be initialized yet.
func RunCreateAutoUnseal(
	ctx context.Context,
	sealUC sealUseCase.SealUseCase,
	logger *slog.Logger,
	writer io.Writer,
	req sealDTO.CreateAutoUnsealConfigRequest,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	ctx = auditDomain.WithActor(ctx, auditDomain.ActorCLI)
	logger.Info("creating auto-unseal config", slog.String("provider", req.Provider))

	if err := sealUC.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore seal state: %w", err)
	}

	cfg := req.ToDomain()
	if err := sealUC.CreateAutoUnsealConfig(ctx, cfg); err != nil {
		return fmt.Errorf("failed to create auto-unseal config: %w", err)
	}

	response := sealDTO.MapAutoUnsealConfigToResponse(cfg)
	if format == "json" {
		return writeJSON(writer, response)
	}

	_, _ = fmt.Fprintf(writer, "Auto-unseal config created\nID: %s\nProvider: %s\nKMS Key: %s\n",
		response.ID, response.Provider, response.KMSKeyID)
	return nil
}

// RunListAutoUnseal prints every auto-unseal config without the wrapped shares.
func RunListAutoUnseal(ctx context.Context, sealUC sealUseCase.SealUseCase, writer io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	configs, err := sealUC.ListAutoUnsealConfigs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list auto-unseal configs: %w", err)
	}

	response := sealDTO.MapAutoUnsealConfigsToListResponse(configs)
	if format == "json" {
		return writeJSON(writer, response)
	}

	if len(response.Data) == 0 {
		_, _ = fmt.Fprintln(writer, "No auto-unseal configs")
		return nil
	}
	for _, cfg := range response.Data {
		_, _ = fmt.Fprintf(writer, "%s  %-14s active=%-5t shares=%d  %s\n",
			cfg.ID, cfg.Provider, cfg.Active, cfg.WrappedShareCount, cfg.KMSKeyID)
	}
	return nil
}

func writeSealStatus(writer io.Writer, status sealDTO.SealStatusResponse, format string) error {
	if format == "json" {
		return writeJSON(writer, status)
	}

	_, err := fmt.Fprintf(writer,
		"Initialized: %t\nSealed: %t\nThreshold: %d\nTotal Shares: %d\nProgress: %d\n",
		status.Initialized, status.Sealed, status.Threshold, status.TotalShares, status.Progress)
	return err
}
