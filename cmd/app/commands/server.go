package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/trustcore/internal/app"
	"github.com/allisson/trustcore/internal/config"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
	sealUseCase "github.com/allisson/trustcore/internal/seal/usecase"
)

// RunServer starts the HTTP server with graceful shutdown support.
// Loads configuration, initializes the DI container, restores the persisted seal
// state and optionally runs auto-unseal before serving. Blocks until receiving
// SIGINT/SIGTERM or a fatal server error. The vault is sealed on the way out.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	gin.SetMode(cfg.GetGinMode())

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server", slog.String("version", version))

	defer closeContainer(container, logger)

	sealUC, err := container.SealUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize seal use case: %w", err)
	}

	if err := sealUC.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore seal state: %w", err)
	}

	if cfg.AutoUnsealOnStart {
		autoUnsealOnStart(ctx, sealUC, logger)
	}

	// Get HTTP server from container (this initializes all dependencies)
	server, err := container.HTTPServer()
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	metricsServer, err := container.MetricsServer()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics server: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(gctx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(gctx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	// Stops both servers on a signal or as soon as one of them fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down servers")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DBConnMaxLifetime)
		defer shutdownCancel()

		var shutdownErrors []error

		if err := server.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
		}

		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}

		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}

// autoUnsealOnStart unseals a restored vault through its active auto-unseal config.
// Failures are logged and the server keeps starting so operators can unseal manually.
func autoUnsealOnStart(ctx context.Context, sealUC sealUseCase.SealUseCase, logger *slog.Logger) {
	status := sealUC.Status(ctx)
	if !status.Initialized || !status.Sealed {
		return
	}

	_, err := sealUC.AutoUnseal(ctx)
	switch {
	case err == nil:
		logger.Info("vault unsealed at startup")
	case errors.Is(err, sealDomain.ErrAutoUnsealConfigNotFound):
		logger.Info("no active auto-unseal config, waiting for manual unseal")
	default:
		logger.Error("auto-unseal at startup failed, waiting for manual unseal", slog.Any("error", err))
	}
}
