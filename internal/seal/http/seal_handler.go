// Package http provides the /v1/sys HTTP handlers that drive the seal state machine.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
	"github.com/allisson/trustcore/internal/httputil"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
	"github.com/allisson/trustcore/internal/seal/http/dto"
	sealUseCase "github.com/allisson/trustcore/internal/seal/usecase"
	customValidation "github.com/allisson/trustcore/internal/validation"
)

// SealHandler handles vault initialization, unsealing and sealing.
type SealHandler struct {
	sealUseCase sealUseCase.SealUseCase
	logger      *slog.Logger
}

// NewSealHandler creates a new seal handler.
func NewSealHandler(sealUseCase sealUseCase.SealUseCase, logger *slog.Logger) *SealHandler {
	return &SealHandler{
		sealUseCase: sealUseCase,
		logger:      logger,
	}
}

// InitHandler initializes the vault.
// POST /v1/sys/init
// Returns 200 OK with the shares, shown exactly once. When an auto-unseal config
// is active the shares are wrapped instead and an auto-unseal is attempted.
func (h *SealHandler) InitHandler(c *gin.Context) {
	var req dto.InitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()
	result, err := h.sealUseCase.Initialize(ctx, req.SecretShares, req.SecretThreshold)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	sealed := true
	if result.AutoUnseal {
		status, err := h.sealUseCase.AutoUnseal(ctx)
		if err != nil {
			h.logger.Warn("auto-unseal after init failed", slog.Any("error", err))
		} else {
			sealed = status.Sealed
		}
	}

	c.JSON(http.StatusOK, dto.MapInitResultToResponse(result, sealed))
}

// UnsealHandler submits one share.
// POST /v1/sys/unseal
// Returns 200 OK with the updated seal status.
func (h *SealHandler) UnsealHandler(c *gin.Context) {
	var req dto.UnsealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	share, err := sealDomain.ParseShare(req.Share)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	status, err := h.sealUseCase.Unseal(c.Request.Context(), share)
	cryptoDomain.Zero(share.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSealStatusToResponse(status))
}

// SealHandler seals the vault.
// POST /v1/sys/seal
func (h *SealHandler) SealHandler(c *gin.Context) {
	status, err := h.sealUseCase.Seal(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSealStatusToResponse(status))
}

// StatusHandler reports the seal status.
// GET /v1/sys/seal-status
func (h *SealHandler) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MapSealStatusToResponse(h.sealUseCase.Status(c.Request.Context())))
}

// CreateAutoUnsealConfigHandler registers the KMS key used to wrap shares.
// POST /v1/sys/auto-unseal
// Returns 201 Created. Only allowed before the vault is initialized.
func (h *SealHandler) CreateAutoUnsealConfigHandler(c *gin.Context) {
	var req dto.CreateAutoUnsealConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	cfg := req.ToDomain()
	if err := h.sealUseCase.CreateAutoUnsealConfig(c.Request.Context(), cfg); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapAutoUnsealConfigToResponse(cfg))
}

// ListAutoUnsealConfigsHandler lists auto-unseal configs.
// GET /v1/sys/auto-unseal
func (h *SealHandler) ListAutoUnsealConfigsHandler(c *gin.Context) {
	configs, err := h.sealUseCase.ListAutoUnsealConfigs(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAutoUnsealConfigsToListResponse(configs))
}
