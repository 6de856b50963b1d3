// Package http provides the HTTP handler for reading audit events.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/trustcore/internal/audit/http/dto"
	auditUseCase "github.com/allisson/trustcore/internal/audit/usecase"
	"github.com/allisson/trustcore/internal/httputil"
)

// AuditEventHandler handles HTTP requests for audit events.
type AuditEventHandler struct {
	auditUseCase auditUseCase.AuditUseCase
	logger       *slog.Logger
}

// NewAuditEventHandler creates a new audit event handler.
func NewAuditEventHandler(auditUseCase auditUseCase.AuditUseCase, logger *slog.Logger) *AuditEventHandler {
	return &AuditEventHandler{
		auditUseCase: auditUseCase,
		logger:       logger,
	}
}

// ListHandler lists audit events newest first.
// GET /v1/sys/audit-events?offset=0&limit=50
func (h *AuditEventHandler) ListHandler(c *gin.Context) {
	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	events, err := h.auditUseCase.List(c.Request.Context(), offset, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuditEventsToListResponse(events))
}
