// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/trustcore/internal/errors"
)

// ErrorResponse is the body of every error reply. Error holds a stable code.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type errorMapping struct {
	status  int
	message string
}

// errorMappings holds the HTTP status per error code. An empty message echoes
// err.Error(), which is only done for caller-correctable errors.
var errorMappings = map[string]errorMapping{
	apperrors.CodeSealed:       {http.StatusServiceUnavailable, "Vault is sealed"},
	apperrors.CodeNotFound:     {http.StatusNotFound, "The requested resource was not found"},
	apperrors.CodeConflict:     {http.StatusConflict, ""},
	apperrors.CodeInvalidInput: {http.StatusUnprocessableEntity, ""},
	apperrors.CodeUnavailable:  {http.StatusBadGateway, "An external key management provider failed"},
	apperrors.CodeUnauthorized: {http.StatusUnauthorized, "Authentication is required"},
	apperrors.CodeForbidden:    {http.StatusForbidden, "You don't have permission to access this resource"},
	apperrors.CodeInternal:     {http.StatusInternalServerError, "An internal error occurred"},
}

// HandleErrorGin maps domain errors to HTTP status codes and writes a JSON error response.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	code := apperrors.Code(err)
	mapping := errorMappings[code]
	message := mapping.message
	if message == "" {
		message = err.Error()
	}

	if logger != nil {
		level := slog.LevelWarn
		if mapping.status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", mapping.status),
			slog.String("error_code", code),
			slog.Any("error", err),
		)
	}

	c.JSON(mapping.status, ErrorResponse{Error: code, Message: message})
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "bad_request",
		Message: err.Error(),
	})
}

// HandleValidationErrorGin writes a 422 Unprocessable Entity response for validation errors.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}

	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}
