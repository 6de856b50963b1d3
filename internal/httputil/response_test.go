package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/trustcore/internal/errors"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestHandleErrorGin(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"sealed", apperrors.Wrap(apperrors.ErrSealed, "pki"), http.StatusServiceUnavailable, "vault_sealed"},
		{"not found", apperrors.Wrap(apperrors.ErrNotFound, "certificate not found"), http.StatusNotFound, "not_found"},
		{"conflict", apperrors.Wrap(apperrors.ErrConflict, "already initialized"), http.StatusConflict, "conflict"},
		{"invalid input", apperrors.Wrap(apperrors.ErrInvalidInput, "bad csr"), http.StatusUnprocessableEntity, "invalid_input"},
		{"unavailable", apperrors.Wrap(apperrors.ErrUnavailable, "kms"), http.StatusBadGateway, "provider_unavailable"},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, "forbidden"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.wantStatus, w.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.wantCode, response.Error)
		})
	}

	t.Run("internal error does not leak details", func(t *testing.T) {
		c, w := newTestContext()
		HandleErrorGin(c, errors.New("private key bytes"), nil)
		assert.NotContains(t, w.Body.String(), "private key bytes")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext()
		HandleErrorGin(c, nil, logger)
		assert.Equal(t, 0, w.Body.Len())
	})
}

func TestHandleBadRequestGin(t *testing.T) {
	c, w := newTestContext()
	HandleBadRequestGin(c, errors.New("invalid json"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad_request","message":"invalid json"}`, w.Body.String())
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, w := newTestContext()
	HandleValidationErrorGin(c, errors.New("common_name: cannot be blank."), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(
		t,
		`{"error":"validation_error","message":"common_name: cannot be blank."}`,
		w.Body.String(),
	)
}

func TestHandleErrorGin_EchoesCorrectableErrors(t *testing.T) {
	c, w := newTestContext()
	HandleErrorGin(c, apperrors.Wrap(apperrors.ErrConflict, "certificate already revoked"), nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(
		t,
		`{"error":"conflict","message":"certificate already revoked: conflict"}`,
		w.Body.String(),
	)
}
