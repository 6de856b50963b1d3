package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
	"github.com/allisson/trustcore/internal/seal/http/dto"
	"github.com/allisson/trustcore/internal/seal/usecase/mocks"
)

func setupTestHandler(t *testing.T) (*SealHandler, *mocks.MockSealUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := mocks.NewMockSealUseCase(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewSealHandler(mockUseCase, logger), mockUseCase
}

func TestSealHandler_InitHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		result := &sealDomain.InitResult{
			Shares: []sealDomain.Share{
				{Index: 1, Value: []byte{0x01}},
				{Index: 2, Value: []byte{0x02}},
				{Index: 3, Value: []byte{0x03}},
			},
			Threshold:   2,
			TotalShares: 3,
		}
		mockUseCase.On("Initialize", mock.Anything, 3, 2).Return(result, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/sys/init", dto.InitRequest{SecretShares: 3, SecretThreshold: 2})
		handler.InitHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.InitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Len(t, response.Shares, 3)
		assert.Equal(t, 2, response.Threshold)
		assert.Equal(t, 3, response.TotalShares)
		assert.True(t, response.Sealed)
		assert.False(t, response.AutoUnseal)
	})

	t.Run("Success_AutoUnseal", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		result := &sealDomain.InitResult{Threshold: 2, TotalShares: 3, AutoUnseal: true}
		mockUseCase.On("Initialize", mock.Anything, 3, 2).Return(result, nil).Once()
		mockUseCase.On("AutoUnseal", mock.Anything).
			Return(&sealDomain.SealStatus{Initialized: true, Sealed: false}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/sys/init", dto.InitRequest{SecretShares: 3, SecretThreshold: 2})
		handler.InitHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.InitResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Empty(t, response.Shares)
		assert.True(t, response.AutoUnseal)
		assert.False(t, response.Sealed)
	})

	t.Run("Error_AlreadyInitialized", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Initialize", mock.Anything, 3, 2).Return(nil, sealDomain.ErrAlreadyInitialized).Once()

		c, w := createTestContext(http.MethodPost, "/v1/sys/init", dto.InitRequest{SecretShares: 3, SecretThreshold: 2})
		handler.InitHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_ThresholdAboveShares", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/sys/init", dto.InitRequest{SecretShares: 2, SecretThreshold: 3})
		handler.InitHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/sys/init", nil)
		handler.InitHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSealHandler_UnsealHandler(t *testing.T) {
	share := sealDomain.Share{Index: 2, Value: make([]byte, 32)}

	t.Run("Success_Progress", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Unseal", mock.Anything, share).
			Return(&sealDomain.SealStatus{Initialized: true, Sealed: true, Threshold: 3, TotalShares: 5, Progress: 1}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/sys/unseal", dto.UnsealRequest{Share: share.String()})
		handler.UnsealHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.SealStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Sealed)
		assert.Equal(t, 1, response.Progress)
		assert.Equal(t, 3, response.Threshold)
	})

	t.Run("Success_ShareWipedAfterUse", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		secret := sealDomain.Share{Index: 3, Value: bytes.Repeat([]byte{0x5a}, 32)}

		var received []byte
		mockUseCase.On("Unseal", mock.Anything, mock.MatchedBy(func(s sealDomain.Share) bool {
			return s.Index == 3 && bytes.Equal(s.Value, secret.Value)
		})).
			Run(func(args mock.Arguments) { received = args.Get(1).(sealDomain.Share).Value }).
			Return(&sealDomain.SealStatus{Initialized: true, Sealed: true, Threshold: 3, TotalShares: 5, Progress: 1}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/sys/unseal", dto.UnsealRequest{Share: secret.String()})
		handler.UnsealHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, received, 32)
		assert.Equal(t, make([]byte, 32), received)
	})

	t.Run("Error_InvalidShareSet", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Unseal", mock.Anything, share).Return(nil, sealDomain.ErrInvalidShareSet).Once()

		c, w := createTestContext(http.MethodPost, "/v1/sys/unseal", dto.UnsealRequest{Share: share.String()})
		handler.UnsealHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_ZeroIndex", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/sys/unseal", dto.UnsealRequest{Share: "AAEC"})
		handler.UnsealHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MissingShare", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/sys/unseal", dto.UnsealRequest{})
		handler.UnsealHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestSealHandler_SealAndStatus(t *testing.T) {
	t.Run("Seal", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Seal", mock.Anything).
			Return(&sealDomain.SealStatus{Initialized: true, Sealed: true, Threshold: 2, TotalShares: 3}, nil).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/sys/seal", nil)
		handler.SealHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"initialized":true,"sealed":true,"threshold":2,"total_shares":3,"progress":0}`,
			w.Body.String(),
		)
	})

	t.Run("Status", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("Status", mock.Anything).Return(&sealDomain.SealStatus{Sealed: true}).Once()

		c, w := createTestContext(http.MethodGet, "/v1/sys/seal-status", nil)
		handler.StatusHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t,
			`{"initialized":false,"sealed":true,"threshold":0,"total_shares":0,"progress":0}`,
			w.Body.String(),
		)
	})
}

func TestSealHandler_AutoUnsealConfig(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		id := uuid.Must(uuid.NewV7())
		mockUseCase.On("CreateAutoUnsealConfig", mock.Anything, mock.MatchedBy(func(cfg *sealDomain.AutoUnsealConfig) bool {
			return cfg.Provider == sealDomain.ProviderAWSKMS && cfg.KMSKeyID == "alias/vault" &&
				cfg.MaxRetries == sealDomain.DefaultMaxRetries
		})).Run(func(args mock.Arguments) {
			cfg := args.Get(1).(*sealDomain.AutoUnsealConfig)
			cfg.ID = id
			cfg.Active = true
			cfg.CreatedAt = time.Now().UTC()
		}).Return(nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/sys/auto-unseal", dto.CreateAutoUnsealConfigRequest{
			Provider: "awskms",
			KMSKeyID: "alias/vault",
			Region:   "us-east-1",
		})
		handler.CreateAutoUnsealConfigHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response dto.AutoUnsealConfigResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, id.String(), response.ID)
		assert.True(t, response.Active)
		assert.Equal(t, "us-east-1", response.Region)
	})

	t.Run("Create_ProviderUnavailable", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		mockUseCase.On("CreateAutoUnsealConfig", mock.Anything, mock.Anything).
			Return(&sealDomain.ProviderError{Op: "encrypt", Err: errors.New("access denied")}).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/sys/auto-unseal", dto.CreateAutoUnsealConfigRequest{
			Provider: "awskms",
			KMSKeyID: "alias/vault",
		})
		handler.CreateAutoUnsealConfigHandler(c)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})

	t.Run("Create_UnknownProvider", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/sys/auto-unseal", dto.CreateAutoUnsealConfigRequest{
			Provider: "oraclekms",
			KMSKeyID: "k",
		})
		handler.CreateAutoUnsealConfigHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("List", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)

		configs := []*sealDomain.AutoUnsealConfig{{
			ID:            uuid.Must(uuid.NewV7()),
			Provider:      sealDomain.ProviderLocal,
			KMSKeyID:      "key",
			WrappedShares: [][]byte{{1}, {2}},
		}}
		mockUseCase.On("ListAutoUnsealConfigs", mock.Anything).Return(configs, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/sys/auto-unseal", nil)
		handler.ListAutoUnsealConfigsHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ListAutoUnsealConfigsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Equal(t, 2, response.Data[0].WrappedShareCount)
		assert.NotContains(t, w.Body.String(), "wrapped_shares\"")
	})
}
