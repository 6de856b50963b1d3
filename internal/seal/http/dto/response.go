package dto

import (
	"time"

	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
)

// InitResponse is returned once by POST /v1/sys/init.
// SECURITY: Shares are never retrievable again.
type InitResponse struct {
	Shares      []string `json:"shares"`
	Threshold   int      `json:"threshold"`
	TotalShares int      `json:"total_shares"`
	AutoUnseal  bool     `json:"auto_unseal"`
	Sealed      bool     `json:"sealed"`
}

// SealStatusResponse represents the seal state in API responses.
type SealStatusResponse struct {
	Initialized bool `json:"initialized"`
	Sealed      bool `json:"sealed"`
	Threshold   int  `json:"threshold"`
	TotalShares int  `json:"total_shares"`
	Progress    int  `json:"progress"`
}

// AutoUnsealConfigResponse represents an auto-unseal config. Wrapped shares are
// reduced to a count.
type AutoUnsealConfigResponse struct {
	ID                string    `json:"id"`
	Provider          string    `json:"provider"`
	KMSKeyID          string    `json:"kms_key_id"`
	Region            string    `json:"region,omitempty"`
	Active            bool      `json:"active"`
	MaxRetries        int       `json:"max_retries"`
	RetryDelayMs      int       `json:"retry_delay_ms"`
	WrappedShareCount int       `json:"wrapped_share_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// ListAutoUnsealConfigsResponse wraps a list of auto-unseal configs.
type ListAutoUnsealConfigsResponse struct {
	Data []AutoUnsealConfigResponse `json:"data"`
}

// MapInitResultToResponse converts an InitResult to its API response.
func MapInitResultToResponse(result *sealDomain.InitResult, sealed bool) InitResponse {
	shares := make([]string, len(result.Shares))
	for i, share := range result.Shares {
		shares[i] = share.String()
	}
	return InitResponse{
		Shares:      shares,
		Threshold:   result.Threshold,
		TotalShares: result.TotalShares,
		AutoUnseal:  result.AutoUnseal,
		Sealed:      sealed,
	}
}

// MapSealStatusToResponse converts a SealStatus to its API response.
func MapSealStatusToResponse(status *sealDomain.SealStatus) SealStatusResponse {
	return SealStatusResponse{
		Initialized: status.Initialized,
		Sealed:      status.Sealed,
		Threshold:   status.Threshold,
		TotalShares: status.TotalShares,
		Progress:    status.Progress,
	}
}

// MapAutoUnsealConfigToResponse converts an AutoUnsealConfig to its API response.
func MapAutoUnsealConfigToResponse(cfg *sealDomain.AutoUnsealConfig) AutoUnsealConfigResponse {
	return AutoUnsealConfigResponse{
		ID:                cfg.ID.String(),
		Provider:          string(cfg.Provider),
		KMSKeyID:          cfg.KMSKeyID,
		Region:            cfg.Region,
		Active:            cfg.Active,
		MaxRetries:        cfg.MaxRetries,
		RetryDelayMs:      cfg.RetryDelayMs,
		WrappedShareCount: len(cfg.WrappedShares),
		CreatedAt:         cfg.CreatedAt,
	}
}

// MapAutoUnsealConfigsToListResponse converts configs to a list response.
func MapAutoUnsealConfigsToListResponse(configs []*sealDomain.AutoUnsealConfig) ListAutoUnsealConfigsResponse {
	data := make([]AutoUnsealConfigResponse, 0, len(configs))
	for _, cfg := range configs {
		data = append(data, MapAutoUnsealConfigToResponse(cfg))
	}
	return ListAutoUnsealConfigsResponse{Data: data}
}
