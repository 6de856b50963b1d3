// Package dto provides data transfer objects for the /v1/sys seal endpoints.
package dto

import (
	"errors"

	validation "github.com/jellydator/validation"

	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
	customValidation "github.com/allisson/trustcore/internal/validation"
)

// InitRequest contains the parameters for initializing the vault.
type InitRequest struct {
	SecretShares    int `json:"secret_shares"`
	SecretThreshold int `json:"secret_threshold"`
}

// Validate checks 1 <= secret_threshold <= secret_shares <= 255.
func (r *InitRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SecretShares,
			validation.Required,
			validation.Min(1),
			validation.Max(255),
		),
		validation.Field(&r.SecretThreshold,
			validation.Required,
			validation.Min(1),
			validation.By(func(value interface{}) error {
				if threshold, _ := value.(int); threshold > r.SecretShares {
					return errors.New("must not exceed secret_shares")
				}
				return nil
			}),
		),
	)
}

// UnsealRequest carries one base64-encoded share.
type UnsealRequest struct {
	Share string `json:"share"`
}

// Validate checks if the unseal request is valid.
func (r *UnsealRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Share,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Base64,
		),
	)
}

// CreateAutoUnsealConfigRequest contains the parameters of an auto-unseal provider.
type CreateAutoUnsealConfigRequest struct {
	Provider     string `json:"provider"`
	KMSKeyID     string `json:"kms_key_id"`
	Region       string `json:"region"`
	MaxRetries   *int   `json:"max_retries"`
	RetryDelayMs *int   `json:"retry_delay_ms"`
}

// Validate checks if the create auto-unseal config request is valid.
func (r *CreateAutoUnsealConfigRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Provider,
			validation.Required,
			validation.By(func(value interface{}) error {
				provider, _ := value.(string)
				return sealDomain.Provider(provider).Validate()
			}),
		),
		validation.Field(&r.KMSKeyID,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoWhitespace,
			validation.Length(1, 2048),
		),
		validation.Field(&r.Region, customValidation.NoWhitespace, validation.Length(0, 64)),
		validation.Field(&r.MaxRetries, validation.Min(0), validation.Max(20)),
		validation.Field(&r.RetryDelayMs, validation.Min(0), validation.Max(60000)),
	)
}

// ToDomain maps the request to an AutoUnsealConfig, applying retry defaults.
func (r *CreateAutoUnsealConfigRequest) ToDomain() *sealDomain.AutoUnsealConfig {
	cfg := &sealDomain.AutoUnsealConfig{
		Provider:     sealDomain.Provider(r.Provider),
		KMSKeyID:     r.KMSKeyID,
		Region:       r.Region,
		MaxRetries:   sealDomain.DefaultMaxRetries,
		RetryDelayMs: sealDomain.DefaultRetryDelayMs,
	}
	if r.MaxRetries != nil {
		cfg.MaxRetries = *r.MaxRetries
	}
	if r.RetryDelayMs != nil {
		cfg.RetryDelayMs = *r.RetryDelayMs
	}
	return cfg
}
