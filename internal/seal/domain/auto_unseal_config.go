package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Provider names an external key management service used for auto-unseal.
type Provider string

const (
	ProviderAWSKMS        Provider = "awskms"
	ProviderGCPKMS        Provider = "gcpkms"
	ProviderAzureKeyVault Provider = "azurekeyvault"
	ProviderHashiVault    Provider = "hashivault"
	// ProviderLocal wraps shares with a base64key:// key and is intended for tests and development.
	ProviderLocal Provider = "localsecrets"
)

// Validate reports whether p is a supported provider.
func (p Provider) Validate() error {
	switch p {
	case ProviderAWSKMS, ProviderGCPKMS, ProviderAzureKeyVault, ProviderHashiVault, ProviderLocal:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProvider, string(p))
	}
}

// Default retry policy for auto-unseal KMS calls.
const (
	DefaultMaxRetries   = 5
	DefaultRetryDelayMs = 500
)

// AutoUnsealConfig references a KMS key used to wrap the unseal shares.
// WrappedShares is filled in by Initialize.
type AutoUnsealConfig struct {
	ID            uuid.UUID
	Provider      Provider
	KMSKeyID      string
	Region        string
	WrappedShares [][]byte
	Active        bool
	MaxRetries    int
	RetryDelayMs  int
	CreatedAt     time.Time
}

// KeyURI returns the gocloud.dev/secrets URL for the configured key. A KMSKeyID
// that already contains a scheme is used verbatim.
func (c *AutoUnsealConfig) KeyURI() string {
	if strings.Contains(c.KMSKeyID, "://") {
		return c.KMSKeyID
	}

	switch c.Provider {
	case ProviderAWSKMS:
		uri := "awskms:///" + c.KMSKeyID
		if c.Region != "" {
			uri += "?region=" + url.QueryEscape(c.Region)
		}
		return uri
	case ProviderGCPKMS:
		return "gcpkms://" + c.KMSKeyID
	case ProviderAzureKeyVault:
		return "azurekeyvault://" + c.KMSKeyID
	case ProviderHashiVault:
		return "hashivault://" + c.KMSKeyID
	default:
		return "base64key://" + c.KMSKeyID
	}
}

// RetryDelay returns the initial backoff interval.
func (c *AutoUnsealConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}
