package service

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
	apperrors "github.com/allisson/trustcore/internal/errors"
)

// KeeperSchemes lists the gocloud.dev/secrets URL schemes registered by this package.
var KeeperSchemes = []string{"awskms", "gcpkms", "azurekeyvault", "hashivault", "base64key"}

// ErrUnsupportedKeeperScheme is returned for key URIs outside KeeperSchemes.
var ErrUnsupportedKeeperScheme = apperrors.Wrap(apperrors.ErrInvalidInput, "unsupported KMS key URI scheme")

// KMSService opens keepers against external key management services.
type KMSService interface {
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}

type kmsService struct{}

func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a keeper for keyURI. Errors never echo the URI body because a
// base64key:// URI carries the key itself.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	scheme, _, found := strings.Cut(keyURI, "://")
	if !found || !slices.Contains(KeeperSchemes, scheme) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKeeperScheme, scheme)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper %s: %s", RedactKeyURI(keyURI), redact(err.Error(), keyURI))
	}
	return keeper, nil
}

// RedactKeyURI keeps the scheme and, for remote providers, the host so logs
// still identify the key without exposing local key material.
func RedactKeyURI(keyURI string) string {
	u, err := url.Parse(keyURI)
	if err != nil || u.Scheme == "" {
		return "[redacted]"
	}
	if u.Scheme == "base64key" {
		return "base64key://[redacted]"
	}
	return u.Scheme + "://" + u.Host + "/[redacted]"
}

func redact(msg, keyURI string) string {
	msg = strings.ReplaceAll(msg, keyURI, RedactKeyURI(keyURI))
	if _, body, _ := strings.Cut(keyURI, "://"); body != "" {
		msg = strings.ReplaceAll(msg, strings.TrimRight(body, "="), "[redacted]")
	}
	return msg
}
