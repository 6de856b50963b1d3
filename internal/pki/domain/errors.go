package domain

import (
	"github.com/allisson/trustcore/internal/errors"
)

// PKI errors.
var (
	// ErrCertificateNotFound indicates the certificate (or issuing CA) does not exist.
	ErrCertificateNotFound = errors.Wrap(errors.ErrNotFound, "certificate not found")

	// ErrNotACA indicates the referenced issuer is not a root or intermediate CA.
	ErrNotACA = errors.Wrap(errors.ErrInvalidInput, "certificate is not a CA")

	// ErrCARevoked indicates the referenced issuer has been revoked and can no longer sign.
	ErrCARevoked = errors.Wrap(errors.ErrInvalidInput, "CA certificate is revoked")

	// ErrInvalidCSR indicates the certificate request is malformed, has a bad signature, or lacks a CN.
	ErrInvalidCSR = errors.Wrap(errors.ErrInvalidInput, "invalid certificate signing request")

	// ErrInvalidCommonName indicates an empty common name.
	ErrInvalidCommonName = errors.Wrap(errors.ErrInvalidInput, "common name is required")

	// ErrInvalidOrganization indicates an empty organization.
	ErrInvalidOrganization = errors.Wrap(errors.ErrInvalidInput, "organization is required")

	// ErrInvalidKeyType indicates a key type other than rsa or ecdsa.
	ErrInvalidKeyType = errors.Wrap(errors.ErrInvalidInput, "key type must be rsa or ecdsa")

	// ErrInvalidKeySize indicates an unsupported key size for the key type.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrInvalidCountry indicates a country that is not a two-letter code.
	ErrInvalidCountry = errors.Wrap(errors.ErrInvalidInput, "country must be a two-letter code")

	// ErrInvalidValidity indicates validity_days is out of range.
	ErrInvalidValidity = errors.Wrap(errors.ErrInvalidInput, "validity days must be between 1 and 36500")

	// ErrValidityExceedsIssuer indicates the requested validity ends after the issuer's.
	ErrValidityExceedsIssuer = errors.Wrap(errors.ErrInvalidInput, "validity exceeds issuer validity")

	// ErrInvalidCertType indicates a certificate type that cannot be used for the operation.
	ErrInvalidCertType = errors.Wrap(errors.ErrInvalidInput, "invalid certificate type")

	// ErrInvalidRevocationReason indicates an empty revocation reason.
	ErrInvalidRevocationReason = errors.Wrap(errors.ErrInvalidInput, "revocation reason is required")

	// ErrCertificateAlreadyRevoked indicates a revoke on a revoked certificate.
	ErrCertificateAlreadyRevoked = errors.Wrap(errors.ErrConflict, "certificate already revoked")

	// ErrSerialCollision indicates the serial number or fingerprint is already stored.
	ErrSerialCollision = errors.Wrap(errors.ErrConflict, "certificate serial number collision")

	// ErrCrypto indicates key generation, signing or key decoding failed.
	ErrCrypto = errors.New("crypto operation failed")
)
