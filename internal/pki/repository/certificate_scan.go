// Package repository implements certificate persistence for PostgreSQL and MySQL.
package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/allisson/trustcore/internal/errors"
	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
)

const certificateColumns = `id, serial_number, fingerprint, certificate_pem, private_key_encrypted, subject,
	issuer, common_name, organization, valid_from, valid_until, cert_type, key_usage, issuer_id,
	revoked, revoked_at, revocation_reason, entity_id, entity_type, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// uuidCodec converts ids between uuid.UUID and the driver representation.
type uuidCodec struct {
	encode func(id uuid.UUID) (any, error)
	decode func(raw any) (uuid.UUID, error)
}

var (
	textUUID = uuidCodec{
		encode: func(id uuid.UUID) (any, error) { return id, nil },
		decode: func(raw any) (uuid.UUID, error) {
			switch v := raw.(type) {
			case string:
				return uuid.Parse(v)
			case []byte:
				return uuid.ParseBytes(v)
			default:
				return uuid.Nil, apperrors.New("unexpected uuid column type")
			}
		},
	}

	binaryUUID = uuidCodec{
		encode: func(id uuid.UUID) (any, error) { return id.MarshalBinary() },
		decode: func(raw any) (uuid.UUID, error) {
			b, ok := raw.([]byte)
			if !ok {
				return uuid.Nil, apperrors.New("unexpected uuid column type")
			}
			return uuid.FromBytes(b)
		},
	}
)

// certificateArgs returns the insert arguments in certificateColumns order.
func certificateArgs(cert *pkiDomain.Certificate, codec uuidCodec) ([]any, error) {
	id, err := codec.encode(cert.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal certificate id")
	}

	var issuerID any
	if cert.IssuerID != nil {
		if issuerID, err = codec.encode(*cert.IssuerID); err != nil {
			return nil, apperrors.Wrap(err, "failed to marshal issuer id")
		}
	}

	keyUsage, err := json.Marshal(cert.KeyUsage)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal key usage")
	}

	return []any{
		id,
		cert.SerialNumber,
		cert.Fingerprint,
		cert.CertificatePEM,
		cert.PrivateKeyEncrypted,
		cert.Subject,
		cert.Issuer,
		cert.CommonName,
		cert.Organization,
		cert.ValidFrom,
		cert.ValidUntil,
		string(cert.CertType),
		keyUsage,
		issuerID,
		cert.Revoked,
		cert.RevokedAt,
		cert.RevocationReason,
		cert.EntityID,
		cert.EntityType,
		cert.CreatedAt,
	}, nil
}

func scanCertificate(row rowScanner, codec uuidCodec) (*pkiDomain.Certificate, error) {
	var cert pkiDomain.Certificate
	var rawID, rawIssuerID any
	var certType string
	var keyUsage []byte
	var privateKey, revocationReason, entityID, entityType sql.NullString
	var revokedAt sql.NullTime

	err := row.Scan(
		&rawID,
		&cert.SerialNumber,
		&cert.Fingerprint,
		&cert.CertificatePEM,
		&privateKey,
		&cert.Subject,
		&cert.Issuer,
		&cert.CommonName,
		&cert.Organization,
		&cert.ValidFrom,
		&cert.ValidUntil,
		&certType,
		&keyUsage,
		&rawIssuerID,
		&cert.Revoked,
		&revokedAt,
		&revocationReason,
		&entityID,
		&entityType,
		&cert.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan certificate")
	}

	if cert.ID, err = codec.decode(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse certificate id")
	}
	if rawIssuerID != nil {
		issuerID, err := codec.decode(rawIssuerID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse issuer id")
		}
		cert.IssuerID = &issuerID
	}

	if len(keyUsage) > 0 {
		if err := json.Unmarshal(keyUsage, &cert.KeyUsage); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal key usage")
		}
	}

	cert.CertType = pkiDomain.CertType(certType)
	cert.PrivateKeyEncrypted = nullString(privateKey)
	cert.RevocationReason = nullString(revocationReason)
	cert.EntityID = nullString(entityID)
	cert.EntityType = nullString(entityType)
	if revokedAt.Valid {
		t := revokedAt.Time
		cert.RevokedAt = &t
	}

	return &cert, nil
}

func collectCertificates(rows *sql.Rows, codec uuidCodec) ([]*pkiDomain.Certificate, error) {
	certs := make([]*pkiDomain.Certificate, 0)
	for rows.Next() {
		cert, err := scanCertificate(rows, codec)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate certificates")
	}
	return certs, nil
}

// listQuery builds the filtered, paginated certificate listing. placeholder
// returns the driver bind marker for the n-th argument (1-based).
func listQuery(
	filter pkiDomain.CertificateFilter,
	codec uuidCodec,
	placeholder func(n int) string,
) (string, []any, error) {
	var conditions []string
	var args []any

	bind := func(value any) string {
		args = append(args, value)
		return placeholder(len(args))
	}

	if filter.CertType != nil {
		conditions = append(conditions, "cert_type = "+bind(string(*filter.CertType)))
	}
	if filter.Revoked != nil {
		conditions = append(conditions, "revoked = "+bind(*filter.Revoked))
	}
	if filter.IssuerID != nil {
		issuerID, err := codec.encode(*filter.IssuerID)
		if err != nil {
			return "", nil, apperrors.Wrap(err, "failed to marshal issuer id")
		}
		conditions = append(conditions, "issuer_id = "+bind(issuerID))
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + certificateColumns + " FROM certificates")
	if len(conditions) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	limit := bind(filter.Limit)
	offset := bind(filter.Offset)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC, id DESC LIMIT %s OFFSET %s", limit, offset)

	return sb.String(), args, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
