package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/trustcore/internal/database"
	apperrors "github.com/allisson/trustcore/internal/errors"
	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
)

// MySQLCertificateRepository implements certificate persistence for MySQL.
// UUIDs are stored as BINARY(16).
type MySQLCertificateRepository struct {
	db *sql.DB
}

// NewMySQLCertificateRepository creates a new MySQL certificate repository.
func NewMySQLCertificateRepository(db *sql.DB) *MySQLCertificateRepository {
	return &MySQLCertificateRepository{db: db}
}

// Create inserts cert. A duplicate serial number or fingerprint is reported as ErrSerialCollision.
func (m *MySQLCertificateRepository) Create(ctx context.Context, cert *pkiDomain.Certificate) error {
	querier := database.GetTx(ctx, m.db)

	args, err := certificateArgs(cert, binaryUUID)
	if err != nil {
		return err
	}

	query := `INSERT INTO certificates (` + certificateColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return pkiDomain.ErrSerialCollision
		}
		return apperrors.Wrap(err, "failed to create certificate")
	}
	return nil
}

// Get returns the certificate with the given id.
func (m *MySQLCertificateRepository) Get(ctx context.Context, id uuid.UUID) (*pkiDomain.Certificate, error) {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal certificate id")
	}

	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE id = ?`

	cert, err := scanCertificate(querier.QueryRowContext(ctx, query, idBytes), binaryUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkiDomain.ErrCertificateNotFound
		}
		return nil, err
	}
	return cert, nil
}

// List returns certificates matching filter, newest first.
func (m *MySQLCertificateRepository) List(
	ctx context.Context,
	filter pkiDomain.CertificateFilter,
) ([]*pkiDomain.Certificate, error) {
	querier := database.GetTx(ctx, m.db)

	query, args, err := listQuery(filter, binaryUUID, func(int) string { return "?" })
	if err != nil {
		return nil, err
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list certificates")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectCertificates(rows, binaryUUID)
}

// ListActiveCAs returns unrevoked root and intermediate CAs, oldest first.
func (m *MySQLCertificateRepository) ListActiveCAs(ctx context.Context) ([]*pkiDomain.Certificate, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + certificateColumns + `
			  FROM certificates
			  WHERE cert_type IN (?, ?) AND revoked = false
			  ORDER BY created_at, id`

	rows, err := querier.QueryContext(
		ctx,
		query,
		string(pkiDomain.CertTypeRootCA),
		string(pkiDomain.CertTypeIntermediateCA),
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active CAs")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectCertificates(rows, binaryUUID)
}

// Revoke marks an unrevoked certificate as revoked.
func (m *MySQLCertificateRepository) Revoke(
	ctx context.Context,
	id uuid.UUID,
	revokedAt time.Time,
	reason string,
) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal certificate id")
	}

	query := `UPDATE certificates
			  SET revoked = true, revoked_at = ?, revocation_reason = ?
			  WHERE id = ? AND revoked = false`

	result, err := querier.ExecContext(ctx, query, revokedAt, reason, idBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke certificate")
	}

	return revokeOutcome(result, func() error {
		var revoked bool
		return querier.QueryRowContext(ctx, `SELECT revoked FROM certificates WHERE id = ?`, idBytes).Scan(&revoked)
	})
}
