package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/trustcore/internal/database"
	apperrors "github.com/allisson/trustcore/internal/errors"
	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
)

// PostgreSQLCertificateRepository implements certificate persistence for PostgreSQL.
type PostgreSQLCertificateRepository struct {
	db *sql.DB
}

// NewPostgreSQLCertificateRepository creates a new PostgreSQL certificate repository.
func NewPostgreSQLCertificateRepository(db *sql.DB) *PostgreSQLCertificateRepository {
	return &PostgreSQLCertificateRepository{db: db}
}

// Create inserts cert. A duplicate serial number or fingerprint is reported as ErrSerialCollision.
func (p *PostgreSQLCertificateRepository) Create(ctx context.Context, cert *pkiDomain.Certificate) error {
	querier := database.GetTx(ctx, p.db)

	args, err := certificateArgs(cert, textUUID)
	if err != nil {
		return err
	}

	query := `INSERT INTO certificates (` + certificateColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return pkiDomain.ErrSerialCollision
		}
		return apperrors.Wrap(err, "failed to create certificate")
	}
	return nil
}

// Get returns the certificate with the given id.
func (p *PostgreSQLCertificateRepository) Get(ctx context.Context, id uuid.UUID) (*pkiDomain.Certificate, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE id = $1`

	cert, err := scanCertificate(querier.QueryRowContext(ctx, query, id), textUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkiDomain.ErrCertificateNotFound
		}
		return nil, err
	}
	return cert, nil
}

// List returns certificates matching filter, newest first.
func (p *PostgreSQLCertificateRepository) List(
	ctx context.Context,
	filter pkiDomain.CertificateFilter,
) ([]*pkiDomain.Certificate, error) {
	querier := database.GetTx(ctx, p.db)

	query, args, err := listQuery(filter, textUUID, func(n int) string { return "$" + strconv.Itoa(n) })
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

	return collectCertificates(rows, textUUID)
}

// ListActiveCAs returns unrevoked root and intermediate CAs, oldest first.
func (p *PostgreSQLCertificateRepository) ListActiveCAs(ctx context.Context) ([]*pkiDomain.Certificate, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + certificateColumns + `
			  FROM certificates
			  WHERE cert_type IN ($1, $2) AND revoked = false
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

	return collectCertificates(rows, textUUID)
}

// Revoke marks an unrevoked certificate as revoked.
func (p *PostgreSQLCertificateRepository) Revoke(
	ctx context.Context,
	id uuid.UUID,
	revokedAt time.Time,
	reason string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE certificates
			  SET revoked = true, revoked_at = $1, revocation_reason = $2
			  WHERE id = $3 AND revoked = false`

	result, err := querier.ExecContext(ctx, query, revokedAt, reason, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke certificate")
	}

	return revokeOutcome(result, func() error {
		var revoked bool
		return querier.QueryRowContext(ctx, `SELECT revoked FROM certificates WHERE id = $1`, id).Scan(&revoked)
	})
}

// revokeOutcome explains a revoke that matched no rows: the certificate is
// either missing or already revoked.
func revokeOutcome(result sql.Result, exists func() error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if affected > 0 {
		return nil
	}

	if err := exists(); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pkiDomain.ErrCertificateNotFound
		}
		return apperrors.Wrap(err, "failed to check certificate")
	}
	return pkiDomain.ErrCertificateAlreadyRevoked
}
