// Package repository implements persistence for the seal configuration and
// auto-unseal provider configurations on PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/trustcore/internal/database"
	apperrors "github.com/allisson/trustcore/internal/errors"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
)

// PostgreSQLSealConfigRepository implements seal config persistence for PostgreSQL.
type PostgreSQLSealConfigRepository struct {
	db *sql.DB
}

// NewPostgreSQLSealConfigRepository creates a new PostgreSQL seal config repository.
func NewPostgreSQLSealConfigRepository(db *sql.DB) *PostgreSQLSealConfigRepository {
	return &PostgreSQLSealConfigRepository{db: db}
}

// Create inserts the seal config. The table admits a single row, so a second
// insert fails with ErrAlreadyInitialized.
func (p *PostgreSQLSealConfigRepository) Create(ctx context.Context, cfg *sealDomain.SealConfig) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO seal_configs (id, threshold, total_shares, verification_hash, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		cfg.ID,
		cfg.Threshold,
		cfg.TotalShares,
		cfg.VerificationHash,
		cfg.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sealDomain.ErrAlreadyInitialized
		}
		return apperrors.Wrap(err, "failed to create seal config")
	}
	return nil
}

// Get returns the seal config or ErrSealConfigNotFound.
func (p *PostgreSQLSealConfigRepository) Get(ctx context.Context) (*sealDomain.SealConfig, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, threshold, total_shares, verification_hash, created_at
			  FROM seal_configs
			  ORDER BY created_at
			  LIMIT 1`

	var cfg sealDomain.SealConfig
	err := querier.QueryRowContext(ctx, query).Scan(
		&cfg.ID,
		&cfg.Threshold,
		&cfg.TotalShares,
		&cfg.VerificationHash,
		&cfg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sealDomain.ErrSealConfigNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get seal config")
	}
	return &cfg, nil
}
