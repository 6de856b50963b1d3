package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/trustcore/internal/database"
	apperrors "github.com/allisson/trustcore/internal/errors"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
)

// MySQLSealConfigRepository implements seal config persistence for MySQL.
type MySQLSealConfigRepository struct {
	db *sql.DB
}

// NewMySQLSealConfigRepository creates a new MySQL seal config repository.
func NewMySQLSealConfigRepository(db *sql.DB) *MySQLSealConfigRepository {
	return &MySQLSealConfigRepository{db: db}
}

// Create inserts the seal config.
func (m *MySQLSealConfigRepository) Create(ctx context.Context, cfg *sealDomain.SealConfig) error {
	querier := database.GetTx(ctx, m.db)

	id, err := cfg.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal seal config id")
	}

	query := `INSERT INTO seal_configs (id, threshold, total_shares, verification_hash, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(ctx, query, id, cfg.Threshold, cfg.TotalShares, cfg.VerificationHash, cfg.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sealDomain.ErrAlreadyInitialized
		}
		return apperrors.Wrap(err, "failed to create seal config")
	}
	return nil
}

// Get returns the seal config or ErrSealConfigNotFound.
func (m *MySQLSealConfigRepository) Get(ctx context.Context) (*sealDomain.SealConfig, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, threshold, total_shares, verification_hash, created_at
			  FROM seal_configs
			  ORDER BY created_at
			  LIMIT 1`

	var cfg sealDomain.SealConfig
	var id []byte
	err := querier.QueryRowContext(ctx, query).Scan(
		&id,
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

	if cfg.ID, err = uuid.FromBytes(id); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal seal config id")
	}
	return &cfg, nil
}
