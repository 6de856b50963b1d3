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

// MySQLAutoUnsealConfigRepository implements auto-unseal config persistence for MySQL.
type MySQLAutoUnsealConfigRepository struct {
	db *sql.DB
}

// NewMySQLAutoUnsealConfigRepository creates a new MySQL auto-unseal config repository.
func NewMySQLAutoUnsealConfigRepository(db *sql.DB) *MySQLAutoUnsealConfigRepository {
	return &MySQLAutoUnsealConfigRepository{db: db}
}

// Create inserts cfg.
func (m *MySQLAutoUnsealConfigRepository) Create(ctx context.Context, cfg *sealDomain.AutoUnsealConfig) error {
	querier := database.GetTx(ctx, m.db)

	id, err := cfg.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal auto-unseal config id")
	}

	wrapped, err := marshalWrappedShares(cfg.WrappedShares)
	if err != nil {
		return err
	}

	query := `INSERT INTO auto_unseal_configs (` + autoUnsealColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		string(cfg.Provider),
		cfg.KMSKeyID,
		cfg.Region,
		wrapped,
		cfg.Active,
		cfg.MaxRetries,
		cfg.RetryDelayMs,
		cfg.CreatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return sealDomain.ErrAutoUnsealConfigExists
		}
		return apperrors.Wrap(err, "failed to create auto-unseal config")
	}
	return nil
}

// GetActive returns the oldest active config.
func (m *MySQLAutoUnsealConfigRepository) GetActive(ctx context.Context) (*sealDomain.AutoUnsealConfig, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + autoUnsealColumns + `
			  FROM auto_unseal_configs
			  WHERE active = true
			  ORDER BY created_at
			  LIMIT 1`

	cfg, err := scanAutoUnsealConfig(querier.QueryRowContext(ctx, query), scanUUIDBinary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sealDomain.ErrAutoUnsealConfigNotFound
		}
		return nil, err
	}
	return cfg, nil
}

// List returns every config, oldest first.
func (m *MySQLAutoUnsealConfigRepository) List(ctx context.Context) ([]*sealDomain.AutoUnsealConfig, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + autoUnsealColumns + `
			  FROM auto_unseal_configs
			  ORDER BY created_at`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list auto-unseal configs")
	}
	defer func() {
		_ = rows.Close()
	}()

	return collectAutoUnsealConfigs(rows, scanUUIDBinary)
}

// UpdateWrappedShares replaces the wrapped shares of config id.
func (m *MySQLAutoUnsealConfigRepository) UpdateWrappedShares(
	ctx context.Context,
	id uuid.UUID,
	wrappedShares [][]byte,
) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal auto-unseal config id")
	}

	wrapped, err := marshalWrappedShares(wrappedShares)
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(
		ctx,
		`UPDATE auto_unseal_configs SET wrapped_shares = ? WHERE id = ?`,
		wrapped,
		idBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update wrapped shares")
	}
	return requireOneRow(result)
}
