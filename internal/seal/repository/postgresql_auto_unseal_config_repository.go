package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/trustcore/internal/database"
	apperrors "github.com/allisson/trustcore/internal/errors"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
)

const autoUnsealColumns = `id, provider, kms_key_id, region, wrapped_shares, active, max_retries, retry_delay_ms, created_at`

// PostgreSQLAutoUnsealConfigRepository implements auto-unseal config persistence for PostgreSQL.
type PostgreSQLAutoUnsealConfigRepository struct {
	db *sql.DB
}

// NewPostgreSQLAutoUnsealConfigRepository creates a new PostgreSQL auto-unseal config repository.
func NewPostgreSQLAutoUnsealConfigRepository(db *sql.DB) *PostgreSQLAutoUnsealConfigRepository {
	return &PostgreSQLAutoUnsealConfigRepository{db: db}
}

// Create inserts cfg. A second active config for the same provider fails with
// ErrAutoUnsealConfigExists.
func (p *PostgreSQLAutoUnsealConfigRepository) Create(ctx context.Context, cfg *sealDomain.AutoUnsealConfig) error {
	querier := database.GetTx(ctx, p.db)

	wrapped, err := marshalWrappedShares(cfg.WrappedShares)
	if err != nil {
		return err
	}

	query := `INSERT INTO auto_unseal_configs (` + autoUnsealColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		cfg.ID,
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
func (p *PostgreSQLAutoUnsealConfigRepository) GetActive(ctx context.Context) (*sealDomain.AutoUnsealConfig, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + autoUnsealColumns + `
			  FROM auto_unseal_configs
			  WHERE active = true
			  ORDER BY created_at
			  LIMIT 1`

	cfg, err := scanAutoUnsealConfig(querier.QueryRowContext(ctx, query), scanUUIDText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sealDomain.ErrAutoUnsealConfigNotFound
		}
		return nil, err
	}
	return cfg, nil
}

// List returns every config, oldest first.
func (p *PostgreSQLAutoUnsealConfigRepository) List(ctx context.Context) ([]*sealDomain.AutoUnsealConfig, error) {
	querier := database.GetTx(ctx, p.db)

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

	return collectAutoUnsealConfigs(rows, scanUUIDText)
}

// UpdateWrappedShares replaces the wrapped shares of config id.
func (p *PostgreSQLAutoUnsealConfigRepository) UpdateWrappedShares(
	ctx context.Context,
	id uuid.UUID,
	wrappedShares [][]byte,
) error {
	querier := database.GetTx(ctx, p.db)

	wrapped, err := marshalWrappedShares(wrappedShares)
	if err != nil {
		return err
	}

	result, err := querier.ExecContext(
		ctx,
		`UPDATE auto_unseal_configs SET wrapped_shares = $1 WHERE id = $2`,
		wrapped,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update wrapped shares")
	}
	return requireOneRow(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// uuidScanner converts the driver-specific id column into a uuid.UUID.
type uuidScanner func(raw any) (uuid.UUID, error)

func scanUUIDText(raw any) (uuid.UUID, error) {
	switch v := raw.(type) {
	case string:
		return uuid.Parse(v)
	case []byte:
		return uuid.ParseBytes(v)
	default:
		return uuid.Nil, apperrors.New("unexpected uuid column type")
	}
}

func scanUUIDBinary(raw any) (uuid.UUID, error) {
	b, ok := raw.([]byte)
	if !ok {
		return uuid.Nil, apperrors.New("unexpected uuid column type")
	}
	return uuid.FromBytes(b)
}

func scanAutoUnsealConfig(row rowScanner, parseID uuidScanner) (*sealDomain.AutoUnsealConfig, error) {
	var cfg sealDomain.AutoUnsealConfig
	var rawID any
	var provider string
	var wrapped []byte

	err := row.Scan(
		&rawID,
		&provider,
		&cfg.KMSKeyID,
		&cfg.Region,
		&wrapped,
		&cfg.Active,
		&cfg.MaxRetries,
		&cfg.RetryDelayMs,
		&cfg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, "failed to scan auto-unseal config")
	}

	if cfg.ID, err = parseID(rawID); err != nil {
		return nil, apperrors.Wrap(err, "failed to parse auto-unseal config id")
	}
	cfg.Provider = sealDomain.Provider(provider)

	if cfg.WrappedShares, err = unmarshalWrappedShares(wrapped); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func collectAutoUnsealConfigs(rows *sql.Rows, parseID uuidScanner) ([]*sealDomain.AutoUnsealConfig, error) {
	configs := make([]*sealDomain.AutoUnsealConfig, 0)
	for rows.Next() {
		cfg, err := scanAutoUnsealConfig(rows, parseID)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate auto-unseal configs")
	}
	return configs, nil
}

// Wrapped shares are stored as a JSON array of base64 strings.
func marshalWrappedShares(shares [][]byte) ([]byte, error) {
	if shares == nil {
		shares = [][]byte{}
	}
	data, err := json.Marshal(shares)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal wrapped shares")
	}
	return data, nil
}

func unmarshalWrappedShares(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var shares [][]byte
	if err := json.Unmarshal(data, &shares); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal wrapped shares")
	}
	if len(shares) == 0 {
		return nil, nil
	}
	return shares, nil
}

func requireOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return sealDomain.ErrAutoUnsealConfigNotFound
	}
	return nil
}
