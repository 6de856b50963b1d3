package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
)

var (
	sealConfigColumns = []string{"id", "threshold", "total_shares", "verification_hash", "created_at"}
	autoUnsealCols    = []string{
		"id", "provider", "kms_key_id", "region", "wrapped_shares",
		"active", "max_retries", "retry_delay_ms", "created_at",
	}
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newSealConfig() *sealDomain.SealConfig {
	return &sealDomain.SealConfig{
		ID:               uuid.Must(uuid.NewV7()),
		Threshold:        3,
		TotalShares:      5,
		VerificationHash: "$argon2id$v=19$m=65536,t=3,p=4$hash",
		CreatedAt:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPostgreSQLSealConfigRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSealConfigRepository(db)
		cfg := newSealConfig()

		mock.ExpectExec("INSERT INTO seal_configs").
			WithArgs(sqlmock.AnyArg(), 3, 5, cfg.VerificationHash, cfg.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, cfg))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSealConfigRepository(db)

		mock.ExpectExec("INSERT INTO seal_configs").WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(ctx, newSealConfig())
		assert.ErrorIs(t, err, sealDomain.ErrAlreadyInitialized)
	})

	t.Run("Get", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSealConfigRepository(db)
		cfg := newSealConfig()

		mock.ExpectQuery("SELECT (.+) FROM seal_configs").
			WillReturnRows(sqlmock.NewRows(sealConfigColumns).
				AddRow(cfg.ID.String(), cfg.Threshold, cfg.TotalShares, cfg.VerificationHash, cfg.CreatedAt))

		got, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, cfg, got)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSealConfigRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM seal_configs").WillReturnRows(sqlmock.NewRows(sealConfigColumns))

		_, err := repo.Get(ctx)
		assert.ErrorIs(t, err, sealDomain.ErrSealConfigNotFound)
	})
}

func TestMySQLSealConfigRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLSealConfigRepository(db)
		cfg := newSealConfig()
		id, _ := cfg.ID.MarshalBinary()

		mock.ExpectExec("INSERT INTO seal_configs").
			WithArgs(id, 3, 5, cfg.VerificationHash, cfg.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, cfg))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateDuplicate", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLSealConfigRepository(db)

		mock.ExpectExec("INSERT INTO seal_configs").WillReturnError(&mysql.MySQLError{Number: 1062})

		assert.ErrorIs(t, repo.Create(ctx, newSealConfig()), sealDomain.ErrAlreadyInitialized)
	})

	t.Run("Get", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLSealConfigRepository(db)
		cfg := newSealConfig()
		id, _ := cfg.ID.MarshalBinary()

		mock.ExpectQuery("SELECT (.+) FROM seal_configs").
			WillReturnRows(sqlmock.NewRows(sealConfigColumns).
				AddRow(id, cfg.Threshold, cfg.TotalShares, cfg.VerificationHash, cfg.CreatedAt))

		got, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, cfg, got)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLSealConfigRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM seal_configs").WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx)
		assert.ErrorIs(t, err, sealDomain.ErrSealConfigNotFound)
	})
}

func newAutoUnsealConfig() *sealDomain.AutoUnsealConfig {
	return &sealDomain.AutoUnsealConfig{
		ID:           uuid.Must(uuid.NewV7()),
		Provider:     sealDomain.ProviderAWSKMS,
		KMSKeyID:     "alias/vault",
		Region:       "us-east-1",
		Active:       true,
		MaxRetries:   5,
		RetryDelayMs: 500,
		CreatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestPostgreSQLAutoUnsealConfigRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLAutoUnsealConfigRepository(db)
		cfg := newAutoUnsealConfig()

		mock.ExpectExec("INSERT INTO auto_unseal_configs").
			WithArgs(
				sqlmock.AnyArg(), "awskms", "alias/vault", "us-east-1", []byte("[]"),
				true, 5, 500, cfg.CreatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, cfg))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateDuplicateActiveProvider", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLAutoUnsealConfigRepository(db)

		mock.ExpectExec("INSERT INTO auto_unseal_configs").WillReturnError(&pq.Error{Code: "23505"})

		assert.ErrorIs(t, repo.Create(ctx, newAutoUnsealConfig()), sealDomain.ErrAutoUnsealConfigExists)
	})

	t.Run("GetActive", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLAutoUnsealConfigRepository(db)
		cfg := newAutoUnsealConfig()
		cfg.WrappedShares = [][]byte{{0x01, 0x02}, {0x03}}

		mock.ExpectQuery("SELECT (.+) FROM auto_unseal_configs WHERE active = true").
			WillReturnRows(sqlmock.NewRows(autoUnsealCols).AddRow(
				cfg.ID.String(), "awskms", "alias/vault", "us-east-1", []byte(`["AQI=","Aw=="]`),
				true, 5, 500, cfg.CreatedAt,
			))

		got, err := repo.GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, cfg, got)
	})

	t.Run("GetActiveNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLAutoUnsealConfigRepository(db)

		mock.ExpectQuery("SELECT (.+) FROM auto_unseal_configs").WillReturnRows(sqlmock.NewRows(autoUnsealCols))

		_, err := repo.GetActive(ctx)
		assert.ErrorIs(t, err, sealDomain.ErrAutoUnsealConfigNotFound)
	})

	t.Run("List", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLAutoUnsealConfigRepository(db)
		cfg := newAutoUnsealConfig()

		mock.ExpectQuery("SELECT (.+) FROM auto_unseal_configs ORDER BY created_at").
			WillReturnRows(sqlmock.NewRows(autoUnsealCols).
				AddRow(cfg.ID.String(), "awskms", "alias/vault", "us-east-1", []byte(`[]`), true, 5, 500, cfg.CreatedAt).
				AddRow(uuid.Must(uuid.NewV7()).String(), "gcpkms", "k", "", []byte(`[]`), false, 3, 100, cfg.CreatedAt))

		configs, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, configs, 2)
		assert.Equal(t, cfg, configs[0])
		assert.Equal(t, sealDomain.ProviderGCPKMS, configs[1].Provider)
		assert.Nil(t, configs[1].WrappedShares)
	})

	t.Run("UpdateWrappedShares", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLAutoUnsealConfigRepository(db)
		id := uuid.Must(uuid.NewV7())

		mock.ExpectExec("UPDATE auto_unseal_configs SET wrapped_shares").
			WithArgs([]byte(`["AQI="]`), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateWrappedShares(ctx, id, [][]byte{{0x01, 0x02}}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateWrappedSharesNotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLAutoUnsealConfigRepository(db)

		mock.ExpectExec("UPDATE auto_unseal_configs").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateWrappedShares(ctx, uuid.Must(uuid.NewV7()), [][]byte{{1}})
		assert.ErrorIs(t, err, sealDomain.ErrAutoUnsealConfigNotFound)
	})
}

func TestMySQLAutoUnsealConfigRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAutoUnsealConfigRepository(db)
		cfg := newAutoUnsealConfig()
		id, _ := cfg.ID.MarshalBinary()

		mock.ExpectExec("INSERT INTO auto_unseal_configs").
			WithArgs(id, "awskms", "alias/vault", "us-east-1", []byte("[]"), true, 5, 500, cfg.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, cfg))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetActive", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAutoUnsealConfigRepository(db)
		cfg := newAutoUnsealConfig()
		id, _ := cfg.ID.MarshalBinary()

		mock.ExpectQuery("SELECT (.+) FROM auto_unseal_configs WHERE active = true").
			WillReturnRows(sqlmock.NewRows(autoUnsealCols).
				AddRow(id, "awskms", "alias/vault", "us-east-1", []byte(`[]`), true, 5, 500, cfg.CreatedAt))

		got, err := repo.GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, cfg, got)
	})

	t.Run("List", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAutoUnsealConfigRepository(db)
		cfg := newAutoUnsealConfig()
		id, _ := cfg.ID.MarshalBinary()

		mock.ExpectQuery("SELECT (.+) FROM auto_unseal_configs").
			WillReturnRows(sqlmock.NewRows(autoUnsealCols).
				AddRow(id, "awskms", "alias/vault", "us-east-1", []byte(`[]`), true, 5, 500, cfg.CreatedAt))

		configs, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, configs, 1)
		assert.Equal(t, cfg.ID, configs[0].ID)
	})

	t.Run("UpdateWrappedShares", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAutoUnsealConfigRepository(db)
		id := uuid.Must(uuid.NewV7())
		idBytes, _ := id.MarshalBinary()

		mock.ExpectExec("UPDATE auto_unseal_configs SET wrapped_shares").
			WithArgs([]byte(`["AQI="]`), idBytes).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateWrappedShares(ctx, id, [][]byte{{0x01, 0x02}}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
