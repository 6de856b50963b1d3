package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
	"github.com/allisson/trustcore/internal/testutil"
)

type certificateStore interface {
	Create(ctx context.Context, cert *pkiDomain.Certificate) error
	Get(ctx context.Context, id uuid.UUID) (*pkiDomain.Certificate, error)
	List(ctx context.Context, filter pkiDomain.CertificateFilter) ([]*pkiDomain.Certificate, error)
	ListActiveCAs(ctx context.Context) ([]*pkiDomain.Certificate, error)
	Revoke(ctx context.Context, id uuid.UUID, revokedAt time.Time, reason string) error
}

func TestCertificateRepository_Integration(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		skip    func(*testing.T)
		setup   func(*testing.T) *sql.DB
		newRepo func(*sql.DB) certificateStore
	}{
		{
			name:   "postgres",
			driver: "postgres",
			skip:   testutil.SkipIfNoPostgres,
			setup:  testutil.SetupPostgresDB,
			newRepo: func(db *sql.DB) certificateStore {
				return NewPostgreSQLCertificateRepository(db)
			},
		},
		{
			name:   "mysql",
			driver: "mysql",
			skip:   testutil.SkipIfNoMySQL,
			setup:  testutil.SetupMySQLDB,
			newRepo: func(db *sql.DB) certificateStore {
				return NewMySQLCertificateRepository(db)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.skip(t)

			db := tt.setup(t)
			defer testutil.TeardownDB(t, db)

			ctx := context.Background()
			repo := tt.newRepo(db)
			caID := testutil.CreateTestCA(t, db, tt.driver, "Integration Root")

			leaf := newLeaf()
			leaf.IssuerID = &caID
			require.NoError(t, repo.Create(ctx, leaf))

			got, err := repo.Get(ctx, leaf.ID)
			require.NoError(t, err)
			assert.Equal(t, leaf.SerialNumber, got.SerialNumber)
			assert.Equal(t, leaf.KeyUsage, got.KeyUsage)
			require.NotNil(t, got.IssuerID)
			assert.Equal(t, caID, *got.IssuerID)
			assert.True(t, leaf.ValidUntil.Equal(got.ValidUntil))

			duplicate := newLeaf()
			duplicate.IssuerID = &caID
			assert.ErrorIs(t, repo.Create(ctx, duplicate), pkiDomain.ErrSerialCollision)

			cas, err := repo.ListActiveCAs(ctx)
			require.NoError(t, err)
			require.Len(t, cas, 1)
			assert.Equal(t, caID, cas[0].ID)

			leafType := pkiDomain.CertTypeAgentClient
			listed, err := repo.List(ctx, pkiDomain.CertificateFilter{CertType: &leafType, Limit: 10})
			require.NoError(t, err)
			require.Len(t, listed, 1)
			assert.Equal(t, leaf.ID, listed[0].ID)

			revokedAt := time.Now().UTC().Truncate(time.Microsecond)
			require.NoError(t, repo.Revoke(ctx, leaf.ID, revokedAt, "key compromise"))
			assert.ErrorIs(t, repo.Revoke(ctx, leaf.ID, revokedAt, "again"), pkiDomain.ErrCertificateAlreadyRevoked)
			assert.ErrorIs(t, repo.Revoke(ctx, uuid.Must(uuid.NewV7()), revokedAt, "missing"),
				pkiDomain.ErrCertificateNotFound)

			got, err = repo.Get(ctx, leaf.ID)
			require.NoError(t, err)
			assert.True(t, got.Revoked)
			require.NotNil(t, got.RevocationReason)
			assert.Equal(t, "key compromise", *got.RevocationReason)

			_, err = repo.Get(ctx, uuid.Must(uuid.NewV7()))
			assert.ErrorIs(t, err, pkiDomain.ErrCertificateNotFound)
		})
	}
}
