package usecase_test

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	auditMocks "github.com/allisson/trustcore/internal/audit/usecase/mocks"
	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
	cryptoService "github.com/allisson/trustcore/internal/crypto/service"
	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
	pkiService "github.com/allisson/trustcore/internal/pki/service"
	"github.com/allisson/trustcore/internal/pki/usecase"
	sealDomain "github.com/allisson/trustcore/internal/seal/domain"
	sealUsecase "github.com/allisson/trustcore/internal/seal/usecase"
)

// fakeKeyHolder stands in for the seal state machine with a fixed key.
type fakeKeyHolder struct {
	mu     sync.RWMutex
	sealed bool
	key    []byte
	aead   *cryptoService.AEADManagerService
}

func newFakeKeyHolder(t *testing.T) *fakeKeyHolder {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return &fakeKeyHolder{key: key, aead: cryptoService.NewAEADManager()}
}

func (h *fakeKeyHolder) setSealed(sealed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sealed = sealed
}

func (h *fakeKeyHolder) WithMasterKey(_ context.Context, _ string, fn func(sealUsecase.Sealer) error) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.sealed {
		return sealDomain.ErrVaultSealed
	}
	return fn(keySealer{h})
}

func (h *fakeKeyHolder) open(t *testing.T, encrypted string, aad []byte) []byte {
	t.Helper()
	blob, err := cryptoDomain.ParseSealedBlob(encrypted)
	require.NoError(t, err)
	plaintext, err := h.aead.Open(h.key, blob, aad)
	require.NoError(t, err)
	return plaintext
}

type keySealer struct {
	h *fakeKeyHolder
}

func (s keySealer) Seal(plaintext, aad []byte) (cryptoDomain.SealedBlob, error) {
	return s.h.aead.Seal(s.h.key, cryptoDomain.AESGCM, plaintext, aad)
}

func (s keySealer) Open(blob cryptoDomain.SealedBlob, aad []byte) ([]byte, error) {
	return s.h.aead.Open(s.h.key, blob, aad)
}

// memCertRepo enforces unique serial numbers and fingerprints like the database does.
type memCertRepo struct {
	mu         sync.Mutex
	certs      []*pkiDomain.Certificate
	collisions int
	creates    int
	listErr    error
}

func (r *memCertRepo) Create(_ context.Context, cert *pkiDomain.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.collisions > 0 {
		r.collisions--
		return pkiDomain.ErrSerialCollision
	}
	for _, existing := range r.certs {
		if existing.SerialNumber == cert.SerialNumber || existing.Fingerprint == cert.Fingerprint {
			return pkiDomain.ErrSerialCollision
		}
	}
	stored := *cert
	r.certs = append(r.certs, &stored)
	return nil
}

func (r *memCertRepo) Get(_ context.Context, id uuid.UUID) (*pkiDomain.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cert := range r.certs {
		if cert.ID == id {
			c := *cert
			return &c, nil
		}
	}
	return nil, pkiDomain.ErrCertificateNotFound
}

func (r *memCertRepo) List(_ context.Context, filter pkiDomain.CertificateFilter) ([]*pkiDomain.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*pkiDomain.Certificate
	for _, cert := range r.certs {
		if filter.CertType != nil && cert.CertType != *filter.CertType {
			continue
		}
		if filter.Revoked != nil && cert.Revoked != *filter.Revoked {
			continue
		}
		if filter.IssuerID != nil && (cert.IssuerID == nil || *cert.IssuerID != *filter.IssuerID) {
			continue
		}
		c := *cert
		out = append(out, &c)
	}
	return out, nil
}

func (r *memCertRepo) ListActiveCAs(_ context.Context) ([]*pkiDomain.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []*pkiDomain.Certificate
	for _, cert := range r.certs {
		if cert.CertType.IsCA() && !cert.Revoked {
			c := *cert
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memCertRepo) Revoke(_ context.Context, id uuid.UUID, revokedAt time.Time, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cert := range r.certs {
		if cert.ID != id {
			continue
		}
		if cert.Revoked {
			return pkiDomain.ErrCertificateAlreadyRevoked
		}
		cert.Revoked = true
		cert.RevokedAt = &revokedAt
		cert.RevocationReason = &reason
		return nil
	}
	return pkiDomain.ErrCertificateNotFound
}

func (r *memCertRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.certs)
}

type fixture struct {
	uc     usecase.PKIUseCase
	holder *fakeKeyHolder
	repo   *memCertRepo
	keyGen *countingKeyGenerator
	audit  *auditMocks.RecorderSpy
}

// countingKeyGenerator records how many keys were generated.
type countingKeyGenerator struct {
	pkiService.KeyGenerator
	calls atomic.Int32
}

func (g *countingKeyGenerator) Generate(
	ctx context.Context,
	keyType pkiDomain.KeyType,
	keySize int,
) (crypto.Signer, error) {
	g.calls.Add(1)
	return g.KeyGenerator.Generate(ctx, keyType, keySize)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		holder: newFakeKeyHolder(t),
		repo:   &memCertRepo{},
		keyGen: &countingKeyGenerator{KeyGenerator: pkiService.NewKeyGenerator(4)},
		audit:  &auditMocks.RecorderSpy{},
	}
	f.uc = usecase.NewPKIUseCase(
		usecase.Config{
			DefaultRootValidityDays:         3650,
			DefaultIntermediateValidityDays: 1825,
			DefaultLeafValidityDays:         365,
		},
		f.holder,
		f.repo,
		f.keyGen,
		pkiService.NewCertificateSigner(),
		f.audit,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func ecdsaOptions(days int) pkiDomain.KeyOptions {
	return pkiDomain.KeyOptions{KeyType: pkiDomain.KeyTypeECDSA, ValidityDays: days, Country: "BR"}
}

func (f *fixture) root(t *testing.T) *pkiDomain.IssuedCertificate {
	t.Helper()
	issued, err := f.uc.GenerateRootCA(context.Background(), &pkiDomain.RootCARequest{
		CommonName:   "Root CA",
		Organization: "Acme",
		Options:      ecdsaOptions(3650),
	})
	require.NoError(t, err)
	return issued
}

func (f *fixture) intermediate(t *testing.T, parentID uuid.UUID, days int) *pkiDomain.Certificate {
	t.Helper()
	cert, err := f.uc.GenerateIntermediateCA(context.Background(), &pkiDomain.IntermediateCARequest{
		CommonName:   "Intermediate CA",
		Organization: "Acme",
		ParentCAID:   parentID,
		Options:      ecdsaOptions(days),
	})
	require.NoError(t, err)
	return cert
}

// newCSR returns a PEM encoded CSR for a fresh P-256 key.
func newCSR(t *testing.T, subject pkix.Name) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.CreateCertificateRequest(rand.Reader, &x509.CertificateRequest{Subject: subject}, key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: der}))
}

func parsePEM(t *testing.T, certPEM string) *x509.Certificate {
	t.Helper()
	cert, err := pkiService.DecodeCertificatePEM(certPEM)
	require.NoError(t, err)
	return cert
}
