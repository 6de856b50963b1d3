// Package usecase implements the certificate authority engine.
//
// CA private keys are stored as PKCS#8 sealed with a sub-key of the master key
// and the certificate id as associated data, so every operation that needs a
// CA key fails with sealDomain.ErrVaultSealed while the vault is sealed. Key
// generation and signing run outside the seal lock; WithMasterKey is held only
// while a key is sealed or opened.
package usecase

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
	auditUsecase "github.com/allisson/trustcore/internal/audit/usecase"
	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
	pkiService "github.com/allisson/trustcore/internal/pki/service"
	"github.com/allisson/trustcore/internal/pki/x509der"
	sealService "github.com/allisson/trustcore/internal/seal/service"
	sealUsecase "github.com/allisson/trustcore/internal/seal/usecase"
)

// maxSerialAttempts bounds re-signing after a serial number collision.
const maxSerialAttempts = 3

// Config holds PKI defaults applied when a request omits validity_days.
type Config struct {
	DefaultRootValidityDays         int
	DefaultIntermediateValidityDays int
	DefaultLeafValidityDays         int
}

type pkiUseCase struct {
	config    Config
	keyHolder sealUsecase.KeyHolder
	certRepo  CertificateRepository
	keyGen    pkiService.KeyGenerator
	signer    pkiService.CertificateSigner
	audit     auditUsecase.Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewPKIUseCase creates the certificate authority engine.
func NewPKIUseCase(
	config Config,
	keyHolder sealUsecase.KeyHolder,
	certRepo CertificateRepository,
	keyGen pkiService.KeyGenerator,
	signer pkiService.CertificateSigner,
	audit auditUsecase.Recorder,
	logger *slog.Logger,
) PKIUseCase {
	return &pkiUseCase{
		config:    config,
		keyHolder: keyHolder,
		certRepo:  certRepo,
		keyGen:    keyGen,
		signer:    signer,
		audit:     audit,
		logger:    logger,
		now:       time.Now,
	}
}

// issuer is a loaded, usable CA.
type issuer struct {
	record *pkiDomain.Certificate
	cert   *x509.Certificate
	key    crypto.Signer
}

func (p *pkiUseCase) GenerateRootCA(
	ctx context.Context,
	req *pkiDomain.RootCARequest,
) (issued *pkiDomain.IssuedCertificate, err error) {
	id := uuid.Must(uuid.NewV7())
	defer func() { p.record(ctx, auditDomain.EventRootCAGenerate, id, err) }()

	req.Options.Normalize(p.config.DefaultRootValidityDays)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key, keyDER, encryptedKey, err := p.newCAKey(ctx, id, req.Options)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(keyDER)

	notBefore, notAfter := pkiDomain.ValidityWindow(p.now(), req.Options.ValidityDays)
	tmpl := &pkiService.Template{
		Subject:   pkiService.CASubject(req.CommonName, req.Organization, req.Options),
		PublicKey: key.Public(),
		NotBefore: notBefore,
		NotAfter:  notAfter,
		IsCA:      true,
	}

	cert, err := p.store(ctx,
		func() (*x509.Certificate, error) { return p.signer.SelfSign(tmpl, key) },
		func(parsed *x509.Certificate) *pkiDomain.Certificate {
			record := p.newRecord(id, parsed, pkiDomain.CertTypeRootCA, nil)
			record.PrivateKeyEncrypted = &encryptedKey
			return record
		},
	)
	if err != nil {
		return nil, err
	}

	p.logger.Info("root CA generated",
		slog.String("certificate_id", cert.ID.String()),
		slog.String("serial_number", cert.SerialNumber),
		slog.String("fingerprint", cert.Fingerprint),
	)

	return &pkiDomain.IssuedCertificate{
		Certificate:   cert,
		PrivateKeyPEM: pkiService.EncodePrivateKeyPEM(keyDER),
	}, nil
}

func (p *pkiUseCase) GenerateIntermediateCA(
	ctx context.Context,
	req *pkiDomain.IntermediateCARequest,
) (cert *pkiDomain.Certificate, err error) {
	id := uuid.Must(uuid.NewV7())
	defer func() { p.record(ctx, auditDomain.EventIntermediateCAGenerate, id, err) }()

	req.Options.Normalize(p.config.DefaultIntermediateValidityDays)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	parent, err := p.loadIssuer(ctx, req.ParentCAID, req.Options.ValidityDays)
	if err != nil {
		return nil, err
	}

	key, keyDER, encryptedKey, err := p.newCAKey(ctx, id, req.Options)
	if err != nil {
		return nil, err
	}
	cryptoDomain.Zero(keyDER)

	notBefore, notAfter := pkiDomain.ValidityWindow(p.now(), req.Options.ValidityDays)
	tmpl := &pkiService.Template{
		Subject:   pkiService.CASubject(req.CommonName, req.Organization, req.Options),
		PublicKey: key.Public(),
		NotBefore: notBefore,
		NotAfter:  notAfter,
		IsCA:      true,
	}

	cert, err = p.store(ctx,
		func() (*x509.Certificate, error) {
			return p.signer.Sign(tmpl, &pkiService.Issuer{Certificate: parent.cert, Signer: parent.key})
		},
		func(parsed *x509.Certificate) *pkiDomain.Certificate {
			record := p.newRecord(id, parsed, pkiDomain.CertTypeIntermediateCA, &parent.record.ID)
			record.PrivateKeyEncrypted = &encryptedKey
			return record
		},
	)
	if err != nil {
		return nil, err
	}

	p.logger.Info("intermediate CA generated",
		slog.String("certificate_id", cert.ID.String()),
		slog.String("issuer_id", parent.record.ID.String()),
		slog.String("serial_number", cert.SerialNumber),
	)
	return cert, nil
}

func (p *pkiUseCase) SignCSR(
	ctx context.Context,
	req *pkiDomain.SignCSRRequest,
) (cert *pkiDomain.Certificate, err error) {
	id := uuid.Must(uuid.NewV7())
	defer func() { p.record(ctx, auditDomain.EventCSRSign, id, err) }()

	if req.ValidityDays == 0 {
		req.ValidityDays = p.config.DefaultLeafValidityDays
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ca, err := p.loadIssuer(ctx, req.CAID, req.ValidityDays)
	if err != nil {
		return nil, err
	}

	csr, err := pkiService.ParseCSR(req.CSRPEM)
	if err != nil {
		return nil, err
	}

	caSubject, err := x509der.ParseName(ca.cert.RawSubject)
	if err != nil {
		return nil, fmt.Errorf("%w: decode CA subject: %v", pkiDomain.ErrCrypto, err)
	}

	notBefore, notAfter := pkiDomain.ValidityWindow(p.now(), req.ValidityDays)
	tmpl := &pkiService.Template{
		Subject:   pkiService.LeafSubject(csr.Subject, caSubject),
		PublicKey: csr.PublicKey,
		NotBefore: notBefore,
		NotAfter:  notAfter,
	}

	cert, err = p.store(ctx,
		func() (*x509.Certificate, error) {
			return p.signer.Sign(tmpl, &pkiService.Issuer{Certificate: ca.cert, Signer: ca.key})
		},
		func(parsed *x509.Certificate) *pkiDomain.Certificate {
			record := p.newRecord(id, parsed, req.CertType, &ca.record.ID)
			record.EntityID = optional(req.EntityID)
			record.EntityType = optional(req.EntityType)
			return record
		},
	)
	if err != nil {
		return nil, err
	}

	p.logger.Info("certificate signed",
		slog.String("certificate_id", cert.ID.String()),
		slog.String("issuer_id", ca.record.ID.String()),
		slog.String("cert_type", string(cert.CertType)),
		slog.String("common_name", cert.CommonName),
	)
	return cert, nil
}

func (p *pkiUseCase) GetCAChain(ctx context.Context) (string, error) {
	cas, err := p.certRepo.ListActiveCAs(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, ca := range orderChain(cas) {
		sb.WriteString(ca.CertificatePEM)
		if !strings.HasSuffix(ca.CertificatePEM, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

func (p *pkiUseCase) Revoke(
	ctx context.Context,
	id uuid.UUID,
	reason string,
) (cert *pkiDomain.Certificate, err error) {
	defer func() { p.record(ctx, auditDomain.EventCertificateRevoke, id, err) }()

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkiDomain.ErrInvalidRevocationReason
	}

	cert, err = p.certRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cert.Revoked {
		return nil, pkiDomain.ErrCertificateAlreadyRevoked
	}

	revokedAt := p.now().UTC().Truncate(time.Microsecond)
	if err := p.certRepo.Revoke(ctx, id, revokedAt, reason); err != nil {
		return nil, err
	}

	cert.Revoked = true
	cert.RevokedAt = &revokedAt
	cert.RevocationReason = &reason

	p.logger.Info("certificate revoked",
		slog.String("certificate_id", id.String()),
		slog.String("cert_type", string(cert.CertType)),
		slog.String("reason", reason),
	)
	return cert, nil
}

func (p *pkiUseCase) Get(ctx context.Context, id uuid.UUID) (*pkiDomain.Certificate, error) {
	return p.certRepo.Get(ctx, id)
}

func (p *pkiUseCase) List(ctx context.Context, filter pkiDomain.CertificateFilter) ([]*pkiDomain.Certificate, error) {
	if filter.CertType != nil {
		if err := filter.CertType.Validate(); err != nil {
			return nil, err
		}
	}
	return p.certRepo.List(ctx, filter)
}

// newCAKey generates a CA key pair and seals its PKCS#8 encoding. The caller owns keyDER.
func (p *pkiUseCase) newCAKey(
	ctx context.Context,
	id uuid.UUID,
	opts pkiDomain.KeyOptions,
) (key crypto.Signer, keyDER []byte, encrypted string, err error) {
	// Refuse a sealed vault before generating key material.
	if err = p.keyHolder.WithMasterKey(ctx, sealService.PurposeCAPrivateKeys, func(sealUsecase.Sealer) error {
		return nil
	}); err != nil {
		return nil, nil, "", err
	}

	key, err = p.keyGen.Generate(ctx, opts.KeyType, opts.KeySize)
	if err != nil {
		return nil, nil, "", err
	}

	keyDER, err = pkiService.MarshalPrivateKey(key)
	if err != nil {
		return nil, nil, "", err
	}

	err = p.keyHolder.WithMasterKey(ctx, sealService.PurposeCAPrivateKeys, func(sealer sealUsecase.Sealer) error {
		blob, err := sealer.Seal(keyDER, id[:])
		if err != nil {
			return fmt.Errorf("%w: seal CA private key: %v", pkiDomain.ErrCrypto, err)
		}
		encrypted = blob.String()
		return nil
	})
	if err != nil {
		cryptoDomain.Zero(keyDER)
		return nil, nil, "", err
	}
	return key, keyDER, encrypted, nil
}

// loadIssuer loads a CA able to sign a certificate valid for validityDays and opens its key.
func (p *pkiUseCase) loadIssuer(ctx context.Context, id uuid.UUID, validityDays int) (*issuer, error) {
	record, err := p.certRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.CertType.IsCA() {
		return nil, pkiDomain.ErrNotACA
	}
	if record.Revoked {
		return nil, pkiDomain.ErrCARevoked
	}

	_, notAfter := pkiDomain.ValidityWindow(p.now(), validityDays)
	if notAfter.After(record.ValidUntil) {
		return nil, pkiDomain.ErrValidityExceedsIssuer
	}

	key, err := p.openCAKey(ctx, record)
	if err != nil {
		return nil, err
	}

	cert, err := pkiService.DecodeCertificatePEM(record.CertificatePEM)
	if err != nil {
		return nil, err
	}
	return &issuer{record: record, cert: cert, key: key}, nil
}

func (p *pkiUseCase) openCAKey(ctx context.Context, record *pkiDomain.Certificate) (crypto.Signer, error) {
	if record.PrivateKeyEncrypted == nil {
		return nil, fmt.Errorf("%w: CA %s has no stored private key", pkiDomain.ErrCrypto, record.ID)
	}
	blob, err := cryptoDomain.ParseSealedBlob(*record.PrivateKeyEncrypted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkiDomain.ErrCrypto, err)
	}

	var key crypto.Signer
	err = p.keyHolder.WithMasterKey(ctx, sealService.PurposeCAPrivateKeys, func(sealer sealUsecase.Sealer) error {
		keyDER, err := sealer.Open(blob, record.ID[:])
		if err != nil {
			return fmt.Errorf("%w: open CA private key: %v", pkiDomain.ErrCrypto, err)
		}
		defer cryptoDomain.Zero(keyDER)

		key, err = pkiService.ParsePrivateKey(keyDER)
		return err
	})
	return key, err
}

// store signs and inserts a certificate, signing again with a fresh serial number
// when the repository reports a collision.
func (p *pkiUseCase) store(
	ctx context.Context,
	sign func() (*x509.Certificate, error),
	newRecord func(*x509.Certificate) *pkiDomain.Certificate,
) (*pkiDomain.Certificate, error) {
	for attempt := 1; ; attempt++ {
		parsed, err := sign()
		if err != nil {
			return nil, err
		}

		record := newRecord(parsed)
		err = p.certRepo.Create(ctx, record)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, pkiDomain.ErrSerialCollision) || attempt >= maxSerialAttempts {
			return nil, err
		}

		p.logger.Warn("certificate serial number collision, signing again",
			slog.String("serial_number", record.SerialNumber),
			slog.Int("attempt", attempt),
		)
	}
}

func (p *pkiUseCase) newRecord(
	id uuid.UUID,
	parsed *x509.Certificate,
	certType pkiDomain.CertType,
	issuerID *uuid.UUID,
) *pkiDomain.Certificate {
	var organization string
	if len(parsed.Subject.Organization) > 0 {
		organization = parsed.Subject.Organization[0]
	}

	return &pkiDomain.Certificate{
		ID:             id,
		SerialNumber:   hex.EncodeToString(parsed.SerialNumber.Bytes()),
		Fingerprint:    pkiDomain.Fingerprint(parsed.Raw),
		CertificatePEM: pkiService.EncodeCertificatePEM(parsed.Raw),
		Subject:        parsed.Subject.String(),
		Issuer:         parsed.Issuer.String(),
		CommonName:     parsed.Subject.CommonName,
		Organization:   organization,
		ValidFrom:      parsed.NotBefore,
		ValidUntil:     parsed.NotAfter,
		CertType:       certType,
		KeyUsage:       pkiService.KeyUsageNames(certType.IsCA()),
		IssuerID:       issuerID,
		CreatedAt:      p.now().UTC(),
	}
}

func (p *pkiUseCase) record(ctx context.Context, eventType string, id uuid.UUID, err error) {
	if errors.Is(err, pkiDomain.ErrCrypto) {
		p.logger.Error("certificate operation failed",
			slog.String("event_type", eventType),
			slog.String("certificate_id", id.String()),
			slog.Any("error", err),
		)
	}
	p.audit.Record(ctx, auditDomain.NewEvent(eventType, auditDomain.ActorFromContext(ctx), "certificate:"+id.String(), err))
}

// orderChain returns roots first followed by their descendants level by level.
// CAs whose issuer is not in cas are appended last in their original order.
func orderChain(cas []*pkiDomain.Certificate) []*pkiDomain.Certificate {
	children := make(map[uuid.UUID][]*pkiDomain.Certificate)
	var queue []*pkiDomain.Certificate
	for _, ca := range cas {
		if ca.IssuerID == nil {
			queue = append(queue, ca)
			continue
		}
		children[*ca.IssuerID] = append(children[*ca.IssuerID], ca)
	}

	ordered := make([]*pkiDomain.Certificate, 0, len(cas))
	seen := make(map[uuid.UUID]bool, len(cas))
	for len(queue) > 0 {
		ca := queue[0]
		queue = queue[1:]
		if seen[ca.ID] {
			continue
		}
		seen[ca.ID] = true
		ordered = append(ordered, ca)
		queue = append(queue, children[ca.ID]...)
	}

	for _, ca := range cas {
		if !seen[ca.ID] {
			ordered = append(ordered, ca)
		}
	}
	return ordered
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
