package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/trustcore/internal/audit/domain"
	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
	pkiDTO "github.com/allisson/trustcore/internal/pki/http/dto"
	pkiUseCase "github.com/allisson/trustcore/internal/pki/usecase"
	sealUseCase "github.com/allisson/trustcore/internal/seal/usecase"
)

// RunGenerateRootCA unseals this process and issues a self-signed root CA. The
// private key PEM is printed once and is otherwise only stored encrypted.
func RunGenerateRootCA(
	ctx context.Context,
	sealUC sealUseCase.SealUseCase,
	pkiUC pkiUseCase.PKIUseCase,
	logger *slog.Logger,
	writer io.Writer,
	unlockOpts UnlockOptions,
	req pkiDTO.GenerateRootCARequest,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	ctx = auditDomain.WithActor(ctx, auditDomain.ActorCLI)
	if err := unlock(ctx, sealUC, unlockOpts); err != nil {
		return err
	}

	issued, err := pkiUC.GenerateRootCA(ctx, req.ToDomain())
	if err != nil {
		return fmt.Errorf("failed to generate root CA: %w", err)
	}

	logger.Info("root CA generated",
		slog.String("certificate_id", issued.Certificate.ID.String()),
		slog.String("serial_number", issued.Certificate.SerialNumber),
	)

	if format == "json" {
		return writeJSON(writer, pkiDTO.MapIssuedCertificateToResponse(issued))
	}

	writeCertificateText(writer, issued.Certificate)
	_, _ = fmt.Fprintf(writer, "\n%s", issued.PrivateKeyPEM)
	return nil
}

// RunGenerateIntermediateCA unseals this process and issues a CA signed by an existing CA.
func RunGenerateIntermediateCA(
	ctx context.Context,
	sealUC sealUseCase.SealUseCase,
	pkiUC pkiUseCase.PKIUseCase,
	logger *slog.Logger,
	writer io.Writer,
	unlockOpts UnlockOptions,
	req pkiDTO.GenerateIntermediateCARequest,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	ctx = auditDomain.WithActor(ctx, auditDomain.ActorCLI)
	if err := unlock(ctx, sealUC, unlockOpts); err != nil {
		return err
	}

	cert, err := pkiUC.GenerateIntermediateCA(ctx, req.ToDomain())
	if err != nil {
		return fmt.Errorf("failed to generate intermediate CA: %w", err)
	}

	logger.Info("intermediate CA generated",
		slog.String("certificate_id", cert.ID.String()),
		slog.String("parent_ca_id", req.ParentCAID),
	)

	return writeCertificate(writer, cert, format)
}

// RunSignCSR unseals this process and issues a client certificate for the CSR read
// from csrPath, or from the reader when csrPath is "-".
func RunSignCSR(
	ctx context.Context,
	sealUC sealUseCase.SealUseCase,
	pkiUC pkiUseCase.PKIUseCase,
	logger *slog.Logger,
	ioTuple IOTuple,
	unlockOpts UnlockOptions,
	csrPath string,
	req pkiDTO.SignCSRRequest,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	csr, err := readInput(ioTuple.Reader, csrPath)
	if err != nil {
		return fmt.Errorf("failed to read CSR: %w", err)
	}
	req.CSR = csr

	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	ctx = auditDomain.WithActor(ctx, auditDomain.ActorCLI)
	if err := unlock(ctx, sealUC, unlockOpts); err != nil {
		return err
	}

	cert, err := pkiUC.SignCSR(ctx, req.ToDomain())
	if err != nil {
		return fmt.Errorf("failed to sign CSR: %w", err)
	}

	logger.Info("certificate issued",
		slog.String("certificate_id", cert.ID.String()),
		slog.String("cert_type", string(cert.CertType)),
		slog.String("ca_id", req.CAID),
	)

	return writeCertificate(ioTuple.Writer, cert, format)
}

// RunRevokeCertificate marks a certificate as revoked. The vault does not need to
// be unsealed.
func RunRevokeCertificate(
	ctx context.Context,
	pkiUC pkiUseCase.PKIUseCase,
	logger *slog.Logger,
	writer io.Writer,
	idStr string,
	reason string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid certificate ID format: %w", err)
	}

	req := pkiDTO.RevokeCertificateRequest{Reason: reason}
	if err := req.Validate(); err != nil {
		return validationError(err)
	}

	ctx = auditDomain.WithActor(ctx, auditDomain.ActorCLI)
	cert, err := pkiUC.Revoke(ctx, id, req.Reason)
	if err != nil {
		return fmt.Errorf("failed to revoke certificate: %w", err)
	}

	logger.Info("certificate revoked", slog.String("certificate_id", cert.ID.String()))

	return writeCertificate(writer, cert, format)
}

// RunCAChain prints the PEM bundle of every non-revoked CA, roots first.
func RunCAChain(ctx context.Context, pkiUC pkiUseCase.PKIUseCase, writer io.Writer) error {
	bundle, err := pkiUC.GetCAChain(ctx)
	if err != nil {
		return fmt.Errorf("failed to get CA chain: %w", err)
	}

	_, err = io.WriteString(writer, bundle)
	return err
}

func writeCertificate(writer io.Writer, cert *pkiDomain.Certificate, format string) error {
	if format == "json" {
		return writeJSON(writer, pkiDTO.MapCertificateToResponse(cert))
	}

	writeCertificateText(writer, cert)
	return nil
}

func writeCertificateText(writer io.Writer, cert *pkiDomain.Certificate) {
	_, _ = fmt.Fprintf(writer, "Certificate ID: %s\n", cert.ID)
	_, _ = fmt.Fprintf(writer, "Type: %s\n", cert.CertType)
	_, _ = fmt.Fprintf(writer, "Subject: %s\n", cert.Subject)
	_, _ = fmt.Fprintf(writer, "Issuer: %s\n", cert.Issuer)
	_, _ = fmt.Fprintf(writer, "Serial Number: %s\n", cert.SerialNumber)
	_, _ = fmt.Fprintf(writer, "Fingerprint: %s\n", cert.Fingerprint)
	_, _ = fmt.Fprintf(writer, "Valid Until: %s\n", cert.ValidUntil.Format("2006-01-02T15:04:05Z07:00"))
	if cert.Revoked {
		_, _ = fmt.Fprintf(writer, "Revoked: true (%s)\n", derefString(cert.RevocationReason))
	}
	_, _ = fmt.Fprintf(writer, "\n%s", cert.CertificatePEM)
}

func readInput(reader io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(reader)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)) + "\n", nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
