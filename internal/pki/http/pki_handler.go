// Package http provides the /v1/pki HTTP handlers of the certificate authority.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/trustcore/internal/httputil"
	pkiDomain "github.com/allisson/trustcore/internal/pki/domain"
	"github.com/allisson/trustcore/internal/pki/http/dto"
	pkiUseCase "github.com/allisson/trustcore/internal/pki/usecase"
	customValidation "github.com/allisson/trustcore/internal/validation"
)

// PKIHandler handles CA generation, CSR signing, listing and revocation.
type PKIHandler struct {
	pkiUseCase pkiUseCase.PKIUseCase
	logger     *slog.Logger
}

// NewPKIHandler creates a new PKI handler.
func NewPKIHandler(pkiUseCase pkiUseCase.PKIUseCase, logger *slog.Logger) *PKIHandler {
	return &PKIHandler{
		pkiUseCase: pkiUseCase,
		logger:     logger,
	}
}

// GenerateRootCAHandler generates a self-signed root CA.
// POST /v1/pki/ca/root/generate
// Returns 201 Created with the certificate and its private key, shown exactly once.
func (h *PKIHandler) GenerateRootCAHandler(c *gin.Context) {
	var req dto.GenerateRootCARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	issued, err := h.pkiUseCase.GenerateRootCA(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssuedCertificateToResponse(issued))
}

// GenerateIntermediateCAHandler generates an intermediate CA signed by parent_ca_id.
// POST /v1/pki/ca/intermediate/generate
func (h *PKIHandler) GenerateIntermediateCAHandler(c *gin.Context) {
	var req dto.GenerateIntermediateCARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	cert, err := h.pkiUseCase.GenerateIntermediateCA(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapCertificateToResponse(cert))
}

// SignCSRHandler issues a leaf certificate for a CSR.
// POST /v1/pki/sign-request
func (h *PKIHandler) SignCSRHandler(c *gin.Context) {
	var req dto.SignCSRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	cert, err := h.pkiUseCase.SignCSR(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapCertificateToResponse(cert))
}

// ListHandler lists certificates.
// GET /v1/pki/certificates?cert_type=&revoked=&issuer_id=&offset=&limit=
func (h *PKIHandler) ListHandler(c *gin.Context) {
	filter, err := parseCertificateFilter(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	certs, err := h.pkiUseCase.List(c.Request.Context(), filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCertificatesToListResponse(certs))
}

// GetHandler returns one certificate.
// GET /v1/pki/certificates/:id
func (h *PKIHandler) GetHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid certificate id: %w", err), h.logger)
		return
	}

	cert, err := h.pkiUseCase.Get(c.Request.Context(), id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCertificateToResponse(cert))
}

// RevokeHandler revokes a certificate.
// POST /v1/pki/certificates/:id/revoke
func (h *PKIHandler) RevokeHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid certificate id: %w", err), h.logger)
		return
	}

	var req dto.RevokeCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	cert, err := h.pkiUseCase.Revoke(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCertificateToResponse(cert))
}

// CAChainHandler returns the PEM bundle of every active CA, roots first.
// GET /v1/pki/ca/chain
func (h *PKIHandler) CAChainHandler(c *gin.Context) {
	bundle, err := h.pkiUseCase.GetCAChain(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusOK, "application/x-pem-file", []byte(bundle))
}

func parseCertificateFilter(c *gin.Context) (pkiDomain.CertificateFilter, error) {
	var filter pkiDomain.CertificateFilter

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		return filter, err
	}
	filter.Offset = offset
	filter.Limit = limit

	if raw := c.Query("cert_type"); raw != "" {
		certType := pkiDomain.CertType(raw)
		if err := certType.Validate(); err != nil {
			return filter, fmt.Errorf("invalid cert_type parameter: %s", raw)
		}
		filter.CertType = &certType
	}

	if filter.Revoked, err = httputil.ParseOptionalBool(c, "revoked"); err != nil {
		return filter, err
	}

	if raw := c.Query("issuer_id"); raw != "" {
		issuerID, err := uuid.Parse(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid issuer_id parameter: must be a UUID")
		}
		filter.IssuerID = &issuerID
	}

	return filter, nil
}
