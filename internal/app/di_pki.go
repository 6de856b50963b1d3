package app

import (
	"fmt"

	pkiHTTP "github.com/allisson/trustcore/internal/pki/http"
	pkiRepository "github.com/allisson/trustcore/internal/pki/repository"
	pkiService "github.com/allisson/trustcore/internal/pki/service"
	pkiUseCase "github.com/allisson/trustcore/internal/pki/usecase"
)

// CertificateRepository returns the certificate repository based on the database driver.
func (c *Container) CertificateRepository() (pkiUseCase.CertificateRepository, error) {
	var err error
	c.certificateRepositoryInit.Do(func() {
		c.certificateRepository, err = c.initCertificateRepository()
		if err != nil {
			c.initErrors["certificateRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["certificateRepository"]; exists {
		return nil, storedErr
	}
	return c.certificateRepository, nil
}

// KeyGenerator returns the asymmetric key generator, bounded by PKI_MAX_CONCURRENT_KEYGEN.
func (c *Container) KeyGenerator() pkiService.KeyGenerator {
	c.keyGeneratorInit.Do(func() {
		c.keyGenerator = pkiService.NewKeyGenerator(c.config.PKIMaxConcurrentKeygen)
	})
	return c.keyGenerator
}

// CertificateSigner returns the X.509 certificate signer.
func (c *Container) CertificateSigner() pkiService.CertificateSigner {
	c.certificateSignerInit.Do(func() {
		c.certificateSigner = pkiService.NewCertificateSigner()
	})
	return c.certificateSigner
}

// PKIUseCase returns the certificate authority engine, decorated with business metrics.
func (c *Container) PKIUseCase() (pkiUseCase.PKIUseCase, error) {
	var err error
	c.pkiUseCaseInit.Do(func() {
		c.pkiUseCase, err = c.initPKIUseCase()
		if err != nil {
			c.initErrors["pkiUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pkiUseCase"]; exists {
		return nil, storedErr
	}
	return c.pkiUseCase, nil
}

func (c *Container) initCertificateRepository() (pkiUseCase.CertificateRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for certificate repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return pkiRepository.NewPostgreSQLCertificateRepository(db), nil
	case "mysql":
		return pkiRepository.NewMySQLCertificateRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initPKIUseCase() (pkiUseCase.PKIUseCase, error) {
	sealUC, err := c.SealUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get seal use case for pki use case: %w", err)
	}

	certRepo, err := c.CertificateRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate repository for pki use case: %w", err)
	}

	audit, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for pki use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for pki use case: %w", err)
	}

	useCase := pkiUseCase.NewPKIUseCase(
		pkiUseCase.Config{
			DefaultRootValidityDays:         c.config.PKIDefaultRootValidityDays,
			DefaultIntermediateValidityDays: c.config.PKIDefaultIntermediateValidityDays,
			DefaultLeafValidityDays:         c.config.PKIDefaultLeafValidityDays,
		},
		sealUC,
		certRepo,
		c.KeyGenerator(),
		c.CertificateSigner(),
		audit,
		c.Logger(),
	)

	return pkiUseCase.NewPKIUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) pkiHandler(useCase pkiUseCase.PKIUseCase) *pkiHTTP.PKIHandler {
	return pkiHTTP.NewPKIHandler(useCase, c.Logger())
}
