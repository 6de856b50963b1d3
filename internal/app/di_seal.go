package app

import (
	"fmt"

	cryptoDomain "github.com/allisson/trustcore/internal/crypto/domain"
	sealHTTP "github.com/allisson/trustcore/internal/seal/http"
	sealRepository "github.com/allisson/trustcore/internal/seal/repository"
	sealService "github.com/allisson/trustcore/internal/seal/service"
	sealUseCase "github.com/allisson/trustcore/internal/seal/usecase"
)

// SealConfigRepository returns the seal configuration repository based on the database driver.
func (c *Container) SealConfigRepository() (sealUseCase.SealConfigRepository, error) {
	var err error
	c.sealConfigRepositoryInit.Do(func() {
		c.sealConfigRepository, err = c.initSealConfigRepository()
		if err != nil {
			c.initErrors["sealConfigRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sealConfigRepository"]; exists {
		return nil, storedErr
	}
	return c.sealConfigRepository, nil
}

// AutoUnsealConfigRepository returns the auto-unseal configuration repository based on the database driver.
func (c *Container) AutoUnsealConfigRepository() (sealUseCase.AutoUnsealConfigRepository, error) {
	var err error
	c.autoUnsealConfigRepositoryInit.Do(func() {
		c.autoUnsealConfigRepository, err = c.initAutoUnsealConfigRepository()
		if err != nil {
			c.initErrors["autoUnsealConfigRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["autoUnsealConfigRepository"]; exists {
		return nil, storedErr
	}
	return c.autoUnsealConfigRepository, nil
}

// KeyVerifier returns the Argon2id master key verifier.
func (c *Container) KeyVerifier() sealService.KeyVerifier {
	c.keyVerifierInit.Do(func() {
		c.keyVerifier = sealService.NewKeyVerifier()
	})
	return c.keyVerifier
}

// ProviderFactory returns the KMS provider factory used by auto-unseal.
func (c *Container) ProviderFactory() sealService.ProviderFactory {
	c.providerFactoryInit.Do(func() {
		c.providerFactory = sealService.NewProviderFactory(c.KMSService())
	})
	return c.providerFactory
}

// SealUseCase returns the seal state machine, decorated with business metrics.
// The returned instance is shared by every consumer of the master key.
func (c *Container) SealUseCase() (sealUseCase.SealUseCase, error) {
	var err error
	c.sealUseCaseInit.Do(func() {
		c.sealUseCase, err = c.initSealUseCase()
		if err != nil {
			c.initErrors["sealUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["sealUseCase"]; exists {
		return nil, storedErr
	}
	return c.sealUseCase, nil
}

func (c *Container) initSealConfigRepository() (sealUseCase.SealConfigRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for seal config repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return sealRepository.NewPostgreSQLSealConfigRepository(db), nil
	case "mysql":
		return sealRepository.NewMySQLSealConfigRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAutoUnsealConfigRepository() (sealUseCase.AutoUnsealConfigRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for auto-unseal config repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return sealRepository.NewPostgreSQLAutoUnsealConfigRepository(db), nil
	case "mysql":
		return sealRepository.NewMySQLAutoUnsealConfigRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initSealUseCase() (sealUseCase.SealUseCase, error) {
	algorithm, err := cryptoDomain.ParseAlgorithm(c.config.CAKeyAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid CA_KEY_ALGORITHM %q: %w", c.config.CAKeyAlgorithm, err)
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for seal use case: %w", err)
	}

	sealConfigRepo, err := c.SealConfigRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get seal config repository for seal use case: %w", err)
	}

	autoUnsealRepo, err := c.AutoUnsealConfigRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get auto-unseal config repository for seal use case: %w", err)
	}

	audit, err := c.AuditUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit use case for seal use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for seal use case: %w", err)
	}

	useCase := sealUseCase.NewSealUseCase(
		sealUseCase.Config{Algorithm: algorithm},
		txManager,
		sealConfigRepo,
		autoUnsealRepo,
		c.KeyVerifier(),
		c.ProviderFactory(),
		c.AEADManager(),
		audit,
		c.Logger(),
	)

	return sealUseCase.NewSealUseCaseWithMetrics(useCase, businessMetrics), nil
}

func (c *Container) sealHandler(useCase sealUseCase.SealUseCase) *sealHTTP.SealHandler {
	return sealHTTP.NewSealHandler(useCase, c.Logger())
}
