package app

import (
	"fmt"

	auditHTTP "github.com/allisson/trustcore/internal/audit/http"
	auditRepository "github.com/allisson/trustcore/internal/audit/repository"
	auditUseCase "github.com/allisson/trustcore/internal/audit/usecase"
)

// AuditRepository returns the audit event repository based on the database driver.
func (c *Container) AuditRepository() (auditUseCase.EventRepository, error) {
	var err error
	c.auditRepositoryInit.Do(func() {
		c.auditRepository, err = c.initAuditRepository()
		if err != nil {
			c.initErrors["auditRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditRepository"]; exists {
		return nil, storedErr
	}
	return c.auditRepository, nil
}

// AuditUseCase returns the asynchronous audit sink. It is closed by Shutdown.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	var err error
	c.auditUseCaseInit.Do(func() {
		c.auditUseCase, err = c.initAuditUseCase()
		if err != nil {
			c.initErrors["auditUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["auditUseCase"]; exists {
		return nil, storedErr
	}
	return c.auditUseCase, nil
}

func (c *Container) initAuditRepository() (auditUseCase.EventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for audit repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLEventRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuditUseCase() (auditUseCase.AuditUseCase, error) {
	repo, err := c.AuditRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get audit repository for audit use case: %w", err)
	}

	return auditUseCase.NewAuditUseCase(repo, c.config.AuditBufferSize, c.Logger()), nil
}

func (c *Container) auditHandler(useCase auditUseCase.AuditUseCase) *auditHTTP.AuditEventHandler {
	return auditHTTP.NewAuditEventHandler(useCase, c.Logger())
}
