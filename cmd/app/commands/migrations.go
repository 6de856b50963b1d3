package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var migrationSources = map[string]string{
	"postgres": "file://migrations/postgresql",
	"mysql":    "file://migrations/mysql",
}

// migrationTarget returns the source URL and the golang-migrate database URL
// for a driver. go-sql-driver DSNs carry no scheme, so one is added for mysql.
func migrationTarget(dbDriver, dbConnectionString string) (string, string, error) {
	source, ok := migrationSources[dbDriver]
	if !ok {
		return "", "", fmt.Errorf("unsupported database driver: %s", dbDriver)
	}
	if dbDriver == "mysql" && !strings.HasPrefix(dbConnectionString, "mysql://") {
		dbConnectionString = "mysql://" + dbConnectionString
	}
	return source, dbConnectionString, nil
}

// RunMigrations applies every pending migration when steps is 0. A positive
// steps applies that many up migrations and a negative one rolls back that many.
func RunMigrations(logger *slog.Logger, dbDriver, dbConnectionString string, steps int) error {
	source, databaseURL, err := migrationTarget(dbDriver, dbConnectionString)
	if err != nil {
		return err
	}

	logger.Info("running database migrations",
		slog.String("driver", dbDriver),
		slog.Int("steps", steps),
	)

	m, err := migrate.New(source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("migrations completed, schema is empty")
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	default:
		logger.Info("migrations completed",
			slog.Uint64("version", uint64(version)),
			slog.Bool("dirty", dirty),
		)
	}
	return nil
}
