package postgres

import (
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/orderflow/intake/internal/config"
	"github.com/orderflow/intake/pkg/errors"
)

// RunMigrations applies all pending migrations from cfg.MigrationPath.
// A database already at the latest version is not an error.
func RunMigrations(cfg config.DatabaseConfig) error {
	if cfg.MigrationPath == "" {
		return errors.InvalidParam("migration path must not be empty")
	}

	m, err := migrate.New("file://"+cfg.MigrationPath, DSN(cfg))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "open migration source")
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "apply migrations")
	}
	return nil
}
