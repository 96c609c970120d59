package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"content-backend/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers pgx5://
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending up-migration embedded in the binary.
func Migrate(cfg *DBConfig) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(cfg))
	if err != nil {
		return fmt.Errorf("failed to init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	logger.Info("[DATABASE] Migrations applied", map[string]interface{}{
		"version": version,
		"dirty":   dirty,
	})
	return nil
}

// golang-migrate's pgx/v5 driver answers to the pgx5 scheme
func migrateURL(cfg *DBConfig) string {
	return "pgx5" + strings.TrimPrefix(cfg.ConnectionString(), "postgresql")
}
