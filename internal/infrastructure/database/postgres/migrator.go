package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // file source driver
)

// migrator is the subset of *migrate.Migrate the helpers below use.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Close() (error, error)
}

// newMigrator is swapped out in tests.
var newMigrator = func(sourceURL, dbURL string) (migrator, error) {
	return migrate.New(sourceURL, dbURL)
}

// ─────────────────────────────────────────────────────────────────────────────
// Up
// ─────────────────────────────────────────────────────────────────────────────

// RunMigrations applies every pending migration found at migrationsPath.
// Having nothing to apply is not an error.
func RunMigrations(dbURL, migrationsPath string) error {
	m, err := newMigrator(SourceURL(migrationsPath), dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Down
// ─────────────────────────────────────────────────────────────────────────────

// RollbackMigration reverts the last steps migrations.
func RollbackMigration(dbURL, migrationsPath string, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}

	m, err := newMigrator(SourceURL(migrationsPath), dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("no migrations to roll back")
		}
		return fmt.Errorf("failed to rollback %d step(s): %w", steps, err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Status
// ─────────────────────────────────────────────────────────────────────────────

// MigrationStatus reports the applied version and whether a previous run left
// the schema dirty.  A fresh database reports version 0.
func MigrationStatus(dbURL, migrationsPath string) (version uint, dirty bool, err error) {
	m, err := newMigrator(SourceURL(migrationsPath), dbURL)
	if err != nil {
		return 0, false, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	version, dirty, err = m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

//Personal.AI order the ending
