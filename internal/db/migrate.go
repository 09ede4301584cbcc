package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registra el driver "pgx" para database/sql
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationResult resume lo que hizo Migrate.
type MigrationResult struct {
	From    uint
	To      uint
	Changed bool
}

// Migrate aplica las migraciones embebidas sobre databaseURL.
// targetVersion < 0 migra a la ultima version, 0 revierte todo y > 0 va a esa version.
func Migrate(databaseURL string, targetVersion int) (MigrationResult, error) {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	if err := sqlDB.Ping(); err != nil {
		return MigrationResult{}, fmt.Errorf("ping database: %w", err)
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return MigrationResult{}, fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := newMigrator(driver)
	if err != nil {
		return MigrationResult{}, err
	}
	return apply(m, targetVersion)
}

// apply mueve el esquema a targetVersion y reporta la version antes y despues.
func apply(m *migrate.Migrate, targetVersion int) (MigrationResult, error) {
	from, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return MigrationResult{}, fmt.Errorf("database is dirty at version %d", from)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return MigrationResult{From: from, To: from}, nil
	}
	if err != nil {
		return MigrationResult{}, fmt.Errorf("migrate to %d: %w", targetVersion, err)
	}

	to, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationResult{}, fmt.Errorf("read migration version: %w", err)
	}
	return MigrationResult{From: from, To: to, Changed: true}, nil
}

func newMigrator(driver database.Driver) (*migrate.Migrate, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("access migrations: %w", err)
	}
	source, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "helix", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// MigrationNames lista los archivos de migracion embebidos.
func MigrationNames() ([]string, error) {
	return fs.Glob(migrationsFS, "migrations/*.sql")
}
