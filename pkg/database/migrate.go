package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/vadimbarashkov/bookmarks/migrations"
)

// RunMigrations applies every pending up migration for driver to the
// database at dsn.
func RunMigrations(driver, dsn string) error {
	const op = "database.RunMigrations"

	m, err := newMigrate(driver, dsn)
	if err != nil {
		return fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return nil
}

// RollbackMigrations applies every down migration for driver to the
// database at dsn.
func RollbackMigrations(driver, dsn string) error {
	const op = "database.RollbackMigrations"

	m, err := newMigrate(driver, dsn)
	if err != nil {
		return fmt.Errorf("%s: failed to initialize migrations: %w", op, err)
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: failed to rollback migrations: %w", op, err)
	}

	return nil
}

// newMigrate opens a dedicated connection for the migration run. Closing the
// returned instance closes that connection as well.
func newMigrate(driver, dsn string) (*migrate.Migrate, error) {
	name, err := SQLDriverName(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, err
	}

	var dbDriver database.Driver

	switch driver {
	case DriverPostgres:
		dbDriver, err = postgres.WithInstance(db, &postgres.Config{})
	case DriverSQLite:
		dbDriver, err = sqlite.WithInstance(db, &sqlite.Config{})
	}
	if err != nil {
		db.Close()
		return nil, err
	}

	src, err := iofs.New(migrations.FS, driver)
	if err != nil {
		dbDriver.Close()
		return nil, err
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		src.Close()
		dbDriver.Close()
		return nil, err
	}

	return m, nil
}
