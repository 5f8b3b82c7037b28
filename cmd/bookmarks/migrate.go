package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/bookmarks/internal/config"
	"github.com/vadimbarashkov/bookmarks/pkg/database"
)

func newMigrateCmd(load func() (*config.Config, error)) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	migrateCmd.AddCommand(
		newMigrationCmd(load, "up", "Apply all pending migrations", database.RunMigrations),
		newMigrationCmd(load, "down", "Roll back all migrations", database.RollbackMigrations),
	)

	return migrateCmd
}

func newMigrationCmd(
	load func() (*config.Config, error),
	use, short string,
	migrate func(driver, dsn string) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			switch cfg.Storage.Driver {
			case config.DriverPostgres, config.DriverSQLite:
			default:
				return fmt.Errorf("storage driver %q has no migrations", cfg.Storage.Driver)
			}

			if err := migrate(cfg.Storage.Driver, cfg.DatabaseDSN()); err != nil {
				return err
			}

			cmd.Printf("migrate %s complete\n", use)
			return nil
		},
	}
}
