package main

import (
	"errors"
	"log/slog"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		RunE:  runMigration,
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "roll back the latest migration instead")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	if loadedConfig.App.Store != config.StorePostgres {
		return errors.New("migrate requires APP_STORE=postgres")
	}

	db, err := database.NewPostgreSQLDB(loadedConfig.DatabaseURL())
	if err != nil {
		return err
	}
	defer db.Close()

	if migrateRollback {
		if err := postgresql.Rollback(cmd.Context(), db); err != nil {
			return err
		}
		slog.Info("rolled back latest migration")
		return nil
	}

	if err := postgresql.Migrate(cmd.Context(), db); err != nil {
		return err
	}
	slog.Info("migrations applied")
	return nil
}
