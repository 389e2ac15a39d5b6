package main

import (
	"context"
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/iliyamo/cidade-aberta/internal/database"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}
	cmd.AddCommand(
		migrateStep("up", "Apply all pending migrations", database.MigrateUp),
		migrateStep("down", "Roll back the latest migration", database.MigrateDown),
		migrateStep("status", "Show migration status", database.MigrateStatus),
	)
	return cmd
}

func migrateStep(use, short string, fn func(context.Context, *sql.DB) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(false)
			if err != nil {
				return err
			}
			defer a.close()
			if err := fn(cmd.Context(), a.db); err != nil {
				return err
			}
			v, err := database.Version(cmd.Context(), a.db)
			if err != nil {
				return err
			}
			a.log.WithField("version", v).Info("migrate %s done", use)
			return nil
		},
	}
}
