package main

import (
	"fmt"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/connection"
	"github.com/GbFerrera/FINANCIAL-LS-sub003/internal/infrastructure/persistence/postgres/migrations"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and print the history",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := connection.NewDatabase(cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := migrations.AutoMigrate(cmd.Context(), db, log.Logger); err != nil {
			return err
		}

		history, err := migrations.GetMigrationHistory(cmd.Context(), db)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, rec := range history {
			fmt.Fprintf(out, "%-28s v%d  %s\n", rec.Name, rec.Version, rec.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}
