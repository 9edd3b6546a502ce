package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kosarica/catalog-import/config"
	"github.com/kosarica/catalog-import/internal/database"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbURL := config.GetDatabaseURL()
		if dbURL == "" {
			return fmt.Errorf("DATABASE_URL not set")
		}
		return database.Migrate(dbURL, logger)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back applied migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbURL := config.GetDatabaseURL()
		if dbURL == "" {
			return fmt.Errorf("DATABASE_URL not set")
		}
		if err := database.Rollback(dbURL, migrateSteps); err != nil {
			return err
		}
		logger.Info().Int("steps", migrateSteps).Msg("Rolled back migrations")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)

	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "Number of migrations to roll back")
}
