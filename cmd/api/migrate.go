package main

import (
	"github.com/spf13/cobra"

	"task-tracker/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := database.InitDB(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		return database.Migrate(cmd.Context(), db, cfg.Database.Driver)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
