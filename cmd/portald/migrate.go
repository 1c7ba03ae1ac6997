package main

import (
	"fmt"

	"github.com/shirkaty/portal/internal/config"
	"github.com/shirkaty/portal/internal/store/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// New runs any pending migrations on connect.
		store, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Println("migrations applied")
		return nil
	},
}
