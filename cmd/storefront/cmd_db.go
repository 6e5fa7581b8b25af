package main

import (
	"context"

	"storefront/internal/config"
	"storefront/internal/infra/db"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// bootDB loads config and opens the database connection.
func bootDB() (*config.Config, *gorm.DB, zerolog.Logger, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	log := config.NewLogger(cfg.Logger)

	gdb, err := db.Connect(cfg.Database, log)
	if err != nil {
		return nil, nil, log, err
	}
	return cfg, gdb, log, nil
}

// storefront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, gdb, log, err := bootDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(gdb) }()

		if err := db.Migrate(gdb); err != nil {
			return err
		}
		log.Info().Msg("migrations applied")
		return nil
	},
}

var seedOpts db.SeedOptions

// storefront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog and optionally an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, gdb, log, err := bootDB()
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(gdb) }()

		if err := db.Migrate(gdb); err != nil {
			return err
		}
		return db.Seed(context.Background(), gdb, seedOpts, log)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOpts.AdminEmail, "admin-email", "", "create an ADMIN user with this email")
	seedCmd.Flags().StringVar(&seedOpts.AdminPassword, "admin-password", "", "password for --admin-email")
}
