package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bsead/budget-pro/internal/config"
	"github.com/bsead/budget-pro/internal/database"
)

var flagCreateDatabase bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the ledger schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&flagCreateDatabase, "create-database", false, "Create DB_DATABASE first using DB_ADMIN_USER")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Store != config.StorePostgres {
		return fmt.Errorf("migrate needs LEDGER_STORE=%s, got %s", config.StorePostgres, cfg.Store)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	if flagCreateDatabase {
		if err := database.EnsureDatabaseExists(ctx, cfg); err != nil {
			return err
		}
	}

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date on %s\n", cfg.DBName)
	return nil
}
