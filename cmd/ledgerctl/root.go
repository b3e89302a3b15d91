package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bsead/budget-pro/internal/config"
	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/server"
)

var flagLogLevel string

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Research budget ledger operator tool",
	Long:          "Apply database migrations, inspect project balances and mint development tokens.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, nil
}

// openStore is the shared store path of the balance commands.
func openStore(ctx context.Context) (ledger.Store, *slog.Logger, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := server.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	store, closeStore, err := server.NewStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return store, logger, closeStore, nil
}
