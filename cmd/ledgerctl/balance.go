package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bsead/budget-pro/internal/services"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <project-id>",
	Short: "Print the current balance of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runBalance,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	store, logger, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	balances := services.NewBalanceService(store, logger)
	snap, err := balances.GetBalance(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), renderBalance(snap))
	return nil
}
