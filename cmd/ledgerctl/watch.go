package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bsead/budget-pro/internal/ledger"
	"github.com/bsead/budget-pro/internal/services"
)

var watchCmd = &cobra.Command{
	Use:   "watch <project-id>",
	Short: "Follow a project's balance as expenses change",
	Long:  "Open a live reconciliation session and print every recomputed balance until interrupted or the project is deleted.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	store, logger, closeStore, err := openStore(openCtx)
	if err != nil {
		return err
	}
	defer closeStore()

	session, err := services.NewBalanceService(store, logger).OpenSession(openCtx, args[0])
	if err != nil {
		return err
	}
	defer session.Close()

	out := cmd.OutOrStdout()
	closed := make(chan struct{})
	session.OnSnapshotChanged(func(u ledger.SessionUpdate) {
		if u.Err != nil {
			fmt.Fprintf(out, "%s: %v\n", u.State, u.Err)
		}
		if u.State == ledger.StateClosed {
			close(closed)
			return
		}
		if u.HasSnapshot && u.Err == nil {
			fmt.Fprint(out, renderBalance(u.Snapshot))
		}
	})

	if snap, ok := session.CurrentSnapshot(); ok {
		fmt.Fprint(out, renderBalance(snap))
	}

	select {
	case <-ctx.Done():
	case <-closed:
	}
	return nil
}
