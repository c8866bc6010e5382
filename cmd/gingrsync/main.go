package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tailtown/gingrsync/internal/app/ops"
	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	platformobservability "github.com/tailtown/gingrsync/internal/platform/observability"
)

func main() {
	root := &cobra.Command{
		Use:           "gingrsync",
		Short:         "Imports tenant booking data from Gingr into Tailtown",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSyncCommand(), newServeCommand())
	if err := root.Execute(); err != nil {
		log.Fatalf("gingrsync: %v", err)
	}
}

func newSyncCommand() *cobra.Command {
	var (
		tenantID string
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a tenant import and print a per-tenant summary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if all == (tenantID != "") {
				return errors.New("exactly one of --tenant or --all is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSync(ctx, tenantID, all)
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id to sync")
	cmd.Flags().BoolVar(&all, "all", false, "sync every enabled tenant")
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ops HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return ops.Run(ctx)
		},
	}
}

func runSync(ctx context.Context, tenantID string, all bool) error {
	cfg, err := ops.LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, "gingrsync-cli")
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()

	stack, cleanup, err := ops.BuildSyncStack(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()

	var results []domain.Result
	if all {
		results, err = stack.Service.SyncAllEnabled(ctx)
	} else {
		var result domain.Result
		result, err = stack.Service.SyncTenant(ctx, tenantID)
		results = append(results, result)
	}
	for _, result := range results {
		printSummary(result)
	}
	if err != nil {
		return err
	}
	for _, result := range results {
		if result.Failed {
			return fmt.Errorf("sync failed for tenant %s: %s", result.TenantID, result.FailureReason)
		}
	}
	return nil
}

func printSummary(result domain.Result) {
	name := result.TenantName
	if name == "" {
		name = result.TenantID
	}
	fmt.Printf("tenant %s:\n", name)
	for _, stage := range []struct {
		label string
		stats domain.Stats
	}{
		{"customers", result.Customers},
		{"pets", result.Pets},
		{"reservations", result.Reservations},
	} {
		fmt.Printf("  %-13s created=%d updated=%d unchanged=%d skipped=%d errored=%d\n",
			stage.label, stage.stats.Created, stage.stats.Updated, stage.stats.Unchanged,
			stage.stats.Skipped, stage.stats.Errored)
		for _, msg := range stage.stats.Errors {
			fmt.Printf("    error: %s\n", msg)
		}
	}
	if result.Failed {
		fmt.Printf("  FAILED: %s\n", result.FailureReason)
	}
}
