package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/tailtown/gingrsync/internal/app/ops"
	syncactivities "github.com/tailtown/gingrsync/internal/durable/temporal/activities/sync"
	syncworkflows "github.com/tailtown/gingrsync/internal/durable/temporal/workflows/sync"
	platformobservability "github.com/tailtown/gingrsync/internal/platform/observability"
)

func main() {
	ctx := context.Background()
	const serviceName = "gingrsync-worker"
	cfg, err := ops.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, cleanup, err := ops.BuildSyncStack(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build sync stack", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()
	activities := syncactivities.NewActivities(stack.Service)

	temporalClient, err := ops.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, syncworkflows.TenantSyncTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(syncworkflows.TenantSyncWorkflow, workflow.RegisterOptions{Name: syncworkflows.TenantSyncWorkflowName})
	w.RegisterActivityWithOptions(activities.SyncTenant, activity.RegisterOptions{Name: syncactivities.SyncTenantActivityName})

	logger.Info("worker listening", slog.String("taskQueue", syncworkflows.TenantSyncTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
