package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	syncactivities "github.com/tailtown/gingrsync/internal/durable/temporal/activities/sync"
)

// RunTenantSyncSequence executes the ordered activities of a tenant import.
// The import activity checkpoints internally, so retried attempts resume at
// the last committed batch instead of starting over.
func RunTenantSyncSequence(ctx workflow.Context, tenantID string) (*domain.Result, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("tenant sync sequence started", "tenantId", tenantID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    5 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var result domain.Result
	err := workflow.ExecuteActivity(ctx, syncactivities.SyncTenantActivityName, tenantID).Get(ctx, &result)
	if err != nil {
		logger.Error("tenant sync sequence failed", "tenantId", tenantID, "error", err)
		return nil, err
	}
	logger.Info("tenant sync sequence completed", "tenantId", tenantID, "clean", result.Clean())
	return &result, nil
}
