package sync

import (
	"go.temporal.io/sdk/workflow"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/durable/temporal/sequences"
)

const (
	// TenantSyncWorkflowName is the public identifier for registering the workflow.
	TenantSyncWorkflowName = "sync.workflows.TenantSync"
	// TenantSyncTaskQueue is the queue consumed by the worker processing sync workflows.
	TenantSyncTaskQueue = "TENANT_SYNC"
)

// TenantSyncWorkflowInput captures the payload required to import a tenant.
type TenantSyncWorkflowInput struct {
	TenantID string
	TraceID  string
}

// TenantSyncWorkflow orchestrates the activities of one tenant import.
func TenantSyncWorkflow(ctx workflow.Context, input TenantSyncWorkflowInput) (*domain.Result, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("TenantSyncWorkflow started", withTraceID(input.TraceID, "tenantId", input.TenantID)...)
	result, err := sequences.RunTenantSyncSequence(ctx, input.TenantID)
	if err != nil {
		logger.Error("TenantSyncWorkflow failed", withTraceID(input.TraceID, "tenantId", input.TenantID, "error", err)...)
		return nil, err
	}
	logger.Info("TenantSyncWorkflow completed", withTraceID(input.TraceID, "tenantId", input.TenantID, "clean", result.Clean())...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
