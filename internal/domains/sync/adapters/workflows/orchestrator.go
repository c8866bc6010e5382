package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/ports"
	syncworkflows "github.com/tailtown/gingrsync/internal/durable/temporal/workflows/sync"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalSyncWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineSyncWorkflows)(nil)
)

// TemporalSyncWorkflows starts tenant sync workflows on a Temporal cluster.
type TemporalSyncWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalSyncWorkflows wires a Temporal client into the orchestrator.
func NewTemporalSyncWorkflows(c client.Client) *TemporalSyncWorkflows {
	return &TemporalSyncWorkflows{client: c, taskQueue: syncworkflows.TenantSyncTaskQueue}
}

// RunTenantSync starts the durable tenant import. The workflow id is derived
// from the tenant so concurrent requests for the same tenant attach to the
// running import instead of racing it.
func (o *TemporalSyncWorkflows) RunTenantSync(ctx context.Context, tenantID string) (domain.Result, error) {
	if o == nil || o.client == nil {
		return domain.Result{}, errors.New("temporal sync workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("tenant-sync-%s", tenantID),
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		syncworkflows.TenantSyncWorkflow,
		syncworkflows.TenantSyncWorkflowInput{TenantID: tenantID, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			existingRun := o.client.GetWorkflow(ctx, fmt.Sprintf("tenant-sync-%s", tenantID), alreadyStarted.RunId)
			var result domain.Result
			if err := existingRun.Get(ctx, &result); err != nil {
				return domain.Result{}, err
			}
			return result, nil
		}
		return domain.Result{}, err
	}
	var result domain.Result
	if err := run.Get(ctx, &result); err != nil {
		return domain.Result{}, err
	}
	return result, nil
}

// InlineSyncWorkflows executes the service directly without Temporal, useful
// for the CLI path and dev fallbacks.
type InlineSyncWorkflows struct {
	service ports.Service
}

// NewInlineSyncWorkflows wraps the sync service for synchronous execution.
func NewInlineSyncWorkflows(service ports.Service) *InlineSyncWorkflows {
	return &InlineSyncWorkflows{service: service}
}

// RunTenantSync delegates to the application service without durable orchestration.
func (o *InlineSyncWorkflows) RunTenantSync(ctx context.Context, tenantID string) (domain.Result, error) {
	if o == nil || o.service == nil {
		return domain.Result{}, errors.New("inline sync workflows not configured")
	}
	return o.service.SyncTenant(ctx, tenantID)
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
