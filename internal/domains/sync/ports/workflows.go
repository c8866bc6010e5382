package ports

import (
	"context"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
)

// WorkflowOrchestrator exposes the durable execution path for tenant syncs.
type WorkflowOrchestrator interface {
	RunTenantSync(ctx context.Context, tenantID string) (domain.Result, error)
}
