package sync

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/ports"
)

const (
	// SyncTenantActivityName runs one tenant's full import.
	SyncTenantActivityName = "sync.activities.SyncTenant"
)

// Activities groups activities that operate on the sync bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the sync service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

// SyncTenant imports one tenant. The service checkpoints per batch, so a
// retried activity resumes instead of reprocessing committed work.
func (a *Activities) SyncTenant(ctx context.Context, tenantID string) (domain.Result, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("sync activity not initialized", "tenantId", tenantID)
		return domain.Result{}, errors.New("sync activity not initialized")
	}
	logger.Info("SyncTenant activity started", "tenantId", tenantID)
	result, err := a.service.SyncTenant(ctx, tenantID)
	if err != nil {
		logger.Error("SyncTenant activity failed", "tenantId", tenantID, "error", err)
		return result, err
	}
	totals := result.Totals()
	logger.Info("SyncTenant activity completed",
		"tenantId", tenantID,
		"processed", totals.Processed(),
		"errored", totals.Errored)
	return result, nil
}
