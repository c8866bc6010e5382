package ports

import (
	"context"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
)

// Service is the sync engine's entry point. SyncTenant is re-runnable and
// side-effect safe: a second run over the same external data reports every
// record unchanged.
type Service interface {
	SyncTenant(ctx context.Context, tenantID string) (domain.Result, error)
	SyncAllEnabled(ctx context.Context) ([]domain.Result, error)
}
