package ports

import (
	"context"
	"errors"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
)

// MappingStore persists the external-id to internal-id table. Lookups
// return domain.ErrUnmapped when absent and domain.ErrConflictingMapping
// when historical duplication left more than one row for the key.
type MappingStore interface {
	Get(ctx context.Context, tenantID, externalID string, kind domain.EntityKind) (*domain.EntityMapping, error)
	// Put records a new mapping. Re-recording the same internal id is a
	// no-op; pointing an existing mapping at a different internal id fails
	// with domain.ErrMappingExists.
	Put(ctx context.Context, mapping domain.EntityMapping) error
	// Remap explicitly repoints a mapping, e.g. after the internal entity
	// was recreated.
	Remap(ctx context.Context, mapping domain.EntityMapping) error
}

// ErrNoCheckpoint signals no resume state exists for the tenant and kind.
var ErrNoCheckpoint = errors.New("no sync checkpoint")

// CheckpointStore persists batch progress. Writes must be atomic so a crash
// mid-write cannot corrupt the previous valid checkpoint.
type CheckpointStore interface {
	Get(ctx context.Context, tenantID string, kind domain.EntityKind) (*domain.Checkpoint, error)
	Put(ctx context.Context, checkpoint domain.Checkpoint) error
	Clear(ctx context.Context, tenantID string, kind domain.EntityKind) error
}

// TenantDirectory exposes the tenant accounts the engine can sync.
type TenantDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	ListEnabled(ctx context.Context) ([]domain.Tenant, error)
}

// ErrTenantNotFound signals an unknown tenant identifier.
var ErrTenantNotFound = errors.New("tenant not found")
