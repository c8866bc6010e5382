package application

import (
	"context"
	"fmt"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/ports"
)

// Mapper resolves external record identifiers to internal entity ids.
// Resolving the same external id twice yields the same internal id unless
// an explicit remap happens in between; ambiguous state is surfaced, never
// silently picked from.
type Mapper struct {
	store ports.MappingStore
}

// NewMapper wires the mapper with its persistence dependency.
func NewMapper(store ports.MappingStore) *Mapper {
	return &Mapper{store: store}
}

// Resolve returns the internal id mapped to the external id, or
// domain.ErrUnmapped / domain.ErrConflictingMapping.
func (m *Mapper) Resolve(ctx context.Context, tenantID, externalID string, kind domain.EntityKind) (string, error) {
	mapping, err := m.store.Get(ctx, tenantID, externalID, kind)
	if err != nil {
		return "", err
	}
	return mapping.InternalID, nil
}

// Record persists a freshly established mapping.
func (m *Mapper) Record(ctx context.Context, tenantID, externalID string, kind domain.EntityKind, internalID string) error {
	err := m.store.Put(ctx, domain.EntityMapping{
		TenantID:   tenantID,
		ExternalID: externalID,
		Kind:       kind,
		InternalID: internalID,
	})
	if err != nil {
		return fmt.Errorf("record %s mapping for %s: %w", kind, externalID, err)
	}
	return nil
}

// Remap explicitly repoints an existing mapping, used when the internal
// entity was recreated.
func (m *Mapper) Remap(ctx context.Context, tenantID, externalID string, kind domain.EntityKind, internalID string) error {
	err := m.store.Remap(ctx, domain.EntityMapping{
		TenantID:   tenantID,
		ExternalID: externalID,
		Kind:       kind,
		InternalID: internalID,
	})
	if err != nil {
		return fmt.Errorf("remap %s mapping for %s: %w", kind, externalID, err)
	}
	return nil
}
