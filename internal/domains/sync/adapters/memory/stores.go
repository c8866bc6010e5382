package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/ports"
)

var (
	_ ports.MappingStore    = (*MappingStore)(nil)
	_ ports.CheckpointStore = (*CheckpointStore)(nil)
	_ ports.TenantDirectory = (*TenantDirectory)(nil)
)

type mappingKey struct {
	tenantID   string
	kind       domain.EntityKind
	externalID string
}

// MappingStore is an in-memory external-id mapping table. Rows are kept as
// a slice per key so historical duplication can be modeled in tests.
type MappingStore struct {
	mu   sync.RWMutex
	rows map[mappingKey][]string
}

func NewMappingStore() *MappingStore {
	return &MappingStore{rows: map[mappingKey][]string{}}
}

func (s *MappingStore) Get(_ context.Context, tenantID, externalID string, kind domain.EntityKind) (*domain.EntityMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.rows[mappingKey{tenantID, kind, externalID}]
	switch len(ids) {
	case 0:
		return nil, domain.ErrUnmapped
	case 1:
		return &domain.EntityMapping{
			TenantID:   tenantID,
			ExternalID: externalID,
			Kind:       kind,
			InternalID: ids[0],
		}, nil
	default:
		return nil, domain.ErrConflictingMapping
	}
}

func (s *MappingStore) Put(_ context.Context, mapping domain.EntityMapping) error {
	key := mappingKey{mapping.TenantID, mapping.Kind, mapping.ExternalID}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.rows[key]
	if slices.Contains(ids, mapping.InternalID) {
		return nil
	}
	if len(ids) > 0 {
		return domain.ErrMappingExists
	}
	s.rows[key] = []string{mapping.InternalID}
	return nil
}

func (s *MappingStore) Remap(_ context.Context, mapping domain.EntityMapping) error {
	key := mappingKey{mapping.TenantID, mapping.Kind, mapping.ExternalID}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[key] = []string{mapping.InternalID}
	return nil
}

// AddDuplicate injects a second internal id for a key, modeling legacy
// duplicated rows for conflict tests.
func (s *MappingStore) AddDuplicate(tenantID, externalID string, kind domain.EntityKind, internalID string) {
	key := mappingKey{tenantID, kind, externalID}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[key] = append(s.rows[key], internalID)
}

type checkpointKey struct {
	tenantID string
	kind     domain.EntityKind
}

// CheckpointStore is an in-memory batch progress store.
type CheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[checkpointKey]domain.Checkpoint
}

func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{checkpoints: map[checkpointKey]domain.Checkpoint{}}
}

func (s *CheckpointStore) Get(_ context.Context, tenantID string, kind domain.EntityKind) (*domain.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	checkpoint, ok := s.checkpoints[checkpointKey{tenantID, kind}]
	if !ok {
		return nil, ports.ErrNoCheckpoint
	}
	clone := checkpoint
	clone.Stats.Errors = append([]string{}, checkpoint.Stats.Errors...)
	return &clone, nil
}

func (s *CheckpointStore) Put(_ context.Context, checkpoint domain.Checkpoint) error {
	clone := checkpoint
	clone.Stats.Errors = append([]string{}, checkpoint.Stats.Errors...)
	clone.UpdatedAt = time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[checkpointKey{checkpoint.TenantID, checkpoint.Kind}] = clone
	return nil
}

func (s *CheckpointStore) Clear(_ context.Context, tenantID string, kind domain.EntityKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkpoints, checkpointKey{tenantID, kind})
	return nil
}

// TenantDirectory is an in-memory tenant registry.
type TenantDirectory struct {
	mu      sync.RWMutex
	tenants map[string]domain.Tenant
}

func NewTenantDirectory(tenants ...domain.Tenant) *TenantDirectory {
	d := &TenantDirectory{tenants: map[string]domain.Tenant{}}
	for _, tenant := range tenants {
		d.tenants[tenant.ID] = tenant
	}
	return d
}

func (d *TenantDirectory) Put(tenant domain.Tenant) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tenants[tenant.ID] = tenant
}

func (d *TenantDirectory) GetByID(_ context.Context, id string) (*domain.Tenant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	tenant, ok := d.tenants[id]
	if !ok {
		return nil, ports.ErrTenantNotFound
	}
	clone := tenant
	return &clone, nil
}

func (d *TenantDirectory) ListEnabled(_ context.Context) ([]domain.Tenant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	enabled := make([]domain.Tenant, 0, len(d.tenants))
	for _, tenant := range d.tenants {
		if tenant.Enabled {
			enabled = append(enabled, tenant)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i].ID < enabled[j].ID })
	return enabled, nil
}
