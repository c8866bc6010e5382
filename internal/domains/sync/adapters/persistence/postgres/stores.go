package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/ports"
)

var (
	_ ports.MappingStore    = (*MappingStore)(nil)
	_ ports.CheckpointStore = (*CheckpointStore)(nil)
	_ ports.TenantDirectory = (*TenantDirectory)(nil)
)

var errNoDB = errors.New("postgres store has no database handle")

type mappingRecord struct {
	ID         uint      `gorm:"primaryKey;column:id;autoIncrement"`
	TenantID   string    `gorm:"column:tenant_id;size:36;index:idx_entity_mappings_key"`
	Kind       string    `gorm:"column:kind;type:varchar(32);index:idx_entity_mappings_key"`
	ExternalID string    `gorm:"column:external_id;index:idx_entity_mappings_key"`
	InternalID string    `gorm:"column:internal_id;size:36"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (mappingRecord) TableName() string { return "entity_mappings" }

// MappingStore persists the external-to-internal id table. The key is not
// uniquely constrained: legacy imports left duplicated rows in places, and
// the store's job is to surface that as a conflict rather than hide it.
type MappingStore struct {
	db *gorm.DB
}

func NewMappingStore(db *gorm.DB) *MappingStore {
	return &MappingStore{db: db}
}

func (s *MappingStore) Get(ctx context.Context, tenantID, externalID string, kind domain.EntityKind) (*domain.EntityMapping, error) {
	if s.db == nil {
		return nil, errNoDB
	}
	var records []mappingRecord
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND kind = ? AND external_id = ?", tenantID, string(kind), externalID).
		Limit(2).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	switch len(records) {
	case 0:
		return nil, domain.ErrUnmapped
	case 1:
		return &domain.EntityMapping{
			TenantID:   records[0].TenantID,
			ExternalID: records[0].ExternalID,
			Kind:       domain.EntityKind(records[0].Kind),
			InternalID: records[0].InternalID,
		}, nil
	default:
		return nil, domain.ErrConflictingMapping
	}
}

func (s *MappingStore) Put(ctx context.Context, mapping domain.EntityMapping) error {
	if s.db == nil {
		return errNoDB
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var records []mappingRecord
		err := tx.
			Where("tenant_id = ? AND kind = ? AND external_id = ?",
				mapping.TenantID, string(mapping.Kind), mapping.ExternalID).
			Find(&records).Error
		if err != nil {
			return err
		}
		for _, record := range records {
			if record.InternalID == mapping.InternalID {
				return nil
			}
		}
		if len(records) > 0 {
			return domain.ErrMappingExists
		}
		return tx.Create(&mappingRecord{
			TenantID:   mapping.TenantID,
			Kind:       string(mapping.Kind),
			ExternalID: mapping.ExternalID,
			InternalID: mapping.InternalID,
		}).Error
	})
}

func (s *MappingStore) Remap(ctx context.Context, mapping domain.EntityMapping) error {
	if s.db == nil {
		return errNoDB
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("tenant_id = ? AND kind = ? AND external_id = ?",
				mapping.TenantID, string(mapping.Kind), mapping.ExternalID).
			Delete(&mappingRecord{}).Error
		if err != nil {
			return err
		}
		return tx.Create(&mappingRecord{
			TenantID:   mapping.TenantID,
			Kind:       string(mapping.Kind),
			ExternalID: mapping.ExternalID,
			InternalID: mapping.InternalID,
		}).Error
	})
}

type checkpointRecord struct {
	TenantID   string    `gorm:"primaryKey;column:tenant_id;size:36"`
	Kind       string    `gorm:"primaryKey;column:kind;type:varchar(32)"`
	NextOffset int       `gorm:"column:next_offset"`
	Stats      []byte    `gorm:"column:stats;type:jsonb"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (checkpointRecord) TableName() string { return "sync_checkpoints" }

// CheckpointStore persists batch progress. The upsert is a single statement
// so a crash can never leave a half-written checkpoint behind.
type CheckpointStore struct {
	db *gorm.DB
}

func NewCheckpointStore(db *gorm.DB) *CheckpointStore {
	return &CheckpointStore{db: db}
}

func (s *CheckpointStore) Get(ctx context.Context, tenantID string, kind domain.EntityKind) (*domain.Checkpoint, error) {
	if s.db == nil {
		return nil, errNoDB
	}
	var record checkpointRecord
	err := s.db.WithContext(ctx).
		First(&record, "tenant_id = ? AND kind = ?", tenantID, string(kind)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrNoCheckpoint
	}
	if err != nil {
		return nil, err
	}
	checkpoint := domain.Checkpoint{
		TenantID:   record.TenantID,
		Kind:       domain.EntityKind(record.Kind),
		NextOffset: record.NextOffset,
		UpdatedAt:  record.UpdatedAt,
	}
	if len(record.Stats) > 0 {
		if err := json.Unmarshal(record.Stats, &checkpoint.Stats); err != nil {
			return nil, err
		}
	}
	return &checkpoint, nil
}

func (s *CheckpointStore) Put(ctx context.Context, checkpoint domain.Checkpoint) error {
	if s.db == nil {
		return errNoDB
	}
	stats, err := json.Marshal(checkpoint.Stats)
	if err != nil {
		return err
	}
	record := checkpointRecord{
		TenantID:   checkpoint.TenantID,
		Kind:       string(checkpoint.Kind),
		NextOffset: checkpoint.NextOffset,
		Stats:      stats,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}, {Name: "kind"}},
			DoUpdates: clause.Assignments(map[string]any{
				"next_offset": record.NextOffset,
				"stats":       record.Stats,
				"updated_at":  gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error
}

func (s *CheckpointStore) Clear(ctx context.Context, tenantID string, kind domain.EntityKind) error {
	if s.db == nil {
		return errNoDB
	}
	return s.db.WithContext(ctx).
		Where("tenant_id = ? AND kind = ?", tenantID, string(kind)).
		Delete(&checkpointRecord{}).Error
}

type tenantRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	Name      string    `gorm:"column:name"`
	Subdomain string    `gorm:"column:subdomain;uniqueIndex"`
	APIKey    string    `gorm:"column:api_key"`
	Enabled   bool      `gorm:"column:enabled;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (tenantRecord) TableName() string { return "tenants" }

// TenantDirectory reads the tenant registry from PostgreSQL.
type TenantDirectory struct {
	db *gorm.DB
}

func NewTenantDirectory(db *gorm.DB) *TenantDirectory {
	return &TenantDirectory{db: db}
}

func (d *TenantDirectory) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	if d.db == nil {
		return nil, errNoDB
	}
	var record tenantRecord
	err := d.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ports.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (d *TenantDirectory) ListEnabled(ctx context.Context) ([]domain.Tenant, error) {
	if d.db == nil {
		return nil, errNoDB
	}
	var records []tenantRecord
	if err := d.db.WithContext(ctx).
		Where("enabled").
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	tenants := make([]domain.Tenant, 0, len(records))
	for i := range records {
		tenants = append(tenants, *records[i].toDomain())
	}
	return tenants, nil
}

// Save upserts a tenant, used by operational tooling to register accounts.
func (d *TenantDirectory) Save(ctx context.Context, tenant domain.Tenant) error {
	if d.db == nil {
		return errNoDB
	}
	record := tenantRecord{
		ID:        tenant.ID,
		Name:      tenant.Name,
		Subdomain: tenant.Subdomain,
		APIKey:    tenant.APIKey,
		Enabled:   tenant.Enabled,
	}
	return d.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":       record.Name,
				"subdomain":  record.Subdomain,
				"api_key":    record.APIKey,
				"enabled":    record.Enabled,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error
}

func (r *tenantRecord) toDomain() *domain.Tenant {
	return &domain.Tenant{
		ID:        r.ID,
		Name:      r.Name,
		Subdomain: r.Subdomain,
		APIKey:    r.APIKey,
		Enabled:   r.Enabled,
	}
}
