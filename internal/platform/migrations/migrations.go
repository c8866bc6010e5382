package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the boarding and sync contexts. Intended to
// replace adapter-level automigrate.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&customerRecord{},
		&petRecord{},
		&reservationRecord{},
		&resourceRecord{},
		&mappingRecord{},
		&checkpointRecord{},
		&tenantRecord{},
	)
}

// Customer schema mirrors the boarding Postgres adapter.
type customerRecord struct {
	ID         string    `gorm:"primaryKey;column:id;size:36"`
	TenantID   string    `gorm:"column:tenant_id;size:36;index:idx_customers_tenant"`
	FirstName  string    `gorm:"column:first_name"`
	LastName   string    `gorm:"column:last_name"`
	Email      string    `gorm:"column:email"`
	Phone      string    `gorm:"column:phone"`
	ExternalID string    `gorm:"column:external_id;index"`
	Notes      string    `gorm:"column:notes"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (customerRecord) TableName() string { return "customers" }

// Pet schema mirrors the boarding Postgres adapter.
type petRecord struct {
	ID              string         `gorm:"primaryKey;column:id;size:36"`
	TenantID        string         `gorm:"column:tenant_id;size:36;index:idx_pets_tenant"`
	CustomerID      string         `gorm:"column:customer_id;size:36;index"`
	Name            string         `gorm:"column:name"`
	Breed           string         `gorm:"column:breed"`
	WeightLbs       float64        `gorm:"column:weight_lbs"`
	VaccinationTags pq.StringArray `gorm:"column:vaccination_tags;type:text[]"`
	ExternalID      string         `gorm:"column:external_id;index"`
	Notes           string         `gorm:"column:notes"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
}

func (petRecord) TableName() string { return "pets" }

// Reservation schema mirrors the boarding Postgres adapter.
type reservationRecord struct {
	ID         string    `gorm:"primaryKey;column:id;size:36"`
	TenantID   string    `gorm:"column:tenant_id;size:36;index:idx_reservations_tenant_window"`
	CustomerID string    `gorm:"column:customer_id;size:36"`
	PetID      string    `gorm:"column:pet_id;size:36;index"`
	ResourceID string    `gorm:"column:resource_id;size:36;index"`
	StartTime  time.Time `gorm:"column:start_time;index:idx_reservations_tenant_window"`
	EndTime    time.Time `gorm:"column:end_time"`
	Status     string    `gorm:"column:status;type:varchar(32);index"`
	Kind       string    `gorm:"column:kind;type:varchar(32)"`
	ExternalID string    `gorm:"column:external_id;index"`
	Notes      string    `gorm:"column:notes"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (reservationRecord) TableName() string { return "reservations" }

// Resource schema mirrors the boarding Postgres adapter.
type resourceRecord struct {
	ID        string    `gorm:"primaryKey;column:id;size:36"`
	TenantID  string    `gorm:"column:tenant_id;size:36;index:idx_resources_tenant"`
	Name      string    `gorm:"column:name"`
	Category  string    `gorm:"column:category;type:varchar(32)"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (resourceRecord) TableName() string { return "resources" }

// Entity mapping schema mirrors the sync Postgres adapter.
type mappingRecord struct {
	ID         uint      `gorm:"primaryKey;column:id;autoIncrement"`
	TenantID   string    `gorm:"column:tenant_id;size:36;index:idx_entity_mappings_key"`
	Kind       string    `gorm:"column:kind;type:varchar(32);index:idx_entity_mappings_key"`
	ExternalID string    `gorm:"column:external_id;index:idx_entity_mappings_key"`
	InternalID string    `gorm:"column:internal_id;size:36"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (mappingRecord) TableName() string { return "entity_mappings" }

// Checkpoint schema mirrors the sync Postgres adapter.
type checkpointRecord struct {
	TenantID   string    `gorm:"primaryKey;column:tenant_id;size:36"`
	Kind       string    `gorm:"primaryKey;column:kind;type:varchar(32)"`
	NextOffset int       `gorm:"column:next_offset"`
	Stats      []byte    `gorm:"column:stats;type:jsonb"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (checkpointRecord) TableName() string { return "sync_checkpoints" }

// Tenant schema mirrors the sync Postgres adapter.
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
