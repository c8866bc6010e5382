package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tailtown/gingrsync/internal/domains/boarding/domain"
	"github.com/tailtown/gingrsync/internal/domains/boarding/ports"
)

var (
	_ ports.CustomerRepository    = (*CustomerRepository)(nil)
	_ ports.PetRepository         = (*PetRepository)(nil)
	_ ports.ReservationRepository = (*ReservationRepository)(nil)
	_ ports.ResourceRepository    = (*ResourceRepository)(nil)
)

var errNoDB = errors.New("postgres repository has no database handle")

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

// CustomerRepository persists customers in PostgreSQL using GORM-mapped columns.
type CustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle.
func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Save(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	if customer == nil {
		return nil, errors.New("cannot save nil customer")
	}
	record := customerRecord{
		ID:         customer.ID,
		TenantID:   customer.TenantID,
		FirstName:  customer.FirstName,
		LastName:   customer.LastName,
		Email:      customer.Email,
		Phone:      customer.Phone,
		ExternalID: customer.ExternalID,
		Notes:      customer.Notes,
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"first_name":  record.FirstName,
				"last_name":   record.LastName,
				"email":       record.Email,
				"phone":       record.Phone,
				"external_id": record.ExternalID,
				"notes":       record.Notes,
				"updated_at":  gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, customer.TenantID, record.ID)
}

func (r *CustomerRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Customer, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	var record customerRecord
	if err := r.db.WithContext(ctx).First(&record, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *customerRecord) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:         r.ID,
		TenantID:   r.TenantID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		ExternalID: r.ExternalID,
		Notes:      r.Notes,
	}
}

// PetRepository persists pets in PostgreSQL using GORM-mapped columns.
type PetRepository struct {
	db *gorm.DB
}

func NewPetRepository(db *gorm.DB) *PetRepository {
	return &PetRepository{db: db}
}

func (r *PetRepository) Save(ctx context.Context, pet *domain.Pet) (*domain.Pet, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	if pet == nil {
		return nil, errors.New("cannot save nil pet")
	}
	record := petRecord{
		ID:              pet.ID,
		TenantID:        pet.TenantID,
		CustomerID:      pet.CustomerID,
		Name:            pet.Name,
		Breed:           pet.Breed,
		WeightLbs:       pet.WeightLbs,
		VaccinationTags: append(pq.StringArray{}, pet.VaccinationTags...),
		ExternalID:      pet.ExternalID,
		Notes:           pet.Notes,
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"customer_id":      record.CustomerID,
				"name":             record.Name,
				"breed":            record.Breed,
				"weight_lbs":       record.WeightLbs,
				"vaccination_tags": record.VaccinationTags,
				"external_id":      record.ExternalID,
				"notes":            record.Notes,
				"updated_at":       gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, pet.TenantID, record.ID)
}

func (r *PetRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Pet, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	var record petRecord
	if err := r.db.WithContext(ctx).First(&record, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *petRecord) toDomain() *domain.Pet {
	return &domain.Pet{
		ID:              r.ID,
		TenantID:        r.TenantID,
		CustomerID:      r.CustomerID,
		Name:            r.Name,
		Breed:           r.Breed,
		WeightLbs:       r.WeightLbs,
		VaccinationTags: append([]string{}, r.VaccinationTags...),
		ExternalID:      r.ExternalID,
		Notes:           r.Notes,
	}
}

// ReservationRepository persists reservations in PostgreSQL.
type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) Save(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	if reservation == nil {
		return nil, errors.New("cannot save nil reservation")
	}
	record := reservationRecord{
		ID:         reservation.ID,
		TenantID:   reservation.TenantID,
		CustomerID: reservation.CustomerID,
		PetID:      reservation.PetID,
		ResourceID: reservation.ResourceID,
		StartTime:  reservation.Start,
		EndTime:    reservation.End,
		Status:     string(reservation.Status),
		Kind:       string(reservation.Kind),
		ExternalID: reservation.ExternalID,
		Notes:      reservation.Notes,
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"customer_id": record.CustomerID,
				"pet_id":      record.PetID,
				"resource_id": record.ResourceID,
				"start_time":  record.StartTime,
				"end_time":    record.EndTime,
				"status":      record.Status,
				"kind":        record.Kind,
				"external_id": record.ExternalID,
				"notes":       record.Notes,
				"updated_at":  gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetByID(ctx, reservation.TenantID, record.ID)
}

func (r *ReservationRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Reservation, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	var record reservationRecord
	if err := r.db.WithContext(ctx).First(&record, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *ReservationRepository) ListActiveOverlapping(ctx context.Context, tenantID string, window domain.Interval) ([]*domain.Reservation, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	var records []reservationRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ? AND start_time < ? AND end_time > ?",
			tenantID,
			[]string{string(domain.StatusPending), string(domain.StatusConfirmed), string(domain.StatusCheckedIn)},
			window.End, window.Start).
		Order("id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Reservation, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (r *reservationRecord) toDomain() *domain.Reservation {
	return &domain.Reservation{
		ID:         r.ID,
		TenantID:   r.TenantID,
		CustomerID: r.CustomerID,
		PetID:      r.PetID,
		ResourceID: r.ResourceID,
		Start:      r.StartTime,
		End:        r.EndTime,
		Status:     domain.Status(r.Status),
		Kind:       domain.Kind(r.Kind),
		ExternalID: r.ExternalID,
		Notes:      r.Notes,
	}
}

// ResourceRepository reads the tenant's allocatable units from PostgreSQL.
type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) Save(ctx context.Context, resource *domain.Resource) (*domain.Resource, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	if resource == nil {
		return nil, errors.New("cannot save nil resource")
	}
	record := resourceRecord{
		ID:       resource.ID,
		TenantID: resource.TenantID,
		Name:     resource.Name,
		Category: string(resource.Category),
		Active:   resource.Active,
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"name":       record.Name,
				"category":   record.Category,
				"active":     record.Active,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	saved := domain.Resource{
		ID:       record.ID,
		TenantID: record.TenantID,
		Name:     record.Name,
		Category: domain.Category(record.Category),
		Active:   record.Active,
	}
	return &saved, nil
}

func (r *ResourceRepository) ListActive(ctx context.Context, tenantID string) ([]domain.Resource, error) {
	if r.db == nil {
		return nil, errNoDB
	}
	var records []resourceRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active", tenantID).
		Order("name, id").
		Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]domain.Resource, 0, len(records))
	for _, record := range records {
		list = append(list, domain.Resource{
			ID:       record.ID,
			TenantID: record.TenantID,
			Name:     record.Name,
			Category: domain.Category(record.Category),
			Active:   record.Active,
		})
	}
	return list, nil
}
