package ports

import (
	"context"
	"errors"

	"github.com/tailtown/gingrsync/internal/domains/boarding/domain"
)

// ErrNotFound signals the entity does not exist in the store.
var ErrNotFound = errors.New("entity not found")

// CustomerRepository persists customer aggregates.
type CustomerRepository interface {
	Save(ctx context.Context, customer *domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.Customer, error)
}

// PetRepository persists pet aggregates.
type PetRepository interface {
	Save(ctx context.Context, pet *domain.Pet) (*domain.Pet, error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.Pet, error)
}

// ReservationRepository persists reservations and answers the occupancy
// queries the allocator's callers need.
type ReservationRepository interface {
	Save(ctx context.Context, reservation *domain.Reservation) (*domain.Reservation, error)
	GetByID(ctx context.Context, tenantID, id string) (*domain.Reservation, error)
	// ListActiveOverlapping returns active reservations whose half-open
	// window intersects the given interval, ordered by id for determinism.
	ListActiveOverlapping(ctx context.Context, tenantID string, window domain.Interval) ([]*domain.Reservation, error)
}

// ResourceRepository exposes the tenant's allocatable units. Resources are
// only mutated by administrative operations, never by a sync run.
type ResourceRepository interface {
	Save(ctx context.Context, resource *domain.Resource) (*domain.Resource, error)
	ListActive(ctx context.Context, tenantID string) ([]domain.Resource, error)
}
