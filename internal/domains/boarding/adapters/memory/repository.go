package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/tailtown/gingrsync/internal/domains/boarding/domain"
	"github.com/tailtown/gingrsync/internal/domains/boarding/ports"
)

var (
	_ ports.CustomerRepository    = (*CustomerRepository)(nil)
	_ ports.PetRepository         = (*PetRepository)(nil)
	_ ports.ReservationRepository = (*ReservationRepository)(nil)
	_ ports.ResourceRepository    = (*ResourceRepository)(nil)
)

// CustomerRepository is an in-memory customer persistence adapter.
type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{customers: map[string]*domain.Customer{}}
}

func (r *CustomerRepository) Save(_ context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	clone := *customer
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *CustomerRepository) GetByID(_ context.Context, tenantID, id string) (*domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	customer, ok := r.customers[id]
	if !ok || customer.TenantID != tenantID {
		return nil, ports.ErrNotFound
	}
	clone := *customer
	return &clone, nil
}

// Delete removes a customer, used by tests to model out-of-band deletion.
func (r *CustomerRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, id)
}

// Count returns the number of stored customers.
func (r *CustomerRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.customers)
}

// PetRepository is an in-memory pet persistence adapter.
type PetRepository struct {
	mu   sync.RWMutex
	pets map[string]*domain.Pet
}

func NewPetRepository() *PetRepository {
	return &PetRepository{pets: map[string]*domain.Pet{}}
}

func (r *PetRepository) Save(_ context.Context, pet *domain.Pet) (*domain.Pet, error) {
	if pet == nil {
		return nil, errors.New("pet is nil")
	}
	clone := *pet
	clone.VaccinationTags = append([]string{}, pet.VaccinationTags...)
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pets[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *PetRepository) GetByID(_ context.Context, tenantID, id string) (*domain.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pet, ok := r.pets[id]
	if !ok || pet.TenantID != tenantID {
		return nil, ports.ErrNotFound
	}
	clone := *pet
	clone.VaccinationTags = append([]string{}, pet.VaccinationTags...)
	return &clone, nil
}

// Delete removes a pet, used by tests to model out-of-band deletion.
func (r *PetRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pets, id)
}

// ReservationRepository is an in-memory reservation persistence adapter.
type ReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]*domain.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{reservations: map[string]*domain.Reservation{}}
}

func (r *ReservationRepository) Save(_ context.Context, reservation *domain.Reservation) (*domain.Reservation, error) {
	if reservation == nil {
		return nil, errors.New("reservation is nil")
	}
	clone := *reservation
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reservations[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *ReservationRepository) GetByID(_ context.Context, tenantID, id string) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reservation, ok := r.reservations[id]
	if !ok || reservation.TenantID != tenantID {
		return nil, ports.ErrNotFound
	}
	clone := *reservation
	return &clone, nil
}

func (r *ReservationRepository) ListActiveOverlapping(_ context.Context, tenantID string, window domain.Interval) ([]*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Reservation, 0)
	for _, reservation := range r.reservations {
		if reservation.TenantID != tenantID || !reservation.Status.IsActive() {
			continue
		}
		if !reservation.Window().Overlaps(window) {
			continue
		}
		clone := *reservation
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// All returns every stored reservation, used by tests to assert the
// overlap invariant over the whole store.
func (r *ReservationRepository) All() []*domain.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Reservation, 0, len(r.reservations))
	for _, reservation := range r.reservations {
		clone := *reservation
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

// ResourceRepository is an in-memory resource adapter.
type ResourceRepository struct {
	mu        sync.RWMutex
	resources map[string]*domain.Resource
}

func NewResourceRepository() *ResourceRepository {
	return &ResourceRepository{resources: map[string]*domain.Resource{}}
}

func (r *ResourceRepository) Save(_ context.Context, resource *domain.Resource) (*domain.Resource, error) {
	if resource == nil {
		return nil, errors.New("resource is nil")
	}
	clone := *resource
	if clone.ID == "" {
		clone.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *ResourceRepository) ListActive(_ context.Context, tenantID string) ([]domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]domain.Resource, 0, len(r.resources))
	for _, resource := range r.resources {
		if resource.TenantID == tenantID && resource.Active {
			list = append(list, *resource)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
