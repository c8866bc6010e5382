package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	boardingmem "github.com/tailtown/gingrsync/internal/domains/boarding/adapters/memory"
	boarding "github.com/tailtown/gingrsync/internal/domains/boarding/domain"
	syncmem "github.com/tailtown/gingrsync/internal/domains/sync/adapters/memory"
	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/ports"
)

const testTenantID = "tenant-1"

type pageKey struct {
	kind   domain.EntityKind
	offset int
}

// fakeDirectory serves canned external records with offset pagination and
// supports injecting page-fetch failures at chosen offsets.
type fakeDirectory struct {
	mu       sync.Mutex
	records  map[domain.EntityKind][]domain.ExternalRecord
	details  map[string]*domain.ExternalPet
	failures map[pageKey]int
	fetches  map[domain.EntityKind]int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		records:  map[domain.EntityKind][]domain.ExternalRecord{},
		details:  map[string]*domain.ExternalPet{},
		failures: map[pageKey]int{},
		fetches:  map[domain.EntityKind]int{},
	}
}

func (d *fakeDirectory) FetchPage(_ context.Context, kind domain.EntityKind, offset, limit int) (ports.RecordPage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetches[kind]++
	key := pageKey{kind, offset}
	if d.failures[key] > 0 {
		d.failures[key]--
		return ports.RecordPage{}, fmt.Errorf("injected failure at %s offset %d", kind, offset)
	}
	all := d.records[kind]
	if offset >= len(all) {
		return ports.RecordPage{Total: len(all), Done: true}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	page := ports.RecordPage{
		Records: append([]domain.ExternalRecord{}, all[offset:end]...),
		Total:   len(all),
		Done:    end >= len(all),
	}
	return page, nil
}

func (d *fakeDirectory) FetchPetDetail(_ context.Context, externalID string) (*domain.ExternalPet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	detail, ok := d.details[externalID]
	if !ok {
		return nil, ports.ErrExternalNotFound
	}
	clone := *detail
	clone.Vaccinations = append([]string{}, detail.Vaccinations...)
	return &clone, nil
}

func (d *fakeDirectory) failAt(kind domain.EntityKind, offset, times int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[pageKey{kind, offset}] = times
}

func (d *fakeDirectory) fetchCount(kind domain.EntityKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fetches[kind]
}

// fakeProvider hands out one directory per tenant id.
type fakeProvider struct {
	directories map[string]ports.Directory
}

func (p *fakeProvider) DirectoryFor(tenant domain.Tenant) (ports.Directory, error) {
	directory, ok := p.directories[tenant.ID]
	if !ok {
		return nil, fmt.Errorf("no directory for tenant %s", tenant.ID)
	}
	return directory, nil
}

// harness wires the full application layer over in-memory adapters.
type harness struct {
	customers    *boardingmem.CustomerRepository
	pets         *boardingmem.PetRepository
	reservations *boardingmem.ReservationRepository
	resources    *boardingmem.ResourceRepository
	mappings     *syncmem.MappingStore
	checkpoints  *syncmem.CheckpointStore
	tenants      *syncmem.TenantDirectory
	directory    *fakeDirectory
	mapper       *Mapper
	writer       *Writer
	service      *SyncService
}

func newHarness(t *testing.T, opts ...ServiceOption) *harness {
	t.Helper()
	h := &harness{
		customers:    boardingmem.NewCustomerRepository(),
		pets:         boardingmem.NewPetRepository(),
		reservations: boardingmem.NewReservationRepository(),
		resources:    boardingmem.NewResourceRepository(),
		mappings:     syncmem.NewMappingStore(),
		checkpoints:  syncmem.NewCheckpointStore(),
		directory:    newFakeDirectory(),
	}
	h.tenants = syncmem.NewTenantDirectory(domain.Tenant{
		ID:        testTenantID,
		Name:      "Test Resort",
		Subdomain: "test",
		APIKey:    "key",
		Enabled:   true,
	})
	h.mapper = NewMapper(h.mappings)
	h.writer = NewWriter(h.customers, h.pets, h.reservations, h.resources, h.mapper, boarding.DefaultPolicy())
	provider := &fakeProvider{directories: map[string]ports.Directory{testTenantID: h.directory}}
	h.service = NewSyncService(h.tenants, provider, h.checkpoints, h.writer, opts...)
	return h
}

func (h *harness) seedResource(t *testing.T, id, name string, category boarding.Category) {
	t.Helper()
	_, err := h.resources.Save(context.Background(), &boarding.Resource{
		ID:       id,
		TenantID: testTenantID,
		Name:     name,
		Category: category,
		Active:   true,
	})
	require.NoError(t, err)
}

func ownerRecord(id, first, last string) domain.ExternalRecord {
	return domain.ExternalRecord{
		Kind:       domain.KindCustomer,
		ExternalID: id,
		Customer: &domain.ExternalCustomer{
			ExternalID: id,
			FirstName:  first,
			LastName:   last,
			Email:      first + "@example.com",
		},
	}
}

func petRecord(id, ownerID, name string, weight float64) domain.ExternalRecord {
	return domain.ExternalRecord{
		Kind:       domain.KindPet,
		ExternalID: id,
		Pet: &domain.ExternalPet{
			ExternalID:      id,
			OwnerExternalID: ownerID,
			Name:            name,
			Breed:           "mixed",
			WeightLbs:       weight,
		},
	}
}

func reservationRecord(id, ownerID, animalID, kind, start, end, status string) domain.ExternalRecord {
	return domain.ExternalRecord{
		Kind:       domain.KindReservation,
		ExternalID: id,
		Reservation: &domain.ExternalReservation{
			ExternalID:       id,
			OwnerExternalID:  ownerID,
			AnimalExternalID: animalID,
			Type:             kind,
			StartDate:        start,
			EndDate:          end,
			Status:           status,
		},
	}
}
