package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	boarding "github.com/tailtown/gingrsync/internal/domains/boarding/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
)

func (h *harness) seedOwnerAndPet(t *testing.T, ownerID, petID string, weightLbs float64) {
	t.Helper()
	ctx := context.Background()
	outcome := h.writer.UpsertCustomer(ctx, testTenantID, ownerRecord(ownerID, "Ann", "Smith").Customer)
	require.Equal(t, domain.OutcomeCreated, outcome.Code, outcome.Reason)
	outcome = h.writer.UpsertPet(ctx, testTenantID, petRecord(petID, ownerID, "Rex", weightLbs).Pet)
	require.Equal(t, domain.OutcomeCreated, outcome.Code, outcome.Reason)
}

func (h *harness) reservationByExternalID(t *testing.T, externalID string) *boarding.Reservation {
	t.Helper()
	ctx := context.Background()
	id, err := h.mapper.Resolve(ctx, testTenantID, externalID, domain.KindReservation)
	require.NoError(t, err)
	reservation, err := h.reservations.GetByID(ctx, testTenantID, id)
	require.NoError(t, err)
	return reservation
}

func TestWriterCreatesCustomerWithMapping(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	outcome := h.writer.UpsertCustomer(ctx, testTenantID, ownerRecord("o-1", "Ann", "Smith").Customer)
	require.Equal(t, domain.OutcomeCreated, outcome.Code)

	id, err := h.mapper.Resolve(ctx, testTenantID, "o-1", domain.KindCustomer)
	require.NoError(t, err)
	customer, err := h.customers.GetByID(ctx, testTenantID, id)
	require.NoError(t, err)
	require.Equal(t, "Ann", customer.FirstName)
	require.Equal(t, "o-1", customer.ExternalID)
}

func TestWriterCustomerSecondRunUnchanged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	record := ownerRecord("o-1", "Ann", "Smith").Customer

	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertCustomer(ctx, testTenantID, record).Code)
	require.Equal(t, domain.OutcomeUnchanged, h.writer.UpsertCustomer(ctx, testTenantID, record).Code)
}

func TestWriterCustomerUpdatePreservesLocalNotes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertCustomer(ctx, testTenantID, ownerRecord("o-1", "Ann", "Smith").Customer).Code)

	id, err := h.mapper.Resolve(ctx, testTenantID, "o-1", domain.KindCustomer)
	require.NoError(t, err)
	customer, err := h.customers.GetByID(ctx, testTenantID, id)
	require.NoError(t, err)
	customer.Notes = "prefers morning pickup"
	_, err = h.customers.Save(ctx, customer)
	require.NoError(t, err)

	changed := ownerRecord("o-1", "Ann", "Smith").Customer
	changed.Email = "ann@new.example.com"
	require.Equal(t, domain.OutcomeUpdated, h.writer.UpsertCustomer(ctx, testTenantID, changed).Code)

	customer, err = h.customers.GetByID(ctx, testTenantID, id)
	require.NoError(t, err)
	require.Equal(t, "ann@new.example.com", customer.Email)
	require.Equal(t, "prefers morning pickup", customer.Notes)
}

func TestWriterRecreatesDeletedCustomerAndRemaps(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	record := ownerRecord("o-1", "Ann", "Smith").Customer

	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertCustomer(ctx, testTenantID, record).Code)
	oldID, err := h.mapper.Resolve(ctx, testTenantID, "o-1", domain.KindCustomer)
	require.NoError(t, err)

	h.customers.Delete(oldID)

	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertCustomer(ctx, testTenantID, record).Code)
	newID, err := h.mapper.Resolve(ctx, testTenantID, "o-1", domain.KindCustomer)
	require.NoError(t, err)
	require.NotEqual(t, oldID, newID)

	_, err = h.customers.GetByID(ctx, testTenantID, newID)
	require.NoError(t, err)
}

func TestWriterConflictingCustomerMappingErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	record := ownerRecord("o-1", "Ann", "Smith").Customer

	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertCustomer(ctx, testTenantID, record).Code)
	h.mappings.AddDuplicate(testTenantID, "o-1", domain.KindCustomer, "other-internal-id")

	outcome := h.writer.UpsertCustomer(ctx, testTenantID, record)
	require.Equal(t, domain.OutcomeErrored, outcome.Code)
	require.Contains(t, outcome.Reason, "manual review")
}

func TestWriterPetRequiresMappedOwner(t *testing.T) {
	h := newHarness(t)

	outcome := h.writer.UpsertPet(context.Background(), testTenantID, petRecord("p-1", "o-missing", "Rex", 40).Pet)
	require.Equal(t, domain.OutcomeErrored, outcome.Code)
	require.Contains(t, outcome.Reason, "o-missing")
}

func TestWriterPetVaccinationUpdates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertCustomer(ctx, testTenantID, ownerRecord("o-1", "Ann", "Smith").Customer).Code)

	record := petRecord("p-1", "o-1", "Rex", 40).Pet
	record.Vaccinations = []string{"rabies"}
	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertPet(ctx, testTenantID, record).Code)
	require.Equal(t, domain.OutcomeUnchanged, h.writer.UpsertPet(ctx, testTenantID, record).Code)

	record.Vaccinations = []string{"rabies", "bordetella"}
	require.Equal(t, domain.OutcomeUpdated, h.writer.UpsertPet(ctx, testTenantID, record).Code)

	id, err := h.mapper.Resolve(ctx, testTenantID, "p-1", domain.KindPet)
	require.NoError(t, err)
	pet, err := h.pets.GetByID(ctx, testTenantID, id)
	require.NoError(t, err)
	require.Equal(t, []string{"rabies", "bordetella"}, pet.VaccinationTags)
}

func TestWriterReservationAssignsResource(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedResource(t, "r-small", "Suite 1", boarding.CategorySmall)
	h.seedOwnerAndPet(t, "o-1", "p-1", 10)

	record := reservationRecord("b-1", "o-1", "p-1", "boarding", "2026-06-01", "2026-06-03", "confirmed").Reservation
	outcome := h.writer.UpsertReservation(ctx, testTenantID, record)
	require.Equal(t, domain.OutcomeCreated, outcome.Code, outcome.Reason)

	reservation := h.reservationByExternalID(t, "b-1")
	require.Equal(t, "r-small", reservation.ResourceID)
	require.Equal(t, boarding.StatusConfirmed, reservation.Status)
	require.Equal(t, boarding.KindOvernight, reservation.Kind)
	require.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), reservation.Start)
	require.Equal(t, time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC), reservation.End)
}

func TestWriterReservationSecondRunUnchanged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedResource(t, "r-small", "Suite 1", boarding.CategorySmall)
	h.seedOwnerAndPet(t, "o-1", "p-1", 10)
	record := reservationRecord("b-1", "o-1", "p-1", "boarding", "2026-06-01", "2026-06-03", "confirmed").Reservation

	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertReservation(ctx, testTenantID, record).Code)
	require.Equal(t, domain.OutcomeUnchanged, h.writer.UpsertReservation(ctx, testTenantID, record).Code)

	reservation := h.reservationByExternalID(t, "b-1")
	require.Equal(t, "r-small", reservation.ResourceID)
}

func TestWriterReservationNoCapacityThenRetry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedResource(t, "r-1", "Suite 1", boarding.CategorySmall)
	h.seedOwnerAndPet(t, "o-1", "p-1", 10)
	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertPet(ctx, testTenantID, petRecord("p-2", "o-1", "Fido", 12).Pet).Code)

	first := reservationRecord("b-1", "o-1", "p-1", "boarding", "2026-06-01", "2026-06-03", "confirmed").Reservation
	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertReservation(ctx, testTenantID, first).Code)

	second := reservationRecord("b-2", "o-1", "p-2", "boarding", "2026-06-02", "2026-06-04", "confirmed").Reservation
	outcome := h.writer.UpsertReservation(ctx, testTenantID, second)
	require.Equal(t, domain.OutcomeSkipped, outcome.Code)
	require.Equal(t, "no capacity", outcome.Reason)

	// Persisted unassigned for manual resolution.
	reservation := h.reservationByExternalID(t, "b-2")
	require.Empty(t, reservation.ResourceID)

	// The slot frees up once the first stay is cancelled.
	cancelled := *first
	cancelled.Status = "cancelled"
	require.Equal(t, domain.OutcomeUpdated, h.writer.UpsertReservation(ctx, testTenantID, &cancelled).Code)

	require.Equal(t, domain.OutcomeUpdated, h.writer.UpsertReservation(ctx, testTenantID, second).Code)
	reservation = h.reservationByExternalID(t, "b-2")
	require.Equal(t, "r-1", reservation.ResourceID)
}

func TestWriterReservationMalformedDateErrors(t *testing.T) {
	h := newHarness(t)
	h.seedOwnerAndPet(t, "o-1", "p-1", 10)

	record := reservationRecord("b-1", "o-1", "p-1", "boarding", "June 1st", "2026-06-03", "confirmed").Reservation
	outcome := h.writer.UpsertReservation(context.Background(), testTenantID, record)
	require.Equal(t, domain.OutcomeErrored, outcome.Code)
	require.Contains(t, outcome.Reason, "start date")
}

func TestWriterReservationUnknownStatusErrors(t *testing.T) {
	h := newHarness(t)
	h.seedOwnerAndPet(t, "o-1", "p-1", 10)

	record := reservationRecord("b-1", "o-1", "p-1", "boarding", "2026-06-01", "2026-06-03", "teleported").Reservation
	outcome := h.writer.UpsertReservation(context.Background(), testTenantID, record)
	require.Equal(t, domain.OutcomeErrored, outcome.Code)
	require.Contains(t, outcome.Reason, "teleported")
}

func TestWriterReservationUnmappedPetErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertCustomer(ctx, testTenantID, ownerRecord("o-1", "Ann", "Smith").Customer).Code)

	record := reservationRecord("b-1", "o-1", "p-missing", "boarding", "2026-06-01", "2026-06-03", "confirmed").Reservation
	outcome := h.writer.UpsertReservation(ctx, testTenantID, record)
	require.Equal(t, domain.OutcomeErrored, outcome.Code)
	require.Contains(t, outcome.Reason, "p-missing")
}

func TestWriterCancelledReservationSkipsAllocation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedResource(t, "r-1", "Suite 1", boarding.CategorySmall)
	h.seedOwnerAndPet(t, "o-1", "p-1", 10)

	record := reservationRecord("b-1", "o-1", "p-1", "boarding", "2026-06-01", "2026-06-03", "cancelled").Reservation
	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertReservation(ctx, testTenantID, record).Code)

	reservation := h.reservationByExternalID(t, "b-1")
	require.Empty(t, reservation.ResourceID)
	require.Equal(t, boarding.StatusCancelled, reservation.Status)
}

func TestWriterReservationKeepsAssignmentWhenStillFree(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedResource(t, "r-1", "Suite 1", boarding.CategorySmall)
	h.seedResource(t, "r-2", "Suite 2", boarding.CategorySmall)
	h.seedOwnerAndPet(t, "o-1", "p-1", 10)

	record := reservationRecord("b-1", "o-1", "p-1", "boarding", "2026-06-01", "2026-06-03", "confirmed").Reservation
	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertReservation(ctx, testTenantID, record).Code)
	assigned := h.reservationByExternalID(t, "b-1").ResourceID

	// Reschedule to a longer stay; the original room is still free so the
	// assignment must not churn.
	record.EndDate = "2026-06-05"
	require.Equal(t, domain.OutcomeUpdated, h.writer.UpsertReservation(ctx, testTenantID, record).Code)
	require.Equal(t, assigned, h.reservationByExternalID(t, "b-1").ResourceID)
}

func TestWriterReservationsNeverOverlapOnSameResource(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedResource(t, "r-1", "Suite 1", boarding.CategorySmall)
	h.seedResource(t, "r-2", "Suite 2", boarding.CategoryMedium)
	h.seedOwnerAndPet(t, "o-1", "p-1", 10)
	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertPet(ctx, testTenantID, petRecord("p-2", "o-1", "Fido", 12).Pet).Code)
	require.Equal(t, domain.OutcomeCreated, h.writer.UpsertPet(ctx, testTenantID, petRecord("p-3", "o-1", "Bella", 14).Pet).Code)

	records := []*domain.ExternalReservation{
		reservationRecord("b-1", "o-1", "p-1", "boarding", "2026-06-01", "2026-06-03", "confirmed").Reservation,
		reservationRecord("b-2", "o-1", "p-2", "boarding", "2026-06-02", "2026-06-04", "confirmed").Reservation,
		reservationRecord("b-3", "o-1", "p-3", "boarding", "2026-06-02", "2026-06-03", "confirmed").Reservation,
	}
	codes := make([]domain.OutcomeCode, 0, len(records))
	for _, record := range records {
		codes = append(codes, h.writer.UpsertReservation(ctx, testTenantID, record).Code)
	}
	require.Equal(t, []domain.OutcomeCode{domain.OutcomeCreated, domain.OutcomeCreated, domain.OutcomeSkipped}, codes)

	all := h.reservations.All()
	for i, a := range all {
		for _, b := range all[i+1:] {
			require.Falsef(t, a.ConflictsWith(b), "reservations %s and %s overlap on %s", a.ExternalID, b.ExternalID, a.ResourceID)
		}
	}
}
