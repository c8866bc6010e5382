package application

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	boarding "github.com/tailtown/gingrsync/internal/domains/boarding/domain"
	boardingports "github.com/tailtown/gingrsync/internal/domains/boarding/ports"
	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
)

// maxCommitAttempts bounds how often a reservation commit re-invokes the
// allocator after a commit-time conflict before giving up on assignment.
const maxCommitAttempts = 3

// Writer performs idempotent upserts of mapped entities. Only fields
// sourced from the external system are overwritten; locally owned fields
// (internal notes) are preserved. Reservation commits re-validate the
// no-overlap invariant against the latest committed state and re-allocate
// on conflict rather than committing blindly.
type Writer struct {
	customers    boardingports.CustomerRepository
	pets         boardingports.PetRepository
	reservations boardingports.ReservationRepository
	resources    boardingports.ResourceRepository
	mapper       *Mapper
	policy       boarding.Policy
}

// NewWriter wires the reconciliation writer with its dependencies.
func NewWriter(
	customers boardingports.CustomerRepository,
	pets boardingports.PetRepository,
	reservations boardingports.ReservationRepository,
	resources boardingports.ResourceRepository,
	mapper *Mapper,
	policy boarding.Policy,
) *Writer {
	return &Writer{
		customers:    customers,
		pets:         pets,
		reservations: reservations,
		resources:    resources,
		mapper:       mapper,
		policy:       policy,
	}
}

// UpsertCustomer reconciles one external owner record.
func (w *Writer) UpsertCustomer(ctx context.Context, tenantID string, rec *domain.ExternalCustomer) domain.Outcome {
	if rec == nil || strings.TrimSpace(rec.ExternalID) == "" {
		return domain.Errored("customer record missing external id")
	}
	internalID, err := w.mapper.Resolve(ctx, tenantID, rec.ExternalID, domain.KindCustomer)
	switch {
	case errors.Is(err, domain.ErrUnmapped):
		return w.createCustomer(ctx, tenantID, rec, false)
	case errors.Is(err, domain.ErrConflictingMapping):
		return domain.Errored(fmt.Sprintf("customer %s: conflicting mappings, manual review required", rec.ExternalID))
	case err != nil:
		return domain.Errored(fmt.Sprintf("customer %s: resolve mapping: %v", rec.ExternalID, err))
	}

	existing, err := w.customers.GetByID(ctx, tenantID, internalID)
	if errors.Is(err, boardingports.ErrNotFound) {
		// The internal entity was deleted out from under the mapping;
		// recreate it and repoint.
		return w.createCustomer(ctx, tenantID, rec, true)
	}
	if err != nil {
		return domain.Errored(fmt.Sprintf("customer %s: load: %v", rec.ExternalID, err))
	}

	desired := *existing
	if err := desired.Rename(rec.FirstName, rec.LastName); err != nil {
		return domain.Errored(fmt.Sprintf("customer %s: %v", rec.ExternalID, err))
	}
	desired.UpdateContact(rec.Email, rec.Phone)
	desired.ExternalID = rec.ExternalID
	if customerEqual(existing, &desired) {
		return domain.Unchanged()
	}
	if _, err := w.customers.Save(ctx, &desired); err != nil {
		return domain.Errored(fmt.Sprintf("customer %s: save: %v", rec.ExternalID, err))
	}
	return domain.Updated()
}

func (w *Writer) createCustomer(ctx context.Context, tenantID string, rec *domain.ExternalCustomer, remap bool) domain.Outcome {
	customer, err := boarding.NewCustomer(tenantID, rec.FirstName, rec.LastName)
	if err != nil {
		return domain.Errored(fmt.Sprintf("customer %s: %v", rec.ExternalID, err))
	}
	customer.UpdateContact(rec.Email, rec.Phone)
	customer.ExternalID = rec.ExternalID
	saved, err := w.customers.Save(ctx, customer)
	if err != nil {
		return domain.Errored(fmt.Sprintf("customer %s: save: %v", rec.ExternalID, err))
	}
	if remap {
		err = w.mapper.Remap(ctx, tenantID, rec.ExternalID, domain.KindCustomer, saved.ID)
	} else {
		err = w.mapper.Record(ctx, tenantID, rec.ExternalID, domain.KindCustomer, saved.ID)
	}
	if err != nil {
		return domain.Errored(fmt.Sprintf("customer %s: %v", rec.ExternalID, err))
	}
	return domain.Created()
}

// UpsertPet reconciles one external animal record. The owner must already
// be mapped; customers sync strictly before pets.
func (w *Writer) UpsertPet(ctx context.Context, tenantID string, rec *domain.ExternalPet) domain.Outcome {
	if rec == nil || strings.TrimSpace(rec.ExternalID) == "" {
		return domain.Errored("pet record missing external id")
	}
	ownerID, err := w.mapper.Resolve(ctx, tenantID, rec.OwnerExternalID, domain.KindCustomer)
	if err != nil {
		return domain.Errored(fmt.Sprintf("pet %s: owner %s not resolvable: %v", rec.ExternalID, rec.OwnerExternalID, err))
	}

	internalID, err := w.mapper.Resolve(ctx, tenantID, rec.ExternalID, domain.KindPet)
	switch {
	case errors.Is(err, domain.ErrUnmapped):
		return w.createPet(ctx, tenantID, ownerID, rec, false)
	case errors.Is(err, domain.ErrConflictingMapping):
		return domain.Errored(fmt.Sprintf("pet %s: conflicting mappings, manual review required", rec.ExternalID))
	case err != nil:
		return domain.Errored(fmt.Sprintf("pet %s: resolve mapping: %v", rec.ExternalID, err))
	}

	existing, err := w.pets.GetByID(ctx, tenantID, internalID)
	if errors.Is(err, boardingports.ErrNotFound) {
		return w.createPet(ctx, tenantID, ownerID, rec, true)
	}
	if err != nil {
		return domain.Errored(fmt.Sprintf("pet %s: load: %v", rec.ExternalID, err))
	}

	desired := *existing
	desired.VaccinationTags = append([]string{}, existing.VaccinationTags...)
	if err := applyPetFields(&desired, ownerID, rec); err != nil {
		return domain.Errored(fmt.Sprintf("pet %s: %v", rec.ExternalID, err))
	}
	if petEqual(existing, &desired) {
		return domain.Unchanged()
	}
	if _, err := w.pets.Save(ctx, &desired); err != nil {
		return domain.Errored(fmt.Sprintf("pet %s: save: %v", rec.ExternalID, err))
	}
	return domain.Updated()
}

func (w *Writer) createPet(ctx context.Context, tenantID, ownerID string, rec *domain.ExternalPet, remap bool) domain.Outcome {
	pet, err := boarding.NewPet(tenantID, ownerID, rec.Name)
	if err != nil {
		return domain.Errored(fmt.Sprintf("pet %s: %v", rec.ExternalID, err))
	}
	if err := applyPetFields(pet, ownerID, rec); err != nil {
		return domain.Errored(fmt.Sprintf("pet %s: %v", rec.ExternalID, err))
	}
	saved, err := w.pets.Save(ctx, pet)
	if err != nil {
		return domain.Errored(fmt.Sprintf("pet %s: save: %v", rec.ExternalID, err))
	}
	if remap {
		err = w.mapper.Remap(ctx, tenantID, rec.ExternalID, domain.KindPet, saved.ID)
	} else {
		err = w.mapper.Record(ctx, tenantID, rec.ExternalID, domain.KindPet, saved.ID)
	}
	if err != nil {
		return domain.Errored(fmt.Sprintf("pet %s: %v", rec.ExternalID, err))
	}
	return domain.Created()
}

func applyPetFields(pet *boarding.Pet, ownerID string, rec *domain.ExternalPet) error {
	if err := pet.Rename(rec.Name); err != nil {
		return err
	}
	if err := pet.AssignOwner(ownerID); err != nil {
		return err
	}
	if err := pet.UpdateWeight(rec.WeightLbs); err != nil {
		return err
	}
	pet.Breed = strings.TrimSpace(rec.Breed)
	pet.ReplaceVaccinations(rec.Vaccinations)
	pet.ExternalID = rec.ExternalID
	return nil
}

// UpsertReservation reconciles one external reservation record, assigning
// a resource through the allocator when the reservation is active. A
// reservation that cannot be placed is persisted unassigned and reported
// as skipped for manual resolution.
func (w *Writer) UpsertReservation(ctx context.Context, tenantID string, rec *domain.ExternalReservation) domain.Outcome {
	if rec == nil || strings.TrimSpace(rec.ExternalID) == "" {
		return domain.Errored("reservation record missing external id")
	}
	start, err := parseReservationTime(rec.StartDate)
	if err != nil {
		return domain.Errored(fmt.Sprintf("reservation %s: start date: %v", rec.ExternalID, err))
	}
	end, err := parseReservationTime(rec.EndDate)
	if err != nil {
		return domain.Errored(fmt.Sprintf("reservation %s: end date: %v", rec.ExternalID, err))
	}
	status, err := normalizeStatus(rec.Status)
	if err != nil {
		return domain.Errored(fmt.Sprintf("reservation %s: %v", rec.ExternalID, err))
	}
	customerID, err := w.mapper.Resolve(ctx, tenantID, rec.OwnerExternalID, domain.KindCustomer)
	if err != nil {
		return domain.Errored(fmt.Sprintf("reservation %s: owner %s not resolvable: %v", rec.ExternalID, rec.OwnerExternalID, err))
	}
	petID, err := w.mapper.Resolve(ctx, tenantID, rec.AnimalExternalID, domain.KindPet)
	if err != nil {
		return domain.Errored(fmt.Sprintf("reservation %s: pet %s not resolvable: %v", rec.ExternalID, rec.AnimalExternalID, err))
	}
	pet, err := w.pets.GetByID(ctx, tenantID, petID)
	if err != nil {
		return domain.Errored(fmt.Sprintf("reservation %s: load pet: %v", rec.ExternalID, err))
	}

	var existing *boarding.Reservation
	internalID, err := w.mapper.Resolve(ctx, tenantID, rec.ExternalID, domain.KindReservation)
	switch {
	case errors.Is(err, domain.ErrUnmapped):
		// First sight of this reservation.
	case errors.Is(err, domain.ErrConflictingMapping):
		return domain.Errored(fmt.Sprintf("reservation %s: conflicting mappings, manual review required", rec.ExternalID))
	case err != nil:
		return domain.Errored(fmt.Sprintf("reservation %s: resolve mapping: %v", rec.ExternalID, err))
	default:
		existing, err = w.reservations.GetByID(ctx, tenantID, internalID)
		if err != nil && !errors.Is(err, boardingports.ErrNotFound) {
			return domain.Errored(fmt.Sprintf("reservation %s: load: %v", rec.ExternalID, err))
		}
	}

	var desired *boarding.Reservation
	if existing != nil {
		clone := *existing
		desired = &clone
	} else {
		desired, err = boarding.NewReservation(tenantID, customerID, petID, start, end)
		if err != nil {
			return domain.Errored(fmt.Sprintf("reservation %s: %v", rec.ExternalID, err))
		}
	}
	if err := desired.Reschedule(start, end); err != nil {
		return domain.Errored(fmt.Sprintf("reservation %s: %v", rec.ExternalID, err))
	}
	if err := desired.UpdateStatus(status); err != nil {
		return domain.Errored(fmt.Sprintf("reservation %s: %v", rec.ExternalID, err))
	}
	desired.CustomerID = customerID
	desired.PetID = petID
	desired.Kind = normalizeKind(rec.Type)
	desired.ExternalID = rec.ExternalID

	assigned := true
	if desired.Status.IsActive() {
		assigned, err = w.assignResource(ctx, tenantID, desired, pet.WeightLbs)
		if err != nil {
			return domain.Errored(fmt.Sprintf("reservation %s: allocate: %v", rec.ExternalID, err))
		}
	}

	if existing != nil && reservationEqual(existing, desired) {
		if desired.Status.IsActive() && !assigned {
			return domain.Skipped("no capacity")
		}
		return domain.Unchanged()
	}

	saved, err := w.reservations.Save(ctx, desired)
	if err != nil {
		return domain.Errored(fmt.Sprintf("reservation %s: save: %v", rec.ExternalID, err))
	}
	if existing == nil {
		if err := w.mapper.Record(ctx, tenantID, rec.ExternalID, domain.KindReservation, saved.ID); err != nil {
			return domain.Errored(fmt.Sprintf("reservation %s: %v", rec.ExternalID, err))
		}
	}
	if desired.Status.IsActive() && !assigned {
		return domain.Skipped("no capacity")
	}
	if existing == nil {
		return domain.Created()
	}
	return domain.Updated()
}

// assignResource places the reservation on an overlap-free resource. The
// current assignment is kept when it is still conflict-free; otherwise the
// allocator picks from the ordered candidate list against a fresh occupancy
// snapshot, and the choice is re-validated against the latest committed
// state before being trusted. Returns false when no candidate can host the
// window, leaving the reservation unassigned.
func (w *Writer) assignResource(ctx context.Context, tenantID string, reservation *boarding.Reservation, weightLbs float64) (bool, error) {
	candidates, err := w.resources.ListActive(ctx, tenantID)
	if err != nil {
		return false, err
	}
	request := boarding.Request{
		Kind:      reservation.Kind,
		WeightLbs: weightLbs,
		Window:    reservation.Window(),
	}

	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		occupancy, err := w.occupancySnapshot(ctx, tenantID, reservation.Window(), reservation.ID)
		if err != nil {
			return false, err
		}
		if reservation.ResourceID != "" && occupancy.IsFree(reservation.ResourceID, reservation.Window()) {
			return true, nil
		}
		chosen, ok := boarding.Allocate(w.policy, request, candidates, occupancy)
		if !ok {
			reservation.Unassign()
			return false, nil
		}
		reservation.Assign(chosen.ID)

		// Optimistic re-check: another writer may have committed a
		// conflicting reservation between allocation and commit.
		latest, err := w.occupancySnapshot(ctx, tenantID, reservation.Window(), reservation.ID)
		if err != nil {
			return false, err
		}
		if latest.IsFree(chosen.ID, reservation.Window()) {
			return true, nil
		}
		reservation.Unassign()
	}
	return false, nil
}

// occupancySnapshot rebuilds the committed occupancy for the window,
// excluding the reservation being written so it never conflicts with its
// own previous assignment.
func (w *Writer) occupancySnapshot(ctx context.Context, tenantID string, window boarding.Interval, excludeID string) (boarding.Occupancy, error) {
	active, err := w.reservations.ListActiveOverlapping(ctx, tenantID, window)
	if err != nil {
		return nil, err
	}
	occupancy := boarding.Occupancy{}
	for _, reservation := range active {
		if reservation.ID == excludeID || reservation.ResourceID == "" {
			continue
		}
		occupancy.Add(reservation.ResourceID, reservation.Window())
	}
	return occupancy, nil
}

func customerEqual(a, b *boarding.Customer) bool {
	return a.FirstName == b.FirstName &&
		a.LastName == b.LastName &&
		a.Email == b.Email &&
		a.Phone == b.Phone &&
		a.ExternalID == b.ExternalID
}

func petEqual(a, b *boarding.Pet) bool {
	return a.CustomerID == b.CustomerID &&
		a.Name == b.Name &&
		a.Breed == b.Breed &&
		a.WeightLbs == b.WeightLbs &&
		a.ExternalID == b.ExternalID &&
		slices.Equal(a.VaccinationTags, b.VaccinationTags)
}

func reservationEqual(a, b *boarding.Reservation) bool {
	return a.CustomerID == b.CustomerID &&
		a.PetID == b.PetID &&
		a.ResourceID == b.ResourceID &&
		a.Start.Equal(b.Start) &&
		a.End.Equal(b.End) &&
		a.Status == b.Status &&
		a.Kind == b.Kind &&
		a.ExternalID == b.ExternalID
}

// parseReservationTime accepts the ISO-8601 shapes the remote API emits.
func parseReservationTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed date %q", value)
}

func normalizeKind(remoteType string) boarding.Kind {
	if strings.Contains(strings.ToLower(remoteType), "daycare") {
		return boarding.KindDaycare
	}
	return boarding.KindOvernight
}

func normalizeStatus(remoteStatus string) (boarding.Status, error) {
	switch strings.ToLower(strings.TrimSpace(remoteStatus)) {
	case "", "pending", "unconfirmed", "requested":
		return boarding.StatusPending, nil
	case "confirmed":
		return boarding.StatusConfirmed, nil
	case "checked_in", "checked in":
		return boarding.StatusCheckedIn, nil
	case "checked_out", "checked out":
		return boarding.StatusCheckedOut, nil
	case "cancelled", "canceled":
		return boarding.StatusCancelled, nil
	default:
		return "", fmt.Errorf("unknown status %q", remoteStatus)
	}
}
