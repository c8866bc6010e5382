package domain

import (
	"errors"
	"time"
)

// Status represents the lifecycle state of a reservation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusCheckedIn  Status = "checked_in"
	StatusCheckedOut Status = "checked_out"
	StatusCancelled  Status = "cancelled"
)

// IsActive reports whether a reservation in this status occupies its
// resource. Only active reservations participate in the overlap invariant.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn:
		return true
	default:
		return false
	}
}

// Kind distinguishes daycare visits from overnight boarding stays.
type Kind string

const (
	KindDaycare   Kind = "daycare"
	KindOvernight Kind = "overnight"
)

// Interval is a half-open [Start, End) time window.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. An interval
// ending exactly when another begins does not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

// Reservation occupies one resource for a half-open time window. The
// overlap invariant: no two active reservations on the same resource may
// have intersecting windows.
type Reservation struct {
	ID         string
	TenantID   string
	CustomerID string
	PetID      string
	ResourceID string
	Start      time.Time
	End        time.Time
	Status     Status
	Kind       Kind
	ExternalID string
	Notes      string
}

var (
	ErrInvalidWindow = errors.New("reservation end must be after start")
	ErrUnknownStatus = errors.New("unknown reservation status")
)

// NewReservation validates the invariants and builds a new Reservation.
// The resource assignment is left empty; the allocator decides it.
func NewReservation(tenantID, customerID, petID string, start, end time.Time) (*Reservation, error) {
	if tenantID == "" {
		return nil, ErrMissingTenant
	}
	r := &Reservation{
		TenantID:   tenantID,
		CustomerID: customerID,
		PetID:      petID,
		Status:     StatusPending,
		Kind:       KindOvernight,
	}
	if err := r.Reschedule(start, end); err != nil {
		return nil, err
	}
	return r, nil
}

// Reschedule replaces the time window ensuring it stays well-formed.
func (r *Reservation) Reschedule(start, end time.Time) error {
	if !end.After(start) {
		return ErrInvalidWindow
	}
	r.Start = start
	r.End = end
	return nil
}

// UpdateStatus validates known lifecycle values.
func (r *Reservation) UpdateStatus(status Status) error {
	switch status {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
		r.Status = status
		return nil
	default:
		return ErrUnknownStatus
	}
}

// Assign commits a resource choice onto the reservation.
func (r *Reservation) Assign(resourceID string) {
	r.ResourceID = resourceID
}

// Unassign clears the resource, leaving the reservation for manual review.
func (r *Reservation) Unassign() {
	r.ResourceID = ""
}

// Window returns the reservation's half-open interval.
func (r *Reservation) Window() Interval {
	return Interval{Start: r.Start, End: r.End}
}

// ConflictsWith reports whether two reservations violate the overlap
// invariant: same resource, both active, intersecting windows.
func (r *Reservation) ConflictsWith(other *Reservation) bool {
	if other == nil || r.ID == other.ID {
		return false
	}
	if r.ResourceID == "" || r.ResourceID != other.ResourceID {
		return false
	}
	if !r.Status.IsActive() || !other.Status.IsActive() {
		return false
	}
	return r.Window().Overlaps(other.Window())
}
