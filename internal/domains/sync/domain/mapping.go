package domain

import (
	"errors"
	"time"
)

// EntityKind names the entity families the sync engine reconciles.
type EntityKind string

const (
	KindCustomer    EntityKind = "customer"
	KindPet         EntityKind = "pet"
	KindReservation EntityKind = "reservation"
)

// EntityMapping links an external record identifier to the internal entity
// it was reconciled into. Unique per (TenantID, ExternalID, Kind).
type EntityMapping struct {
	TenantID   string
	ExternalID string
	Kind       EntityKind
	InternalID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var (
	// ErrUnmapped signals no mapping exists for the external id. Callers
	// decide whether to create a new internal entity; the mapper never
	// invents one.
	ErrUnmapped = errors.New("external id is not mapped")
	// ErrConflictingMapping signals the same external id resolves to more
	// than one internal entity, a condition requiring manual review.
	ErrConflictingMapping = errors.New("external id has conflicting mappings")
	// ErrMappingExists signals an attempt to silently repoint a mapping to
	// a different internal id. Use an explicit remap instead.
	ErrMappingExists = errors.New("external id is already mapped to a different entity")
)
