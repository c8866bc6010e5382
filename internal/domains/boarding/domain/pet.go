package domain

import (
	"errors"
	"strings"
)

// Pet is an animal belonging to a customer. WeightLbs of zero means the
// weight is unknown; size classification falls back to medium in that case.
type Pet struct {
	ID              string
	TenantID        string
	CustomerID      string
	Name            string
	Breed           string
	WeightLbs       float64
	VaccinationTags []string
	ExternalID      string
	Notes           string
}

var (
	ErrEmptyPetName  = errors.New("pet name is required")
	ErrMissingOwner  = errors.New("pet requires an owner")
	ErrInvalidWeight = errors.New("pet weight must be greater or equal to zero")
)

// NewPet validates the invariants and builds a new Pet aggregate.
func NewPet(tenantID, customerID, name string) (*Pet, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrMissingTenant
	}
	p := &Pet{TenantID: tenantID}
	if err := p.AssignOwner(customerID); err != nil {
		return nil, err
	}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename mutates the pet name ensuring the invariant.
func (p *Pet) Rename(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyPetName
	}
	p.Name = strings.TrimSpace(name)
	return nil
}

// AssignOwner links the pet to its customer.
func (p *Pet) AssignOwner(customerID string) error {
	if strings.TrimSpace(customerID) == "" {
		return ErrMissingOwner
	}
	p.CustomerID = customerID
	return nil
}

// UpdateWeight stores the latest known weight measurement.
func (p *Pet) UpdateWeight(lbs float64) error {
	if lbs < 0 {
		return ErrInvalidWeight
	}
	p.WeightLbs = lbs
	return nil
}

// ReplaceVaccinations swaps the current vaccination tag set.
func (p *Pet) ReplaceVaccinations(tags []string) {
	p.VaccinationTags = append([]string{}, tags...)
}
