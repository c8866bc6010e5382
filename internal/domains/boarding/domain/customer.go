package domain

import (
	"errors"
	"strings"
)

// Customer is an owner account scoped to a tenant. The external identifier
// links back to the booking provider the record was imported from; Notes is
// owned by the local application and never touched by imports.
type Customer struct {
	ID         string
	TenantID   string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	ExternalID string
	Notes      string
}

var (
	ErrMissingTenant       = errors.New("tenant id is required")
	ErrMissingCustomerName = errors.New("customer requires a first or last name")
)

// NewCustomer validates the invariants and builds a new Customer aggregate.
func NewCustomer(tenantID, firstName, lastName string) (*Customer, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, ErrMissingTenant
	}
	c := &Customer{TenantID: tenantID}
	if err := c.Rename(firstName, lastName); err != nil {
		return nil, err
	}
	return c, nil
}

// Rename mutates the customer name ensuring at least one part is present.
func (c *Customer) Rename(firstName, lastName string) error {
	if strings.TrimSpace(firstName) == "" && strings.TrimSpace(lastName) == "" {
		return ErrMissingCustomerName
	}
	c.FirstName = strings.TrimSpace(firstName)
	c.LastName = strings.TrimSpace(lastName)
	return nil
}

// UpdateContact replaces the externally sourced contact fields.
func (c *Customer) UpdateContact(email, phone string) {
	c.Email = strings.TrimSpace(email)
	c.Phone = strings.TrimSpace(phone)
}

// FullName renders the display name used in summaries.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
