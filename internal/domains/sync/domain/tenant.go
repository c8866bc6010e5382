package domain

// Tenant is an isolated business account. Subdomain and APIKey identify the
// tenant's space in the remote booking system; disabled tenants are skipped
// by the all-tenants entry point.
type Tenant struct {
	ID        string
	Name      string
	Subdomain string
	APIKey    string
	Enabled   bool
}
