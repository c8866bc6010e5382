package domain

// ExternalRecord is one record pulled from the remote booking system,
// produced and consumed within a single batch iteration. Exactly one of
// the typed payloads is set, matching Kind. Date and status fields stay in
// their raw wire form; the reconciliation writer parses them so a malformed
// value surfaces as a per-record error instead of poisoning the page fetch.
type ExternalRecord struct {
	Kind        EntityKind
	ExternalID  string
	Customer    *ExternalCustomer
	Pet         *ExternalPet
	Reservation *ExternalReservation
}

// ExternalCustomer is a normalized owner record from the remote system.
type ExternalCustomer struct {
	ExternalID string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
}

// ExternalPet is a normalized animal record. Vaccinations come from the
// per-animal detail endpoint and may be empty when the detail fetch was
// skipped.
type ExternalPet struct {
	ExternalID      string
	OwnerExternalID string
	Name            string
	Breed           string
	WeightLbs       float64
	Vaccinations    []string
}

// ExternalReservation is a reservation record as the remote system reports
// it. StartDate/EndDate are raw ISO-8601 strings; Type and Status carry the
// remote vocabulary.
type ExternalReservation struct {
	ExternalID       string
	OwnerExternalID  string
	AnimalExternalID string
	Type             string
	StartDate        string
	EndDate          string
	Status           string
	ResourceName     string
}
