package gingr

import "encoding/json"

// Collection names exposed by the Gingr v1 API.
const (
	CollectionOwners       = "owners"
	CollectionAnimals      = "animals"
	CollectionReservations = "reservations"
)

// Record is one item from a collection page. The payload stays raw so the
// sync adapter can decode it per collection; the client only needs the id.
type Record struct {
	ID      string
	Payload json.RawMessage
}

// Page is one slice of a paginated collection.
type Page struct {
	Records []Record
	Offset  int
	Total   int
	Done    bool
}

// Owner is the wire shape of a Gingr owner record.
type Owner struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phoneNumber"`
}

// Animal is the wire shape of a Gingr animal record.
type Animal struct {
	ID        string  `json:"id"`
	OwnerID   string  `json:"ownerId"`
	Name      string  `json:"name"`
	Breed     string  `json:"breed"`
	WeightLbs float64 `json:"weight"`
}

// AnimalDetail is the per-animal detail payload carrying medical
// sub-resources.
type AnimalDetail struct {
	Animal
	Immunizations []Immunization `json:"immunizations"`
}

// Immunization is a single vaccination entry on an animal detail record.
type Immunization struct {
	Name    string `json:"name"`
	Expires string `json:"expires"`
}

// Reservation is the wire shape of a Gingr reservation record.
type Reservation struct {
	ID           string `json:"id"`
	OwnerID      string `json:"ownerId"`
	AnimalID     string `json:"animalId"`
	ResourceID   string `json:"resourceId"`
	ResourceName string `json:"resourceName"`
	Type         string `json:"type"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Status       string `json:"status"`
}

// envelope is the common response wrapper: a data object keyed by the
// collection name plus pagination metadata.
type envelope struct {
	Data       map[string][]json.RawMessage `json:"data"`
	Pagination struct {
		Offset     int `json:"offset"`
		Limit      int `json:"limit"`
		TotalCount int `json:"totalCount"`
	} `json:"pagination"`
}

// detailEnvelope wraps single-record responses.
type detailEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// recordID extracts the id field every Gingr record carries.
func recordID(payload json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return ""
	}
	return probe.ID
}
