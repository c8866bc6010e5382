// Package gingr adapts the Gingr REST client to the sync engine's external
// directory port.
package gingr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	api "github.com/tailtown/gingrsync/internal/clients/gingr"
	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/ports"
)

var (
	_ ports.Directory         = (*Directory)(nil)
	_ ports.DirectoryProvider = (*Provider)(nil)
)

var collections = map[domain.EntityKind]string{
	domain.KindCustomer:    api.CollectionOwners,
	domain.KindPet:         api.CollectionAnimals,
	domain.KindReservation: api.CollectionReservations,
}

// Directory reads one tenant's Gingr account through the API client.
type Directory struct {
	client *api.Client
}

func NewDirectory(client *api.Client) *Directory {
	return &Directory{client: client}
}

// FetchPage pulls one page of a collection and decodes each record into its
// normalized shape. A record that fails to decode keeps its id but carries
// no payload, so the writer reports it as a per-record error instead of the
// whole page failing.
func (d *Directory) FetchPage(ctx context.Context, kind domain.EntityKind, offset, limit int) (ports.RecordPage, error) {
	collection, ok := collections[kind]
	if !ok {
		return ports.RecordPage{}, fmt.Errorf("no gingr collection for entity kind %q", kind)
	}
	page, err := d.client.FetchPage(ctx, collection, offset, limit)
	if err != nil {
		return ports.RecordPage{}, err
	}
	out := ports.RecordPage{
		Records: make([]domain.ExternalRecord, 0, len(page.Records)),
		Total:   page.Total,
		Done:    page.Done,
	}
	for _, record := range page.Records {
		out.Records = append(out.Records, decodeRecord(kind, record))
	}
	return out, nil
}

// FetchPetDetail pulls the per-animal record carrying the immunization list.
func (d *Directory) FetchPetDetail(ctx context.Context, externalID string) (*domain.ExternalPet, error) {
	record, err := d.client.FetchOne(ctx, api.CollectionAnimals, externalID)
	if errors.Is(err, api.ErrNotFound) {
		return nil, ports.ErrExternalNotFound
	}
	if err != nil {
		return nil, err
	}
	var detail api.AnimalDetail
	if err := json.Unmarshal(record.Payload, &detail); err != nil {
		return nil, fmt.Errorf("decode animal %s detail: %w", externalID, err)
	}
	pet := animalToExternal(detail.Animal)
	pet.Vaccinations = make([]string, 0, len(detail.Immunizations))
	for _, immunization := range detail.Immunizations {
		pet.Vaccinations = append(pet.Vaccinations, immunization.Name)
	}
	return &pet, nil
}

func decodeRecord(kind domain.EntityKind, record api.Record) domain.ExternalRecord {
	out := domain.ExternalRecord{Kind: kind, ExternalID: record.ID}
	switch kind {
	case domain.KindCustomer:
		var owner api.Owner
		if json.Unmarshal(record.Payload, &owner) == nil && owner.ID != "" {
			out.Customer = &domain.ExternalCustomer{
				ExternalID: owner.ID,
				FirstName:  owner.FirstName,
				LastName:   owner.LastName,
				Email:      owner.Email,
				Phone:      owner.Phone,
			}
		}
	case domain.KindPet:
		var animal api.Animal
		if json.Unmarshal(record.Payload, &animal) == nil && animal.ID != "" {
			pet := animalToExternal(animal)
			out.Pet = &pet
		}
	case domain.KindReservation:
		var reservation api.Reservation
		if json.Unmarshal(record.Payload, &reservation) == nil && reservation.ID != "" {
			out.Reservation = &domain.ExternalReservation{
				ExternalID:       reservation.ID,
				OwnerExternalID:  reservation.OwnerID,
				AnimalExternalID: reservation.AnimalID,
				Type:             reservation.Type,
				StartDate:        reservation.StartDate,
				EndDate:          reservation.EndDate,
				Status:           reservation.Status,
				ResourceName:     reservation.ResourceName,
			}
		}
	}
	return out
}

func animalToExternal(animal api.Animal) domain.ExternalPet {
	return domain.ExternalPet{
		ExternalID:      animal.ID,
		OwnerExternalID: animal.OwnerID,
		Name:            animal.Name,
		Breed:           animal.Breed,
		WeightLbs:       animal.WeightLbs,
	}
}

// defaultBaseURLFormat expands a tenant subdomain into its API root.
const defaultBaseURLFormat = "https://%s.gingrapp.com/api/v1"

// Provider builds a Directory bound to one tenant's subdomain and API key.
type Provider struct {
	httpClient    *http.Client
	clientConfig  api.Config
	baseURLFormat string
}

// ProviderOption customizes the provider.
type ProviderOption func(*Provider)

// WithHTTPClient shares an HTTP client across tenant directories.
func WithHTTPClient(hc *http.Client) ProviderOption {
	return func(p *Provider) { p.httpClient = hc }
}

// WithClientConfig overrides the timeout, retry, and rate-limit defaults
// applied to every tenant client. BaseURL and APIKey are filled per tenant.
func WithClientConfig(cfg api.Config) ProviderOption {
	return func(p *Provider) { p.clientConfig = cfg }
}

// WithBaseURLFormat overrides the subdomain expansion, used to point the
// provider at a test server.
func WithBaseURLFormat(format string) ProviderOption {
	return func(p *Provider) { p.baseURLFormat = format }
}

func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{baseURLFormat: defaultBaseURLFormat}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) DirectoryFor(tenant domain.Tenant) (ports.Directory, error) {
	if tenant.Subdomain == "" {
		return nil, fmt.Errorf("tenant %s has no subdomain", tenant.ID)
	}
	cfg := p.clientConfig
	cfg.BaseURL = fmt.Sprintf(p.baseURLFormat, tenant.Subdomain)
	cfg.APIKey = tenant.APIKey
	client, err := api.New(cfg, p.httpClient)
	if err != nil {
		return nil, fmt.Errorf("build gingr client for tenant %s: %w", tenant.ID, err)
	}
	return NewDirectory(client), nil
}
