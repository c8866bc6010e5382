package ports

import (
	"context"
	"errors"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
)

// ErrExternalNotFound signals the remote system has no such record.
var ErrExternalNotFound = errors.New("external record not found")

// RecordPage is one slice of a paginated external collection.
type RecordPage struct {
	Records []domain.ExternalRecord
	Total   int
	Done    bool
}

// Directory reads records from the remote booking system for one tenant.
// Implementations own authentication, rate limiting, and retry; an error
// returned here means retries are already exhausted.
type Directory interface {
	FetchPage(ctx context.Context, kind domain.EntityKind, offset, limit int) (RecordPage, error)
	// FetchPetDetail pulls the per-animal detail record carrying the
	// medical sub-resources.
	FetchPetDetail(ctx context.Context, externalID string) (*domain.ExternalPet, error)
}

// DirectoryProvider builds a Directory bound to a tenant's credentials.
type DirectoryProvider interface {
	DirectoryFor(tenant domain.Tenant) (Directory, error)
}
