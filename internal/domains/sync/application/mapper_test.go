package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	syncmem "github.com/tailtown/gingrsync/internal/domains/sync/adapters/memory"
	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
)

func TestMapperResolveUnmapped(t *testing.T) {
	mapper := NewMapper(syncmem.NewMappingStore())

	_, err := mapper.Resolve(context.Background(), testTenantID, "ext-1", domain.KindCustomer)
	require.ErrorIs(t, err, domain.ErrUnmapped)
}

func TestMapperRecordThenResolve(t *testing.T) {
	mapper := NewMapper(syncmem.NewMappingStore())
	ctx := context.Background()

	require.NoError(t, mapper.Record(ctx, testTenantID, "ext-1", domain.KindCustomer, "int-1"))

	id, err := mapper.Resolve(ctx, testTenantID, "ext-1", domain.KindCustomer)
	require.NoError(t, err)
	require.Equal(t, "int-1", id)
}

func TestMapperRecordIsIdempotentForSameInternalID(t *testing.T) {
	mapper := NewMapper(syncmem.NewMappingStore())
	ctx := context.Background()

	require.NoError(t, mapper.Record(ctx, testTenantID, "ext-1", domain.KindPet, "int-1"))
	require.NoError(t, mapper.Record(ctx, testTenantID, "ext-1", domain.KindPet, "int-1"))
}

func TestMapperRecordRejectsRepointing(t *testing.T) {
	mapper := NewMapper(syncmem.NewMappingStore())
	ctx := context.Background()

	require.NoError(t, mapper.Record(ctx, testTenantID, "ext-1", domain.KindPet, "int-1"))

	err := mapper.Record(ctx, testTenantID, "ext-1", domain.KindPet, "int-2")
	require.ErrorIs(t, err, domain.ErrMappingExists)
}

func TestMapperSurfacesConflictingMappings(t *testing.T) {
	store := syncmem.NewMappingStore()
	mapper := NewMapper(store)
	ctx := context.Background()

	require.NoError(t, mapper.Record(ctx, testTenantID, "ext-1", domain.KindCustomer, "int-1"))
	store.AddDuplicate(testTenantID, "ext-1", domain.KindCustomer, "int-2")

	_, err := mapper.Resolve(ctx, testTenantID, "ext-1", domain.KindCustomer)
	require.ErrorIs(t, err, domain.ErrConflictingMapping)
}

func TestMapperRemapRepoints(t *testing.T) {
	mapper := NewMapper(syncmem.NewMappingStore())
	ctx := context.Background()

	require.NoError(t, mapper.Record(ctx, testTenantID, "ext-1", domain.KindReservation, "int-1"))
	require.NoError(t, mapper.Remap(ctx, testTenantID, "ext-1", domain.KindReservation, "int-2"))

	id, err := mapper.Resolve(ctx, testTenantID, "ext-1", domain.KindReservation)
	require.NoError(t, err)
	require.Equal(t, "int-2", id)
}

func TestMapperScopesByKindAndTenant(t *testing.T) {
	mapper := NewMapper(syncmem.NewMappingStore())
	ctx := context.Background()

	require.NoError(t, mapper.Record(ctx, testTenantID, "ext-1", domain.KindCustomer, "int-1"))

	_, err := mapper.Resolve(ctx, testTenantID, "ext-1", domain.KindPet)
	require.ErrorIs(t, err, domain.ErrUnmapped)

	_, err = mapper.Resolve(ctx, "other-tenant", "ext-1", domain.KindCustomer)
	require.ErrorIs(t, err, domain.ErrUnmapped)
}
