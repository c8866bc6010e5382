package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/ports"
)

// SyncService orchestrates a full tenant import: customers, then pets, then
// reservations. The order is strict because each stage resolves mappings the
// previous one established; a stage that fails fatally stops the run so later
// stages never see missing prerequisites.
type SyncService struct {
	tenants     ports.TenantDirectory
	providers   ports.DirectoryProvider
	checkpoints ports.CheckpointStore
	writer      *Writer
	batchSize   int
	logger      *slog.Logger
}

// ServiceOption customizes the sync service.
type ServiceOption func(*SyncService)

// WithBatchSize overrides the page size used when fetching external records.
func WithBatchSize(size int) ServiceOption {
	return func(s *SyncService) { s.batchSize = size }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *SyncService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSyncService wires the orchestrator.
func NewSyncService(
	tenants ports.TenantDirectory,
	providers ports.DirectoryProvider,
	checkpoints ports.CheckpointStore,
	writer *Writer,
	opts ...ServiceOption,
) *SyncService {
	s := &SyncService{
		tenants:     tenants,
		providers:   providers,
		checkpoints: checkpoints,
		writer:      writer,
		batchSize:   defaultBatchSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.Service = (*SyncService)(nil)

// SyncTenant runs a full import for one tenant. An explicit tenant id runs
// even when the tenant is disabled; the enabled flag only gates
// SyncAllEnabled. The returned Result is populated for the stages that ran
// even when the run fails partway.
func (s *SyncService) SyncTenant(ctx context.Context, tenantID string) (domain.Result, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return domain.Result{TenantID: tenantID}, fmt.Errorf("look up tenant %s: %w", tenantID, err)
	}
	result := domain.Result{TenantID: tenant.ID, TenantName: tenant.Name}

	directory, err := s.providers.DirectoryFor(*tenant)
	if err != nil {
		result.Failed = true
		result.FailureReason = err.Error()
		return result, fmt.Errorf("build directory for tenant %s: %w", tenant.ID, err)
	}

	processor := NewProcessor(directory, s.checkpoints, s.batchSize)
	s.logger.Info("tenant sync started", slog.String("tenant", tenant.ID), slog.String("name", tenant.Name))

	stages := []struct {
		kind    domain.EntityKind
		process ProcessBatch
		target  *domain.Stats
	}{
		{domain.KindCustomer, s.customerBatch(tenant.ID), &result.Customers},
		{domain.KindPet, s.petBatch(tenant.ID, directory), &result.Pets},
		{domain.KindReservation, s.reservationBatch(tenant.ID), &result.Reservations},
	}
	for _, stage := range stages {
		stats, err := processor.Run(ctx, tenant.ID, stage.kind, stage.process)
		*stage.target = stats
		if err != nil {
			result.Failed = true
			result.FailureReason = err.Error()
			s.logger.Error("tenant sync stage failed",
				slog.String("tenant", tenant.ID),
				slog.String("stage", string(stage.kind)),
				slog.String("error", err.Error()))
			return result, &StageError{TenantID: tenant.ID, Stage: stage.kind, Err: err}
		}
		s.logger.Info("tenant sync stage finished",
			slog.String("tenant", tenant.ID),
			slog.String("stage", string(stage.kind)),
			slog.Int("created", stats.Created),
			slog.Int("updated", stats.Updated),
			slog.Int("unchanged", stats.Unchanged),
			slog.Int("skipped", stats.Skipped),
			slog.Int("errored", stats.Errored))
	}

	s.logger.Info("tenant sync finished", slog.String("tenant", tenant.ID), slog.Bool("clean", result.Clean()))
	return result, nil
}

// SyncAllEnabled syncs every enabled tenant sequentially. One tenant's fatal
// failure is recorded in its Result and does not stop the others; only
// cancellation aborts the sweep.
func (s *SyncService) SyncAllEnabled(ctx context.Context) ([]domain.Result, error) {
	tenants, err := s.tenants.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("list enabled tenants: %w", err)
	}

	results := make([]domain.Result, 0, len(tenants))
	for _, tenant := range tenants {
		result, err := s.SyncTenant(ctx, tenant.ID)
		results = append(results, result)
		if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			return results, err
		}
	}
	return results, nil
}

func (s *SyncService) customerBatch(tenantID string) ProcessBatch {
	return func(ctx context.Context, records []domain.ExternalRecord) domain.Stats {
		var stats domain.Stats
		for _, record := range records {
			if record.Customer == nil {
				stats.Apply(domain.Errored(fmt.Sprintf("record %s: not a customer payload", record.ExternalID)))
				continue
			}
			stats.Apply(s.writer.UpsertCustomer(ctx, tenantID, record.Customer))
		}
		return stats
	}
}

// petBatch enriches each animal with its detail record before writing; the
// detail endpoint carries the immunization history the list endpoint omits.
// A missing detail record downgrades to an import without vaccination tags.
func (s *SyncService) petBatch(tenantID string, directory ports.Directory) ProcessBatch {
	return func(ctx context.Context, records []domain.ExternalRecord) domain.Stats {
		var stats domain.Stats
		for _, record := range records {
			if record.Pet == nil {
				stats.Apply(domain.Errored(fmt.Sprintf("record %s: not a pet payload", record.ExternalID)))
				continue
			}
			pet := record.Pet
			detail, err := directory.FetchPetDetail(ctx, pet.ExternalID)
			switch {
			case errors.Is(err, ports.ErrExternalNotFound):
				s.logger.Warn("pet detail missing, importing without vaccinations",
					slog.String("tenant", tenantID), slog.String("pet", pet.ExternalID))
			case err != nil:
				stats.Apply(domain.Errored(fmt.Sprintf("pet %s: fetch detail: %v", pet.ExternalID, err)))
				continue
			default:
				enriched := *pet
				enriched.Vaccinations = detail.Vaccinations
				pet = &enriched
			}
			stats.Apply(s.writer.UpsertPet(ctx, tenantID, pet))
		}
		return stats
	}
}

func (s *SyncService) reservationBatch(tenantID string) ProcessBatch {
	return func(ctx context.Context, records []domain.ExternalRecord) domain.Stats {
		var stats domain.Stats
		for _, record := range records {
			if record.Reservation == nil {
				stats.Apply(domain.Errored(fmt.Sprintf("record %s: not a reservation payload", record.ExternalID)))
				continue
			}
			stats.Apply(s.writer.UpsertReservation(ctx, tenantID, record.Reservation))
		}
		return stats
	}
}
