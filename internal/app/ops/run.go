package ops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	boardingmem "github.com/tailtown/gingrsync/internal/domains/boarding/adapters/memory"
	boardingpg "github.com/tailtown/gingrsync/internal/domains/boarding/adapters/persistence/postgres"
	boarding "github.com/tailtown/gingrsync/internal/domains/boarding/domain"
	boardingports "github.com/tailtown/gingrsync/internal/domains/boarding/ports"
	gingrdir "github.com/tailtown/gingrsync/internal/domains/sync/adapters/external/gingr"
	syncmem "github.com/tailtown/gingrsync/internal/domains/sync/adapters/memory"
	syncobs "github.com/tailtown/gingrsync/internal/domains/sync/adapters/observability"
	syncpg "github.com/tailtown/gingrsync/internal/domains/sync/adapters/persistence/postgres"
	syncworkflowadapters "github.com/tailtown/gingrsync/internal/domains/sync/adapters/workflows"
	syncapp "github.com/tailtown/gingrsync/internal/domains/sync/application"
	syncports "github.com/tailtown/gingrsync/internal/domains/sync/ports"
	platformmigrations "github.com/tailtown/gingrsync/internal/platform/migrations"
	platformobservability "github.com/tailtown/gingrsync/internal/platform/observability"
	platformpostgres "github.com/tailtown/gingrsync/internal/platform/postgres"
)

// SyncStack bundles the wired sync service and its collaborators so the ops
// server, the worker, and the CLI share one construction path.
type SyncStack struct {
	Service     syncports.Service
	Tenants     syncports.TenantDirectory
	Checkpoints syncports.CheckpointStore
}

// BuildSyncStack wires repositories, stores, the external directory
// provider, and the reconciliation service. With no usable PostgreSQL
// connection everything runs on in-memory adapters, which only suits
// development.
func BuildSyncStack(ctx context.Context, cfg Config, instruments *platformobservability.Instruments) (*SyncStack, func(), error) {
	logger := effectiveLogger(instruments)

	var (
		db      *gorm.DB
		cleanup = func() {}
	)
	if cfg.PostgresDSN != "" {
		conn, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := platformmigrations.Run(conn); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("unwrap postgres connection: %w", err)
		}
		db = conn
		cleanup = func() { _ = sqlDB.Close() }
		logger.Info("postgres connection established")
	} else {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory stores")
	}

	var (
		customers    boardingports.CustomerRepository
		pets         boardingports.PetRepository
		reservations boardingports.ReservationRepository
		resources    boardingports.ResourceRepository
		mappings     syncports.MappingStore
		checkpoints  syncports.CheckpointStore
		tenants      syncports.TenantDirectory
	)
	if db != nil {
		customers = boardingpg.NewCustomerRepository(db)
		pets = boardingpg.NewPetRepository(db)
		reservations = boardingpg.NewReservationRepository(db)
		resources = boardingpg.NewResourceRepository(db)
		mappings = syncpg.NewMappingStore(db)
		checkpoints = syncpg.NewCheckpointStore(db)
		tenants = syncpg.NewTenantDirectory(db)
	} else {
		customers = boardingmem.NewCustomerRepository()
		pets = boardingmem.NewPetRepository()
		reservations = boardingmem.NewReservationRepository()
		resources = boardingmem.NewResourceRepository()
		mappings = syncmem.NewMappingStore()
		checkpoints = syncmem.NewCheckpointStore()
		tenants = syncmem.NewTenantDirectory()
	}

	mapper := syncapp.NewMapper(mappings)
	writer := syncapp.NewWriter(customers, pets, reservations, resources, mapper, boarding.DefaultPolicy())
	provider := gingrdir.NewProvider(gingrdir.WithClientConfig(cfg.GingrClientConfig()))
	core := syncapp.NewSyncService(tenants, provider, checkpoints, writer,
		syncapp.WithBatchSize(cfg.SyncBatchSize),
		syncapp.WithLogger(logger),
	)
	service := syncobs.New(core,
		syncobs.WithLogger(logger),
		syncobs.WithTracer(instruments.Tracer("internal.sync.application")),
		syncobs.WithMeter(instruments.Meter("internal.sync.application")),
	)

	return &SyncStack{Service: service, Tenants: tenants, Checkpoints: checkpoints}, cleanup, nil
}

// Run boots the ops HTTP server with observability and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "gingrsync-ops"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, cleanup, err := BuildSyncStack(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer cleanup()

	var orchestrator syncports.WorkflowOrchestrator = syncworkflowadapters.NewInlineSyncWorkflows(stack.Service)
	if temporalClient, err := ConnectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running syncs inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orchestrator = syncworkflowadapters.NewTemporalSyncWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	server := NewServer(orchestrator, stack.Tenants, NewStatusLog(), logger)
	server.Register(router)

	addr := ":" + cfg.Port
	logger.Info("gingrsync ops listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("gingrsync ops server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

// ConnectTemporalClient dials the Temporal cluster with tracing wired in.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
