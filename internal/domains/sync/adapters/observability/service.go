package observability

import (
	"context"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/tailtown/gingrsync/internal/domains/sync/domain"
	"github.com/tailtown/gingrsync/internal/domains/sync/ports"
)

const tracerName = "github.com/tailtown/gingrsync/internal/domains/sync/adapters/observability/service"

// Service decorates the sync service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core sync service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// SyncTenant runs one tenant import with instrumentation.
func (s *Service) SyncTenant(ctx context.Context, tenantID string) (domain.Result, error) {
	ctx, span := s.startSpan(ctx, "Service.SyncTenant", attribute.String("tenant.id", tenantID))
	defer span.End()

	s.logInfo(ctx, "syncing tenant", slog.String("tenant.id", tenantID))
	started := time.Now()
	result, err := s.inner.SyncTenant(ctx, tenantID)
	s.metrics.recordRun(ctx, time.Since(started), result, err)
	if err != nil {
		return result, s.handleError(ctx, span, err, "tenant sync failed", slog.String("tenant.id", tenantID))
	}

	totals := result.Totals()
	span.SetAttributes(
		attribute.Int("sync.records.processed", totals.Processed()),
		attribute.Int("sync.records.errored", totals.Errored),
		attribute.Bool("sync.clean", result.Clean()),
	)
	s.logInfo(ctx, "tenant synced",
		slog.String("tenant.id", tenantID),
		slog.Int("processed", totals.Processed()),
		slog.Int("errored", totals.Errored))
	return result, nil
}

// SyncAllEnabled runs every enabled tenant with instrumentation.
func (s *Service) SyncAllEnabled(ctx context.Context) ([]domain.Result, error) {
	ctx, span := s.startSpan(ctx, "Service.SyncAllEnabled")
	defer span.End()

	s.logInfo(ctx, "syncing all enabled tenants")
	results, err := s.inner.SyncAllEnabled(ctx)
	if err != nil {
		return results, s.handleError(ctx, span, err, "sync sweep failed")
	}

	failed := 0
	for _, result := range results {
		if result.Failed {
			failed++
		}
	}
	span.SetAttributes(
		attribute.Int("sync.tenants.total", len(results)),
		attribute.Int("sync.tenants.failed", failed),
	)
	s.logInfo(ctx, "sync sweep finished", slog.Int("tenants", len(results)), slog.Int("failed", failed))
	return results, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	runs        metric.Int64Counter
	records     metric.Int64Counter
	runDuration metric.Float64Histogram
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	runs, _ := m.Int64Counter("sync.runs", metric.WithDescription("Number of tenant sync runs"))
	records, _ := m.Int64Counter("sync.records", metric.WithDescription("Number of records reconciled, by outcome"))
	runDuration, _ := m.Float64Histogram("sync.run.duration_seconds", metric.WithDescription("Tenant sync run duration"))
	return serviceMetrics{
		runs:        runs,
		records:     records,
		runDuration: runDuration,
	}
}

func (m serviceMetrics) recordRun(ctx context.Context, elapsed time.Duration, result domain.Result, err error) {
	status := "ok"
	if err != nil || result.Failed {
		status = "failed"
	}
	addCounter(ctx, m.runs, 1, attribute.String("sync.status", status))
	if m.runDuration != nil {
		m.runDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("sync.status", status)))
	}
	totals := result.Totals()
	addCounter(ctx, m.records, int64(totals.Created), attribute.String("sync.outcome", string(domain.OutcomeCreated)))
	addCounter(ctx, m.records, int64(totals.Updated), attribute.String("sync.outcome", string(domain.OutcomeUpdated)))
	addCounter(ctx, m.records, int64(totals.Unchanged), attribute.String("sync.outcome", string(domain.OutcomeUnchanged)))
	addCounter(ctx, m.records, int64(totals.Skipped), attribute.String("sync.outcome", string(domain.OutcomeSkipped)))
	addCounter(ctx, m.records, int64(totals.Errored), attribute.String("sync.outcome", string(domain.OutcomeErrored)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil || value == 0 {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
