package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"salesreport/internal/config"
	"salesreport/pkg/contracts"
)

// MeterName names the tracer and meter of a report run
const MeterName = "salesreport"

// OTelConfig holds OpenTelemetry configuration
type OTelConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	TraceExporter  string    // "stdout" or "none"
	TraceWriter    io.Writer // destination for the stdout exporter
	MetricsFile    string    // Prometheus textfile written at shutdown; empty disables it
}

// OTelConfigFrom builds an OTelConfig from the telemetry section of the application config
func OTelConfigFrom(cfg config.TelemetryConfig, traceWriter io.Writer) *OTelConfig {
	return &OTelConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: contracts.Version,
		Environment:    cfg.Environment,
		TraceExporter:  cfg.TraceExporter,
		TraceWriter:    traceWriter,
		MetricsFile:    cfg.MetricsFile,
	}
}

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prometheus.Registry
	Metrics        *ReportMetrics
	Logger         *slog.Logger

	metricsFile string
}

// InitializeOTel sets up tracing and metrics for a single report run.
// Nothing is registered globally; callers pass the providers along.
func InitializeOTel(cfg *OTelConfig, logger *slog.Logger) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ServiceVersion == "" {
		cfg.ServiceVersion = contracts.Version
	}

	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	providers := &OTelProviders{
		Logger:      logger,
		metricsFile: cfg.MetricsFile,
	}

	if err := initializeTracing(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.DebugContext(ctx, "OpenTelemetry initialized",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metrics_file", cfg.MetricsFile))

	return providers, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg *OTelConfig) (*resource.Resource, error) {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.TraceExporter {
	case "", "none":
		providers.Tracer = noop.NewTracerProvider().Tracer(MeterName)
		return nil
	case "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	w := cfg.TraceWriter
	if w == nil {
		w = os.Stderr
	}
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(cfg.ServiceVersion))

	providers.Logger.DebugContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter))

	return nil
}

// initializeMetrics sets up a Prometheus-backed meter provider on a private registry
func initializeMetrics(ctx context.Context, cfg *OTelConfig, res *resource.Resource, providers *OTelProviders) error {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.Registry = registry
	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(cfg.ServiceVersion))

	metrics, err := CreateReportMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("failed to create report metrics: %w", err)
	}
	providers.Metrics = metrics

	providers.Logger.DebugContext(ctx, "Metrics initialized",
		slog.Bool("textfile", cfg.MetricsFile != ""))

	return nil
}

// ReportMetrics holds the metrics recorded by a report run
type ReportMetrics struct {
	RunsTotal          metric.Int64Counter
	RunDuration        metric.Float64Histogram
	StepsTotal         metric.Int64Counter
	StepDuration       metric.Float64Histogram
	StepErrors         metric.Int64Counter
	RecordsParsed      metric.Int64Counter
	ProductsAggregated metric.Int64Counter
	RowsWritten        metric.Int64Counter
	BytesWritten       metric.Int64Counter
}

// CreateReportMetrics creates the report run instruments on meter
func CreateReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"sales_report_runs_total",
		metric.WithDescription("Total number of report runs"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"sales_report_run_duration_seconds",
		metric.WithDescription("Report run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepsTotal, err := meter.Int64Counter(
		"sales_report_steps_total",
		metric.WithDescription("Total number of report steps executed"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"sales_report_step_duration_seconds",
		metric.WithDescription("Report step duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepErrors, err := meter.Int64Counter(
		"sales_report_step_errors_total",
		metric.WithDescription("Total number of failed report steps"),
	)
	if err != nil {
		return nil, err
	}

	recordsParsed, err := meter.Int64Counter(
		"sales_records_parsed_total",
		metric.WithDescription("Total number of sale records parsed"),
	)
	if err != nil {
		return nil, err
	}

	productsAggregated, err := meter.Int64Counter(
		"sales_products_aggregated_total",
		metric.WithDescription("Total number of distinct products aggregated"),
	)
	if err != nil {
		return nil, err
	}

	rowsWritten, err := meter.Int64Counter(
		"sales_report_rows_written_total",
		metric.WithDescription("Total number of report data rows written"),
	)
	if err != nil {
		return nil, err
	}

	bytesWritten, err := meter.Int64Counter(
		"sales_report_bytes_written",
		metric.WithDescription("Total bytes of report artifacts written"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &ReportMetrics{
		RunsTotal:          runsTotal,
		RunDuration:        runDuration,
		StepsTotal:         stepsTotal,
		StepDuration:       stepDuration,
		StepErrors:         stepErrors,
		RecordsParsed:      recordsParsed,
		ProductsAggregated: productsAggregated,
		RowsWritten:        rowsWritten,
		BytesWritten:       bytesWritten,
	}, nil
}

// WriteMetrics writes the current registry contents to the configured textfile.
// It is a no-op when no metrics file is configured.
func (p *OTelProviders) WriteMetrics() error {
	if p.metricsFile == "" || p.Registry == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(p.metricsFile), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(p.metricsFile, p.Registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	p.Logger.Debug("Metrics written",
		slog.String("path", p.metricsFile))
	return nil
}

// Shutdown writes the metrics textfile and then shuts down the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if err := p.WriteMetrics(); err != nil {
		errs = append(errs, err)
	}

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	p.Logger.DebugContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts trace ID from context for logging correlation
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

// RecordRunMetrics records the outcome of a whole report run
func RecordRunMetrics(ctx context.Context, metrics *ReportMetrics, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(statusAttr(err))
	metrics.RunsTotal.Add(ctx, 1, attrs)
	metrics.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStepMetrics records metrics for one operation step
func RecordStepMetrics(ctx context.Context, metrics *ReportMetrics, stepID string, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	stepAttr := attribute.String("step.id", stepID)
	metrics.StepsTotal.Add(ctx, 1, metric.WithAttributes(stepAttr))
	metrics.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(stepAttr, statusAttr(err)))

	if err != nil {
		metrics.StepErrors.Add(ctx, 1, metric.WithAttributes(stepAttr,
			attribute.String("error.type", fmt.Sprintf("%T", err))))
	}
}

func statusAttr(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "failure")
	}
	return attribute.String("status", "success")
}
