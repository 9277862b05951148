package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"salesreport/internal/config"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/exporter"
	"salesreport/internal/files"
	"salesreport/internal/infrastructure"
	"salesreport/internal/operations"
	"salesreport/pkg/contracts"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one report run and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("salesreport", flag.ContinueOnError)
	flags.SetOutput(stderr)

	inputFile := flags.String("input", "", "Sales CSV to read (default data/sales.csv)")
	outputFile := flags.String("output", "", "PSV report to write (default data/sales_report.psv)")
	xlsxFile := flags.String("xlsx", "", "Also write the report as an Excel workbook to this path")
	metricsFile := flags.String("metrics", "", "Write Prometheus metrics for this run to this file")
	configFile := flags.String("config", "", "YAML configuration file")
	quiet := flags.Bool("quiet", false, "Do not echo the report to stdout")
	showVersion := flags.Bool("version", false, "Print version information and exit")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return apperrors.ExitOK
		}
		return apperrors.ExitConfig
	}

	if *showVersion {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return apperrors.ExitOK
	}

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fail(stderr, apperrors.NewConfigError("failed to load configuration", err))
	}

	if *xlsxFile != "" {
		cfg.Report.XLSX = true
	}
	if *metricsFile != "" {
		cfg.Telemetry.MetricsFile = *metricsFile
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return fail(stderr, apperrors.NewConfigError("failed to resolve paths", err))
	}
	paths.WithInput(*inputFile).WithReport(*outputFile).WithXLSX(*xlsxFile)

	logger, closeLog, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fail(stderr, apperrors.NewConfigError("failed to initialize logging", err))
	}
	defer closeLog()

	ctx = infrastructure.EnsureTraceID(ctx)
	traceID := infrastructure.GetTraceID(ctx)
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry, stderr), logger)
	if err != nil {
		return fail(stderr, apperrors.NewConfigError("failed to initialize telemetry", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed",
				slog.String("trace_id", traceID),
				slog.String("error", err.Error()))
		}
	}()

	logger.InfoContext(ctx, "Starting sales report",
		slog.String("input", paths.InputCSV),
		slog.String("output", paths.ReportPSV),
		slog.Bool("xlsx", cfg.Report.XLSX))

	steps, err := operations.ReportStages(&operations.StageOptions{
		Paths:   paths,
		Report:  cfg.Report,
		Logger:  logger,
		Metrics: providers.Metrics,
	})
	if err != nil {
		return fail(stderr, apperrors.NewConfigError("failed to build report steps", err))
	}

	manager := operations.NewManager(nil, logger, providers.Tracer, providers.Metrics)
	for _, step := range steps {
		if err := manager.RegisterStage(step); err != nil {
			return fail(stderr, err)
		}
	}

	start := time.Now()
	resp, err := manager.Execute(ctx, operations.OperationRequest{ID: traceID})
	infrastructure.RecordRunMetrics(ctx, providers.Metrics, time.Since(start), err)
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Sales report failed",
			slog.String("status", string(resp.Status)))
		return fail(stderr, err)
	}

	logger.InfoContext(ctx, "Sales report completed",
		slog.String("output", paths.ReportPSV),
		slog.Duration("duration", resp.Duration))

	if !cfg.Report.Echo || *quiet {
		return apperrors.ExitOK
	}

	report, err := files.NewManager(paths, logger).ReadFile(paths.ReportPSV)
	if err != nil {
		return fail(stderr, err)
	}
	if err := exporter.Echo(stdout, report); err != nil {
		return fail(stderr, err)
	}
	return apperrors.ExitOK
}

// fail prints err for the operator and maps it to an exit code
func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "salesreport: %v\n", err)
	return apperrors.ExitCode(err)
}
