package operations

import (
	"context"
	"fmt"
	"log/slog"

	"salesreport/internal/config"
	"salesreport/internal/dataprocessing"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/exporter"
	"salesreport/internal/files"
	"salesreport/internal/infrastructure"
	"salesreport/internal/validation"
	"salesreport/pkg/contracts/domain"
)

// StageOptions carries what the report steps need from the caller
type StageOptions struct {
	Paths   *config.Paths
	Report  config.ReportConfig
	Logger  *slog.Logger
	Metrics *infrastructure.ReportMetrics
}

func (o *StageOptions) logger(stepID string) *slog.Logger {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("step", stepID))
}

// ReportStages builds the parse, aggregate, format and export steps in execution order
func ReportStages(options *StageOptions) ([]Step, error) {
	format, err := NewFormatStage(options)
	if err != nil {
		return nil, err
	}
	return []Step{
		NewParseStage(options),
		NewAggregateStage(options),
		format,
		NewExportStage(options),
	}, nil
}

// ParseStage reads the sales CSV into sale records
type ParseStage struct {
	BaseStage
	inputPath string
	parser    *dataprocessing.SalesParser
	validator *validation.FileValidator
	metrics   *infrastructure.ReportMetrics
	logger    *slog.Logger
}

// NewParseStage creates the parse Step
func NewParseStage(options *StageOptions) *ParseStage {
	logger := options.logger(StageIDParse)
	return &ParseStage{
		BaseStage: NewBaseStage(StageIDParse, StageNameParse),
		inputPath: options.Paths.InputCSV,
		parser:    dataprocessing.NewSalesParser(logger),
		validator: validation.NewFileValidator(logger),
		metrics:   options.Metrics,
		logger:    logger,
	}
}

// Validate requires an input path
func (s *ParseStage) Validate(state *OperationState) error {
	if s.inputPath == "" {
		return apperrors.NewAppValidationError("no input file configured")
	}
	return nil
}

// Execute parses the input file and stores the records
func (s *ParseStage) Execute(ctx context.Context, state *OperationState) error {
	if err := s.validator.ValidateInputFile(s.inputPath); err != nil {
		return err
	}

	records, err := s.parser.ParseFile(ctx, s.inputPath)
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyRecords, records)
	state.GetStage(s.ID()).SetMetadata("record_count", len(records))
	if s.metrics != nil {
		s.metrics.RecordsParsed.Add(ctx, int64(len(records)))
	}
	return nil
}

// AggregateStage folds sale records into the sales table
type AggregateStage struct {
	BaseStage
	aggregator *dataprocessing.Aggregator
	metrics    *infrastructure.ReportMetrics
}

// NewAggregateStage creates the aggregate Step
func NewAggregateStage(options *StageOptions) *AggregateStage {
	return &AggregateStage{
		BaseStage:  NewBaseStage(StageIDAggregate, StageNameAggregate),
		aggregator: dataprocessing.NewAggregator(options.logger(StageIDAggregate)),
		metrics:    options.Metrics,
	}
}

// Validate requires parsed records
func (s *AggregateStage) Validate(state *OperationState) error {
	_, err := Records(state)
	return err
}

// Execute aggregates the records and stores the table
func (s *AggregateStage) Execute(ctx context.Context, state *OperationState) error {
	records, err := Records(state)
	if err != nil {
		return err
	}

	table, err := s.aggregator.Aggregate(ctx, records)
	if err != nil {
		return err
	}

	state.SetContext(ContextKeyTable, table)
	state.GetStage(s.ID()).SetMetadata("product_count", len(table))
	if s.metrics != nil {
		s.metrics.ProductsAggregated.Add(ctx, int64(len(table)))
	}
	return nil
}

// FormatStage renders the sales table as sorted report rows
type FormatStage struct {
	BaseStage
	formatter *dataprocessing.Formatter
	render    dataprocessing.TimeRenderer
}

// NewFormatStage creates the format Step. It fails if the configured time zone cannot be loaded.
func NewFormatStage(options *StageOptions) (*FormatStage, error) {
	loc, err := options.Report.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load report time zone %q: %w", options.Report.Timezone, err)
	}
	return &FormatStage{
		BaseStage: NewBaseStage(StageIDFormat, StageNameFormat),
		formatter: dataprocessing.NewFormatter(),
		render:    dataprocessing.LocalTimeRenderer(loc, options.Report.TimeLayout),
	}, nil
}

// Validate requires an aggregated table
func (s *FormatStage) Validate(state *OperationState) error {
	_, err := Table(state)
	return err
}

// Execute formats the table and stores the rows
func (s *FormatStage) Execute(ctx context.Context, state *OperationState) error {
	table, err := Table(state)
	if err != nil {
		return err
	}

	rows := s.formatter.Format(table, s.render)
	state.SetContext(ContextKeyRows, rows)
	state.GetStage(s.ID()).SetMetadata("row_count", len(rows)-1)
	return nil
}

// ExportStage renders the report artifacts and commits them together
type ExportStage struct {
	BaseStage
	paths     *config.Paths
	xlsx      bool
	psv       *exporter.DelimitedRenderer
	workbook  *exporter.XLSXRenderer
	files     *files.Manager
	validator *validation.FileValidator
	metrics   *infrastructure.ReportMetrics
	logger    *slog.Logger
}

// NewExportStage creates the export Step
func NewExportStage(options *StageOptions) *ExportStage {
	logger := options.logger(StageIDExport)
	return &ExportStage{
		BaseStage: NewBaseStage(StageIDExport, StageNameExport),
		paths:     options.Paths,
		xlsx:      options.Report.XLSX,
		psv:       exporter.NewDelimitedRenderer(options.Report.DelimiterRune(), logger),
		workbook:  exporter.NewXLSXRenderer(logger),
		files:     files.NewManager(options.Paths, logger),
		validator: validation.NewFileValidator(logger),
		metrics:   options.Metrics,
		logger:    logger,
	}
}

// Validate requires formatted rows and a report destination
func (s *ExportStage) Validate(state *OperationState) error {
	if s.paths.ReportPSV == "" {
		return apperrors.NewAppValidationError("no report file configured")
	}
	if s.xlsx && s.paths.ReportXLSX == "" {
		return apperrors.NewAppValidationError("no workbook file configured")
	}
	_, err := Rows(state)
	return err
}

// Execute renders every artifact in memory and then commits them atomically
func (s *ExportStage) Execute(ctx context.Context, state *OperationState) error {
	rows, err := Rows(state)
	if err != nil {
		return err
	}

	report, err := s.psv.Render(rows)
	if err != nil {
		return err
	}
	artifacts := []files.Artifact{{Path: s.paths.ReportPSV, Data: report}}

	if s.xlsx {
		workbook, err := s.workbook.Render(rows)
		if err != nil {
			return err
		}
		artifacts = append(artifacts, files.Artifact{Path: s.paths.ReportXLSX, Data: workbook})
	}

	for _, a := range artifacts {
		if err := s.validator.ValidateOutputPath(a.Path); err != nil {
			return err
		}
	}

	replaced := s.files.FileExists(s.paths.ReportPSV)
	if err := s.files.Commit(artifacts); err != nil {
		return err
	}

	paths := make([]string, 0, len(artifacts))
	var size int64
	for _, a := range artifacts {
		paths = append(paths, a.Path)
		size += int64(len(a.Data))
	}

	state.SetContext(ContextKeyReport, report)
	state.SetContext(ContextKeyArtifacts, paths)
	state.GetStage(s.ID()).SetMetadata("artifacts", paths)

	if s.metrics != nil {
		s.metrics.RowsWritten.Add(ctx, int64(len(rows)-1))
		s.metrics.BytesWritten.Add(ctx, size)
	}

	s.logger.InfoContext(ctx, "report exported",
		slog.String("report", s.paths.ReportPSV),
		slog.Int("artifact_count", len(artifacts)),
		slog.Int64("size_bytes", size),
		slog.Bool("replaced", replaced))
	return nil
}

// Records returns the parsed sale records stored in state
func Records(state *OperationState) ([]domain.SaleRecord, error) {
	v, ok := state.GetContext(ContextKeyRecords)
	if !ok {
		return nil, fmt.Errorf("no parsed records in operation state")
	}
	records, ok := v.([]domain.SaleRecord)
	if !ok {
		return nil, fmt.Errorf("operation state holds %T for records", v)
	}
	return records, nil
}

// Table returns the aggregated sales table stored in state
func Table(state *OperationState) (domain.SalesTable, error) {
	v, ok := state.GetContext(ContextKeyTable)
	if !ok {
		return nil, fmt.Errorf("no sales table in operation state")
	}
	table, ok := v.(domain.SalesTable)
	if !ok {
		return nil, fmt.Errorf("operation state holds %T for table", v)
	}
	return table, nil
}

// Rows returns the formatted report rows stored in state
func Rows(state *OperationState) ([][]string, error) {
	v, ok := state.GetContext(ContextKeyRows)
	if !ok {
		return nil, fmt.Errorf("no report rows in operation state")
	}
	rows, ok := v.([][]string)
	if !ok {
		return nil, fmt.Errorf("operation state holds %T for rows", v)
	}
	return rows, nil
}

// Report returns the rendered delimited report stored in state by the export Step
func Report(state *OperationState) ([]byte, bool) {
	v, ok := state.GetContext(ContextKeyReport)
	if !ok {
		return nil, false
	}
	report, ok := v.([]byte)
	return report, ok
}
