package dataprocessing

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"salesreport/internal/errors"
	"salesreport/internal/validation"
	"salesreport/pkg/contracts/domain"
)

const utf8BOM = "\ufeff"

// SalesParser turns a comma-delimited sales file into sale records.
// Any row that cannot be coerced fails the whole parse.
type SalesParser struct {
	logger    *slog.Logger
	validator *validation.RecordValidator
}

// NewSalesParser creates a parser that logs through logger
func NewSalesParser(logger *slog.Logger) *SalesParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &SalesParser{
		logger:    logger,
		validator: validation.NewRecordValidator(),
	}
}

// ParseFile opens path and parses it. A missing or unreadable file is an input-not-found error.
func (p *SalesParser) ParseFile(ctx context.Context, path string) ([]domain.SaleRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to open sales input",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, errors.NewInputNotFoundError(path, err)
	}
	defer file.Close()

	records, err := p.Parse(ctx, file)
	if err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "parsed sales input",
		slog.String("path", path),
		slog.Int("record_count", len(records)))
	return records, nil
}

// Parse reads the header and every data row from r.
func (p *SalesParser) Parse(ctx context.Context, r io.Reader) ([]domain.SaleRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewMalformedRecordError(1, "", "", fmt.Errorf("missing header row"))
	}
	if err != nil {
		return nil, p.csvError(ctx, err)
	}

	columns, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var records []domain.SaleRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, p.csvError(ctx, err)
		}

		line, _ := reader.FieldPos(0)
		record, err := p.parseRow(row, line, columns)
		if err != nil {
			p.logger.ErrorContext(ctx, "malformed sales record",
				slog.Int("row", line),
				slog.String("error", err.Error()))
			return nil, err
		}
		records = append(records, record)
	}

	p.logger.DebugContext(ctx, "sales rows read",
		slog.Int("record_count", len(records)))
	return records, nil
}

// columnIndex records where each input column sits in a row
type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	columns := make(columnIndex, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}

	for _, required := range domain.InputColumns {
		if _, ok := columns[required]; !ok {
			return nil, errors.NewMalformedRecordError(1, required, "",
				fmt.Errorf("header is missing column %q", required))
		}
	}
	return columns, nil
}

func (p *SalesParser) parseRow(row []string, line int, columns columnIndex) (domain.SaleRecord, error) {
	// Numeric fields are trimmed; the product name is kept byte for byte
	raw := func(column string) (string, error) {
		i := columns[column]
		if i >= len(row) {
			return "", errors.NewMalformedRecordError(line, column, "", fmt.Errorf("missing column"))
		}
		return row[i], nil
	}
	field := func(column string) (string, error) {
		value, err := raw(column)
		return strings.TrimSpace(value), err
	}

	var record domain.SaleRecord

	value, err := field(domain.ColumnTimestamp)
	if err != nil {
		return record, err
	}
	if record.Timestamp, err = strconv.ParseInt(value, 10, 64); err != nil {
		return record, errors.NewMalformedRecordError(line, domain.ColumnTimestamp, value, err)
	}

	if record.ProductName, err = raw(domain.ColumnProductName); err != nil {
		return record, err
	}

	if value, err = field(domain.ColumnQuantity); err != nil {
		return record, err
	}
	if record.Quantity, err = strconv.ParseInt(value, 10, 64); err != nil {
		return record, errors.NewMalformedRecordError(line, domain.ColumnQuantity, value, err)
	}

	if value, err = field(domain.ColumnPrice); err != nil {
		return record, err
	}
	if record.UnitPrice, err = decimal.NewFromString(value); err != nil {
		return record, errors.NewMalformedRecordError(line, domain.ColumnPrice, value, err)
	}

	if err := p.validator.Validate(record); err != nil {
		var fe *validation.FieldError
		if stderrors.As(err, &fe) {
			return record, errors.NewMalformedRecordError(line, fe.Column, rawValue(row, columns, fe.Column), err)
		}
		return record, errors.NewMalformedRecordError(line, "", "", err)
	}

	return record, nil
}

func rawValue(row []string, columns columnIndex, column string) string {
	if i, ok := columns[column]; ok && i < len(row) {
		return row[i]
	}
	return ""
}

// csvError converts a csv syntax error into a malformed record at the reported line
func (p *SalesParser) csvError(ctx context.Context, err error) error {
	line := 1
	var parseErr *csv.ParseError
	if stderrors.As(err, &parseErr) {
		line = parseErr.StartLine
	}
	p.logger.ErrorContext(ctx, "sales input is not valid CSV",
		slog.Int("row", line),
		slog.String("error", err.Error()))
	return errors.NewMalformedRecordError(line, "", "", err)
}
