package exporter

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/xuri/excelize/v2"

	"salesreport/pkg/contracts/domain"
)

// ReportSheet is the worksheet name used for the workbook report
const ReportSheet = "Sales Report"

// XLSXRenderer renders report rows as an Excel workbook.
// Amounts are stored as text so that no digit is lost to float conversion.
type XLSXRenderer struct {
	logger *slog.Logger
}

// NewXLSXRenderer creates a new workbook renderer
func NewXLSXRenderer(logger *slog.Logger) *XLSXRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXRenderer{logger: logger}
}

// Render builds the workbook in memory and returns its bytes
func (r *XLSXRenderer) Render(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	quantityCol := columnIndex(domain.ColumnTotalQuantitySold)
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, value := range row {
			cells[j] = value
			// Quantities are integers and safe to store as numbers
			if i > 0 && j == quantityCol {
				if n, err := strconv.ParseInt(value, 10, 64); err == nil {
					cells[j] = n
				}
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve cell for row %d: %w", i, err)
		}
		if err := f.SetSheetRow(ReportSheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if len(rows) > 0 {
		if err := r.styleHeader(f, len(rows[0])); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}

	r.logger.Debug("Rendered workbook report",
		slog.String("sheet", ReportSheet),
		slog.Int("row_count", len(rows)),
		slog.Int("size_bytes", buf.Len()))

	return buf.Bytes(), nil
}

func (r *XLSXRenderer) styleHeader(f *excelize.File, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return fmt.Errorf("failed to resolve header range: %w", err)
	}
	if err := f.SetCellStyle(ReportSheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return fmt.Errorf("failed to resolve header columns: %w", err)
	}
	return f.SetColWidth(ReportSheet, "A", lastCol, 22)
}

func columnIndex(name string) int {
	for i, c := range domain.ReportColumns {
		if c == name {
			return i
		}
	}
	return -1
}
