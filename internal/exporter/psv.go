package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
)

// DelimitedRenderer renders report rows as delimited text.
// Lines end in CRLF and fields are quoted only when they must be.
type DelimitedRenderer struct {
	delimiter rune
	logger    *slog.Logger
}

// NewDelimitedRenderer creates a renderer for the given field delimiter
func NewDelimitedRenderer(delimiter rune, logger *slog.Logger) *DelimitedRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &DelimitedRenderer{delimiter: delimiter, logger: logger}
}

// NewPSVRenderer creates a pipe-delimited renderer
func NewPSVRenderer(logger *slog.Logger) *DelimitedRenderer {
	return NewDelimitedRenderer('|', logger)
}

// Render returns the encoded rows. The first row is written like any other, so callers pass the header in rows.
func (r *DelimitedRenderer) Render(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer

	writer := csv.NewWriter(&buf)
	writer.Comma = r.delimiter
	writer.UseCRLF = true

	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush rows: %w", err)
	}

	r.logger.Debug("Rendered delimited report",
		slog.String("delimiter", string(r.delimiter)),
		slog.Int("row_count", len(rows)),
		slog.Int("size_bytes", buf.Len()))

	return buf.Bytes(), nil
}
