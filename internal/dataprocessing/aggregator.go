package dataprocessing

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strconv"

	"salesreport/internal/errors"
	"salesreport/internal/validation"
	"salesreport/pkg/contracts/domain"
)

// Aggregator folds sale records into one summary per product.
type Aggregator struct {
	logger    *slog.Logger
	validator *validation.RecordValidator
}

// NewAggregator creates a new aggregator
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger:    logger,
		validator: validation.NewRecordValidator(),
	}
}

// Aggregate builds the sales table for records. An invalid record fails the whole
// call and no partial table is returned; its Row is the 1-based position in records.
func (a *Aggregator) Aggregate(ctx context.Context, records []domain.SaleRecord) (domain.SalesTable, error) {
	a.logger.InfoContext(ctx, "aggregating sales records",
		slog.Int("record_count", len(records)))

	table, err := aggregate(a.validator, records)
	if err != nil {
		a.logger.ErrorContext(ctx, "aggregation rejected record",
			slog.String("error", err.Error()))
		return nil, err
	}

	a.logger.InfoContext(ctx, "aggregated sales records",
		slog.Int("product_count", len(table)))
	return table, nil
}

// AggregateRecords is Aggregate without logging.
func AggregateRecords(records []domain.SaleRecord) (domain.SalesTable, error) {
	return aggregate(validation.NewRecordValidator(), records)
}

func aggregate(v *validation.RecordValidator, records []domain.SaleRecord) (domain.SalesTable, error) {
	table := make(domain.SalesTable)
	for i, record := range records {
		if err := v.Validate(record); err != nil {
			column := ""
			var fe *validation.FieldError
			if stderrors.As(err, &fe) {
				column = fe.Column
			}
			return nil, errors.NewMalformedRecordError(i+1, column, "", err)
		}

		if summary, ok := table[record.ProductName]; ok {
			if err := summary.Add(record); err != nil {
				return nil, errors.NewMalformedRecordError(i+1, domain.ColumnQuantity,
					strconv.FormatInt(record.Quantity, 10), err)
			}
			continue
		}
		table[record.ProductName] = domain.NewProductSummary(record)
	}
	return table, nil
}
