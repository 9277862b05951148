// Package dataprocessing turns a sales CSV into report rows.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Parser: reads the CSV into domain.SaleRecord values, rejecting malformed rows
// 2. Aggregator: folds records into one domain.ProductSummary per product
// 3. Formatter: renders the summaries as sorted text rows under the report header
//
// # Usage
//
//	records, err := dataprocessing.NewSalesParser(logger).ParseFile(ctx, "data/sales.csv")
//	if err != nil {
//	    return err
//	}
//	table, err := dataprocessing.NewAggregator(logger).Aggregate(ctx, records)
//	if err != nil {
//	    return err
//	}
//	rows := dataprocessing.NewFormatter().Format(table, dataprocessing.LocalTimeRenderer(time.UTC, ""))
//
// Amounts are exact decimals and keep the scale of their inputs, so 2 x 9.99
// plus 3 x 9.99 is rendered as 49.95.
package dataprocessing
