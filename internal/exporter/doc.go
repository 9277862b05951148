// Package exporter renders report rows into output artifacts.
//
// DelimitedRenderer produces the pipe-delimited report, XLSXRenderer produces an
// optional Excel workbook of the same rows, and Echo prints a written report to
// the console. Renderers return bytes; writing them to disk is left to the
// files package so that all artifacts can be committed together.
//
//	psv, err := exporter.NewPSVRenderer(logger).Render(rows)
//	xlsx, err := exporter.NewXLSXRenderer(logger).Render(rows)
package exporter
