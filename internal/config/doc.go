// Package config provides centralized configuration management for the sales
// report tool. It handles loading configuration from multiple sources, validation,
// and resolution of the input and report paths.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SALES_* for namespacing:
//
//	SALES_LOGGING_LEVEL=debug
//	SALES_PATHS_DATA_DIR=/var/lib/sales
//	SALES_REPORT_TIMEZONE=Europe/Madrid
//	SALES_REPORT_XLSX=true
//	SALES_TELEMETRY_METRICS_FILE=/var/lib/node_exporter/sales.prom
//
// # Path Management
//
// Paths resolves the input CSV and report files relative to the data
// directory, which itself is relative to the working directory:
//
//	paths, err := config.GetPaths(cfg.Paths)
//	paths.InputCSV   // data/sales.csv
//	paths.ReportPSV  // data/sales_report.psv
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
