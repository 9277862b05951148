package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths
// This is the single source of truth for every file the report run touches
type Paths struct {
	WorkingDir string
	DataDir    string
	LogsDir    string

	InputCSV   string
	ReportPSV  string
	ReportXLSX string
}

// GetPaths resolves the configured paths against the current working directory.
// Relative file names are placed in DataDir; absolute ones are kept as-is.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %v", err)
	}
	return GetPathsFrom(wd, cfg), nil
}

// GetPathsFrom resolves the configured paths against baseDir
func GetPathsFrom(baseDir string, cfg PathsConfig) *Paths {
	dataDir := resolve(baseDir, cfg.DataDir)

	return &Paths{
		WorkingDir: baseDir,
		DataDir:    dataDir,
		LogsDir:    resolve(baseDir, cfg.LogsDir),
		InputCSV:   resolve(dataDir, cfg.InputFile),
		ReportPSV:  resolve(dataDir, cfg.ReportFile),
		ReportXLSX: resolve(dataDir, cfg.XLSXFile),
	}
}

// WithInput overrides the input file, e.g. from a command line flag
func (p *Paths) WithInput(path string) *Paths {
	if path != "" {
		p.InputCSV = resolve(p.WorkingDir, path)
	}
	return p
}

// WithReport overrides the PSV report destination
func (p *Paths) WithReport(path string) *Paths {
	if path != "" {
		p.ReportPSV = resolve(p.WorkingDir, path)
	}
	return p
}

// WithXLSX overrides the XLSX report destination
func (p *Paths) WithXLSX(path string) *Paths {
	if path != "" {
		p.ReportXLSX = resolve(p.WorkingDir, path)
	}
	return p
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved report paths",
		slog.String("working_dir", p.WorkingDir),
		slog.String("data_dir", p.DataDir),
		slog.String("input_csv", p.InputCSV),
		slog.String("report_psv", p.ReportPSV),
		slog.String("report_xlsx", p.ReportXLSX),
		slog.String("logs_dir", p.LogsDir))
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
