package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load (SALES_*).
const EnvPrefix = "SALES"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
// File names are resolved against DataDir unless absolute.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	InputFile  string `yaml:"input_file" envconfig:"INPUT_FILE"`
	ReportFile string `yaml:"report_file" envconfig:"REPORT_FILE"`
	XLSXFile   string `yaml:"xlsx_file" envconfig:"XLSX_FILE"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// ReportConfig controls how the summary report is rendered
type ReportConfig struct {
	Timezone   string `yaml:"timezone" envconfig:"TIMEZONE"`
	TimeLayout string `yaml:"time_layout" envconfig:"TIME_LAYOUT"`
	Delimiter  string `yaml:"delimiter" envconfig:"DELIMITER"`
	XLSX       bool   `yaml:"xlsx" envconfig:"XLSX"`
	Echo       bool   `yaml:"echo" envconfig:"ECHO"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment   string `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Location resolves the configured report time zone.
func (r ReportConfig) Location() (*time.Location, error) {
	if r.Timezone == "" || strings.EqualFold(r.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(r.Timezone)
}

// DelimiterRune returns the report field separator.
func (r ReportConfig) DelimiterRune() rune {
	d, _ := utf8.DecodeRuneInString(r.Delimiter)
	return d
}

// Load loads configuration from the first config file found in the usual
// locations and from SALES_* environment variables.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration with precedence env > file > defaults.
// An empty path skips the file layer.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg; keys absent from the file keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "stderr", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}

	if c.Logging.Output != "stderr" && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path is required for output %q", c.Logging.Output)
	}

	if c.Paths.InputFile == "" || c.Paths.ReportFile == "" {
		return fmt.Errorf("input and report file names must be set")
	}

	if utf8.RuneCountInString(c.Report.Delimiter) != 1 {
		return fmt.Errorf("report delimiter must be a single character, got %q", c.Report.Delimiter)
	}
	if strings.ContainsAny(c.Report.Delimiter, "\"\r\n") {
		return fmt.Errorf("report delimiter %q is not allowed", c.Report.Delimiter)
	}

	if c.Report.TimeLayout == "" {
		return fmt.Errorf("report time layout must be set")
	}

	if _, err := c.Report.Location(); err != nil {
		return fmt.Errorf("invalid report timezone %q: %w", c.Report.Timezone, err)
	}

	switch c.Telemetry.TraceExporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", c.Telemetry.TraceExporter)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"salesreport.yaml",
		"configs/salesreport.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stderr",
			FilePath: "logs/salesreport.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			InputFile:  "sales.csv",
			ReportFile: "sales_report.psv",
			XLSXFile:   "sales_report.xlsx",
			LogsDir:    "logs",
		},
		Report: ReportConfig{
			Timezone:   "Local",
			TimeLayout: "2006-01-02 15:04:05",
			Delimiter:  "|",
			XLSX:       false,
			Echo:       true,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "salesreport",
			Environment:   "development",
			TraceExporter: "none",
		},
	}
}
