package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SalesCSVHeader is the header row of a well-formed sales input file
const SalesCSVHeader = "Timestamp,Product Name,Quantity,Price"

// ScenarioRows is the Widget/Gadget sample used across packages
var ScenarioRows = []string{
	"1700000000,Widget,2,9.99",
	"1700003600,Widget,3,9.99",
	"1700000500,Gadget,1,49.50",
}

// SalesCSV joins a header and rows into CSV text with a trailing newline
func SalesCSV(rows ...string) string {
	lines := append([]string{SalesCSVHeader}, rows...)
	return strings.Join(lines, "\n") + "\n"
}

// WriteSalesCSV writes a sales CSV with the standard header into dir and returns its path
func WriteSalesCSV(t *testing.T, dir string, rows ...string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(dir, "sales.csv"), SalesCSV(rows...))
}

// WriteFile writes content to path, creating parent directories
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// ListDir returns the entry names in dir, failing the test on error
func ListDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read directory %s: %v", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
