package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		if handler.Count() != 2 {
			t.Errorf("Expected 2 records, got %d", handler.Count())
		}
		if !handler.ContainsMessage("test message") {
			t.Error("Expected to find 'test message'")
		}
		if !handler.ContainsAttr("key", "value") {
			t.Error("Expected to find attribute key=value")
		}
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		if got := len(handler.GetRecordsByLevel(slog.LevelInfo)); got != 1 {
			t.Errorf("Expected 1 info record, got %d", got)
		}
		if got := len(handler.GetRecordsByLevel(slog.LevelDebug)); got != 1 {
			t.Errorf("Expected 1 debug record, got %d", got)
		}
	})

	t.Run("bound attributes are captured", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "aggregator")).Info("folded")

		AssertLogAttr(t, handler, "component", "aggregator")
		AssertLogContains(t, handler, slog.LevelInfo, "folded")
		AssertNoErrors(t, handler)
	})
}

func TestSalesFixtures(t *testing.T) {
	dir := t.TempDir()
	path := WriteSalesCSV(t, dir, ScenarioRows...)

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 4 || lines[0] != SalesCSVHeader {
		t.Fatalf("unexpected fixture content: %q", content)
	}

	WriteFile(t, filepath.Join(dir, "nested", "x.txt"), "x")
	names := ListDir(t, dir)
	if len(names) != 2 {
		t.Errorf("expected 2 entries, got %v", names)
	}
}
