package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesreport/internal/config"
)

func decodeLines(t *testing.T, data string) []map[string]interface{} {
	t.Helper()
	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger_Stderr(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := NewLogger(config.LoggingConfig{Level: "info", Output: "stderr"}, &buf)
	require.NoError(t, err)
	defer closeFn()

	logger.Debug("hidden")
	logger.Info("test message", "key", "value")

	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 1)
	assert.Equal(t, "test message", entries[0]["msg"])
	assert.Equal(t, "value", entries[0]["key"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Contains(t, entries[0], "source")
}

func TestNewLogger_Both(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "test.log")

	logger, closeFn, err := NewLogger(config.LoggingConfig{
		Level:    "debug",
		Output:   "both",
		FilePath: logFile,
	}, &buf)
	require.NoError(t, err)

	logger.Debug("debug message")
	require.NoError(t, closeFn())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "debug message")
	assert.Contains(t, buf.String(), "debug message")
}

func TestNewLogger_FileOnly(t *testing.T) {
	var buf bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "test.log")

	logger, closeFn, err := NewLogger(config.LoggingConfig{Output: "file", FilePath: logFile}, &buf)
	require.NoError(t, err)

	logger.Warn("warn message")
	require.NoError(t, closeFn())

	assert.Empty(t, buf.String())
	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "warn message")
}

func TestNewLogger_FileWithoutPath(t *testing.T) {
	_, _, err := NewLogger(config.LoggingConfig{Output: "file"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestTraceHandler_InjectsTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger, closeFn, err := NewLogger(config.LoggingConfig{}, &buf)
	require.NoError(t, err)
	defer closeFn()

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.With("component", "test").InfoContext(ctx, "with trace")
	logger.InfoContext(context.Background(), "without trace")

	entries := decodeLines(t, buf.String())
	require.Len(t, entries, 2)
	assert.Equal(t, "trace-123", entries[0]["trace_id"])
	assert.Equal(t, "test", entries[0]["component"])
	assert.NotContains(t, entries[1], "trace_id")
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"INFO":    "INFO",
		"warn":    "WARN",
		"warning": "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in).String(), in)
	}
}

func TestTraceIDs(t *testing.T) {
	id := GenerateTraceID()
	assert.Len(t, id, 36)
	assert.NotEqual(t, id, GenerateTraceID())

	ctx := ContextWithTraceID(context.Background())
	assert.NotEmpty(t, GetTraceID(ctx))
	assert.Equal(t, GetTraceID(ctx), GetTraceID(EnsureTraceID(ctx)))
	assert.NotEmpty(t, GetTraceID(EnsureTraceID(context.Background())))
}
