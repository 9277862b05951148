package operations

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesreport/internal/config"
	apperrors "salesreport/internal/errors"
	"salesreport/internal/shared/testutil"
)

const scenarioReportUTC = "Product Name|First Sale|Last Sale|Total Quantity Sold|Total Sales Amount\r\n" +
	"Gadget|2023-11-14 22:21:40|2023-11-14 22:21:40|1|49.50\r\n" +
	"Widget|2023-11-14 22:13:20|2023-11-14 23:13:20|5|49.95\r\n"

func reportManager(t *testing.T, dir string, mutate func(*config.Config)) (*Manager, *config.Paths) {
	t.Helper()

	cfg := config.Default()
	cfg.Report.Timezone = "UTC"
	if mutate != nil {
		mutate(cfg)
	}
	paths := config.GetPathsFrom(dir, cfg.Paths)

	logger, _ := testutil.NewTestLogger(t)
	steps, err := ReportStages(&StageOptions{Paths: paths, Report: cfg.Report, Logger: logger})
	require.NoError(t, err)

	m := NewManager(nil, logger, nil, nil)
	for _, step := range steps {
		require.NoError(t, m.RegisterStage(step))
	}
	return m, paths
}

func TestReportStages_Scenario(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSalesCSV(t, filepath.Join(dir, "data"), testutil.ScenarioRows...)

	m, paths := reportManager(t, dir, nil)
	resp, err := m.Execute(context.Background(), OperationRequest{ID: "scenario"})
	require.NoError(t, err)

	content, err := os.ReadFile(paths.ReportPSV)
	require.NoError(t, err)
	assert.Equal(t, scenarioReportUTC, string(content))

	report, ok := Report(resp.State)
	require.True(t, ok)
	assert.Equal(t, content, report)

	for _, id := range []string{StageIDParse, StageIDAggregate, StageIDFormat, StageIDExport} {
		assert.Equal(t, StepStatusCompleted, resp.Steps[id].GetStatus(), id)
	}
	assert.Equal(t, 3, resp.Steps[StageIDParse].Metadata["record_count"])
	assert.Equal(t, 2, resp.Steps[StageIDAggregate].Metadata["product_count"])
	assert.NoFileExists(t, paths.ReportXLSX)
}

func TestReportStages_WithWorkbook(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSalesCSV(t, filepath.Join(dir, "data"), testutil.ScenarioRows...)

	m, paths := reportManager(t, dir, func(cfg *config.Config) {
		cfg.Report.XLSX = true
	})
	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)

	assert.FileExists(t, paths.ReportPSV)
	assert.FileExists(t, paths.ReportXLSX)

	artifacts, ok := resp.State.GetContext(ContextKeyArtifacts)
	require.True(t, ok)
	assert.Equal(t, []string{paths.ReportPSV, paths.ReportXLSX}, artifacts)
}

func TestReportStages_MalformedLeavesNoReport(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	testutil.WriteSalesCSV(t, dataDir, "1700000000,Widget,abc,9.99")

	m, paths := reportManager(t, dir, nil)
	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)

	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMalformedRecord))
	assert.Equal(t, StepStatusFailed, resp.Steps[StageIDParse].GetStatus())
	assert.Equal(t, StepStatusSkipped, resp.Steps[StageIDExport].GetStatus())
	assert.NoFileExists(t, paths.ReportPSV)
	assert.Equal(t, []string{"sales.csv"}, testutil.ListDir(t, dataDir))
}

func TestReportStages_MalformedKeepsPreviousReport(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	testutil.WriteSalesCSV(t, dataDir, "1700000000,Widget,2,oops")
	previous := testutil.WriteFile(t, filepath.Join(dataDir, "sales_report.psv"), "previous")

	m, _ := reportManager(t, dir, nil)
	_, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)

	content, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(content))
}

func TestReportStages_MissingInput(t *testing.T) {
	m, paths := reportManager(t, t.TempDir(), nil)

	_, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ExitInputNotFound, apperrors.ExitCode(err))
	assert.NoFileExists(t, paths.ReportPSV)
}

func TestReportStages_OutputNotWritable(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteSalesCSV(t, filepath.Join(dir, "data"), testutil.ScenarioRows...)
	blocker := testutil.WriteFile(t, filepath.Join(dir, "blocker"), "file")

	m, _ := reportManager(t, dir, func(cfg *config.Config) {
		cfg.Paths.ReportFile = filepath.Join(blocker, "report.psv")
	})
	_, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ExitOutputWrite, apperrors.ExitCode(err))
}

func TestNewFormatStage_BadTimezone(t *testing.T) {
	cfg := config.Default()
	cfg.Report.Timezone = "Not/AZone"

	_, err := ReportStages(&StageOptions{Paths: config.GetPathsFrom(t.TempDir(), cfg.Paths), Report: cfg.Report})
	assert.Error(t, err)
}

func TestStateAccessors_Missing(t *testing.T) {
	state := NewOperationState("empty")

	_, err := Records(state)
	assert.Error(t, err)
	_, err = Table(state)
	assert.Error(t, err)
	_, err = Rows(state)
	assert.Error(t, err)
	_, ok := Report(state)
	assert.False(t, ok)

	state.SetContext(ContextKeyRows, "not rows")
	_, err = Rows(state)
	assert.Error(t, err)
}
