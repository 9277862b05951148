// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides sales CSV fixtures and a buffered slog
// handler for asserting on log output:
//
//	logger, handler := testutil.NewTestLogger(t)
//	path := testutil.WriteSalesCSV(t, t.TempDir(), testutil.ScenarioRows...)
//	testutil.AssertLogContains(t, handler, slog.LevelInfo, "parsed sales input")
package shared
