// Package files provides the file operations behind report output.
//
// Manager writes artifacts atomically: each one is rendered in memory, written
// to a temp file in its destination directory, synced, and renamed into place.
// Commit stages every artifact before renaming any of them, so a failure while
// writing leaves the previous reports untouched.
//
//	manager := files.NewManager(paths, logger)
//	err := manager.Commit([]files.Artifact{
//	    {Path: paths.ReportPSV, Data: psv},
//	    {Path: paths.ReportXLSX, Data: xlsx},
//	})
package files
