package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "salesreport/internal/errors"
)

// FileValidator checks the sales input and report destinations before a run
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputFile checks that the sales input exists, is a regular file, and can be opened.
// A missing file is reported as an input-not-found error.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Input file does not exist",
			slog.String("file", path))
		return apperrors.NewInputNotFoundError(path, err)
	}
	if err != nil {
		v.logger.Error("Failed to stat input file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewInputNotFoundError(path, err)
	}
	if info.IsDir() {
		v.logger.Error("Input path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewInputNotFoundError(path, fmt.Errorf("%s is a directory", path))
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewInputNotFoundError(path, err)
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputPath ensures the report's directory exists (creating it if needed) and is writable.
func (v *FileValidator) ValidateOutputPath(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewOutputWriteError(path, err)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		v.logger.Error("Report path is a directory",
			slog.String("path", path))
		return apperrors.NewOutputWriteError(path, fmt.Errorf("%s is a directory", path))
	}

	tmp, err := os.CreateTemp(dir, ".write_test-*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewOutputWriteError(path, err)
	}
	tmp.Close()
	os.Remove(tmp.Name())

	v.logger.Debug("Output path validated",
		slog.String("path", path))
	return nil
}
