package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salesreport/internal/errors"
	"salesreport/internal/shared/testutil"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantErr   bool
	}{
		{
			name: "valid sales file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteSalesCSV(t, t.TempDir(), testutil.ScenarioRows...)
			},
			wantErr: false,
		},
		{
			name: "non-existent file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			wantErr: true,
		},
		{
			name: "path is directory not file",
			setupFunc: func(t *testing.T) string {
				return t.TempDir()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			err := v.ValidateInputFile(tt.setupFunc(t))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInputNotFound))
				assert.Equal(t, apperrors.ExitInputNotFound, apperrors.ExitCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateOutputPath(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "out")
		v := NewFileValidator(nil)

		require.NoError(t, v.ValidateOutputPath(filepath.Join(dir, "report.psv")))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.Empty(t, testutil.ListDir(t, dir), "temp file must be removed")
	})

	t.Run("report path is a directory", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "report.psv")
		require.NoError(t, os.Mkdir(target, 0755))

		err := NewFileValidator(nil).ValidateOutputPath(target)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeOutputWrite))
	})

	t.Run("parent is a regular file", func(t *testing.T) {
		file := testutil.WriteFile(t, filepath.Join(t.TempDir(), "blocker"), "x")

		err := NewFileValidator(nil).ValidateOutputPath(filepath.Join(file, "report.psv"))
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeOutputWrite))
	})
}
