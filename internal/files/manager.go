package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"salesreport/internal/config"
	"salesreport/internal/errors"
)

// Artifact is a fully rendered output file waiting to be committed
type Artifact struct {
	Path string
	Data []byte
}

// Manager provides file management operations
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance.
// Relative paths are resolved against paths.WorkingDir when paths is set.
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.resolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// ReadFile reads the entire content of a file
func (m *Manager) ReadFile(path string) ([]byte, error) {
	fullPath := m.resolvePath(path)

	m.logger.Debug("Reading file",
		slog.String("path", path),
		slog.String("full_path", fullPath))

	return os.ReadFile(fullPath)
}

// WriteAtomic replaces path with data so that readers see either the old file or the new one.
func (m *Manager) WriteAtomic(path string, data []byte) error {
	return m.Commit([]Artifact{{Path: path, Data: data}})
}

// renameFile is os.Rename; tests replace it to fail part way through a commit
var renameFile = os.Rename

// committed records a destination that has been replaced and how to undo it
type committed struct {
	dst    string
	backup string // empty when dst did not exist before the commit
}

// Commit writes every artifact to a temp file beside its destination and only then
// renames them into place. A failure while staging leaves no destination touched.
// A failure while renaming restores every destination already replaced, so the
// artifacts are either all new or all as they were.
func (m *Manager) Commit(artifacts []Artifact) error {
	staged := make([]string, 0, len(artifacts))
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, a := range artifacts {
		tmp, err := m.stage(a)
		if err != nil {
			cleanup()
			m.logger.Error("Failed to stage artifact",
				slog.String("path", a.Path),
				slog.String("error", err.Error()))
			return errors.NewOutputWriteError(a.Path, errors.NewStorageError("failed to stage artifact", err))
		}
		staged = append(staged, tmp)
	}

	done := make([]committed, 0, len(artifacts))
	for i, a := range artifacts {
		c, err := m.replace(m.resolvePath(a.Path), staged[i])
		if err != nil {
			staged = staged[i:]
			cleanup()
			m.rollback(done)
			m.logger.Error("Failed to move artifact into place",
				slog.String("path", c.dst),
				slog.Int("rolled_back", len(done)),
				slog.String("error", err.Error()))
			return errors.NewOutputWriteError(a.Path, err)
		}
		done = append(done, c)
	}

	for i, c := range done {
		if c.backup != "" {
			os.Remove(c.backup)
		}
		m.logger.Info("Wrote file",
			slog.String("path", c.dst),
			slog.Int("size_bytes", len(artifacts[i].Data)))
	}

	return nil
}

// replace keeps a backup of dst and then renames tmp over it.
// dst never disappears: the backup is a hard link, or a copy where links are not supported.
func (m *Manager) replace(dst, tmp string) (committed, error) {
	c := committed{dst: dst}

	if info, err := os.Stat(dst); err == nil && info.Mode().IsRegular() {
		c.backup = tmp + ".bak"
		if err := backupFile(dst, c.backup, info.Mode().Perm()); err != nil {
			return c, fmt.Errorf("failed to back up %s: %w", dst, err)
		}
	}

	if err := renameFile(tmp, dst); err != nil {
		if c.backup != "" {
			os.Remove(c.backup)
		}
		return c, err
	}
	return c, nil
}

// rollback restores replaced destinations in reverse order
func (m *Manager) rollback(done []committed) {
	for i := len(done) - 1; i >= 0; i-- {
		c := done[i]
		var err error
		if c.backup == "" {
			err = os.Remove(c.dst)
		} else {
			err = renameFile(c.backup, c.dst)
		}
		if err != nil {
			m.logger.Error("Failed to restore artifact",
				slog.String("path", c.dst),
				slog.String("error", err.Error()))
		}
	}
}

func backupFile(src, dst string, perm os.FileMode) error {
	if err := os.Link(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, perm)
}

// stage writes a to a synced temp file in its destination directory and returns the temp path
func (m *Manager) stage(a Artifact) (string, error) {
	dst := m.resolvePath(a.Path)
	dir := filepath.Dir(dst)

	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory", dst)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := tmp.Name()

	if _, err := tmp.Write(a.Data); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(name, 0644); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}

	return name, nil
}

func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) || m.paths == nil || m.paths.WorkingDir == "" {
		return path
	}
	return filepath.Join(m.paths.WorkingDir, path)
}
