// Package adapter contains filesystem, process and storage adapters for the
// pyforce CLI.
package adapter

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	m "github.com/johnconna/pyforce-evaluation-v2/internal/model"
)

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// HarvestFSAdapter abstracts the filesystem operations the batch pipeline
// relies on. It intentionally hides direct `os` access so job and merge
// logic can be tested without touching the real disk layout.
type HarvestFSAdapter interface {
	// Walk traverses the provided root path. When recursive is false the
	// implementation should limit itself to the root directory (no sub-dirs).
	Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ListDir returns the names of the regular files directly inside root,
	// sorted by name for a stable enumeration order.
	ListDir(root m.Path) ([]string, error)

	// CreateTempDir creates an exclusively-owned scratch directory.
	CreateTempDir(pattern string) (m.Path, error)

	// RemoveAll removes a directory and all its contents.
	RemoveAll(path m.Path) error

	// MkdirAll creates a directory and any missing parents. Idempotent.
	MkdirAll(path m.Path, perm os.FileMode) error

	// Exists reports whether anything is present at path.
	Exists(path m.Path) (bool, error)

	// Rename moves a file to a new path, preserving its content byte for
	// byte. Falls back to copy-and-delete across filesystems.
	Rename(src, dst m.Path) error

	// WriteFile writes content to a file with the given permissions.
	WriteFile(path m.Path, content []byte, perm os.FileMode) error

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// LocalHarvestFSAdapter is the os-backed implementation of HarvestFSAdapter.
type LocalHarvestFSAdapter struct{}

// NewLocalHarvestFSAdapter constructs a LocalHarvestFSAdapter ready to be
// wired into the workflow.
func NewLocalHarvestFSAdapter() *LocalHarvestFSAdapter {
	return &LocalHarvestFSAdapter{}
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalHarvestFSAdapter) Walk(root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && !recursive && path != rootStr {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// ListDir returns the sorted names of regular files directly inside root.
func (a *LocalHarvestFSAdapter) ListDir(root m.Path) ([]string, error) {
	entries, err := os.ReadDir(string(root))
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)

	return names, nil
}

// CreateTempDir creates a scratch directory for one extraction job.
func (a *LocalHarvestFSAdapter) CreateTempDir(pattern string) (m.Path, error) {
	tmpDir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", err
	}

	return m.Path(tmpDir), nil
}

// RemoveAll removes a directory and all its contents.
func (a *LocalHarvestFSAdapter) RemoveAll(path m.Path) error {
	return os.RemoveAll(string(path))
}

// MkdirAll creates a directory and any missing parents.
func (a *LocalHarvestFSAdapter) MkdirAll(path m.Path, perm os.FileMode) error {
	return os.MkdirAll(string(path), perm)
}

// Exists reports whether anything is present at path.
func (a *LocalHarvestFSAdapter) Exists(path m.Path) (bool, error) {
	if _, err := os.Stat(string(path)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// Rename moves a file, falling back to copy-and-delete when the move
// crosses filesystems (scratch areas often live on a different mount than
// the harvest tree).
func (a *LocalHarvestFSAdapter) Rename(src, dst m.Path) error {
	if err := os.Rename(string(src), string(dst)); err == nil {
		return nil
	}

	info, err := os.Stat(string(src))
	if err != nil {
		return err
	}

	if err := a.copyFile(string(src), string(dst), info.Mode()); err != nil {
		return err
	}

	return os.Remove(string(src))
}

// copyFile copies a single file.
func (a *LocalHarvestFSAdapter) copyFile(src, dst string, mode os.FileMode) error {
	// #nosec G304 - src is a scratch-area file path, not user input
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}

	// #nosec G304 - dst is a harvest destination path, not user input
	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	defer func() { _ = destFile.Close() }()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return os.Chmod(dst, mode)
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalHarvestFSAdapter) WriteFile(path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// RelPath returns the relative path from base to target.
func (a *LocalHarvestFSAdapter) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalHarvestFSAdapter) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
