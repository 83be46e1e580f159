// Package content stores document bodies as files under a root directory,
// addressed by the relative paths recorded in the metadata store.
package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"inkstone/internal/domain"
)

// Store reads and writes document content files. All paths are relative to
// the root; the store creates parent directories on demand and never removes
// directories it created.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates the root directory if needed and returns a store over it.
func NewStore(root string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &domain.IOError{Op: "create content root", Path: root, Err: err}
	}
	return &Store{root: root, logger: logger}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// resolve validates a relative path and joins it under the root. Absolute
// paths and paths escaping the root are rejected.
func (s *Store) resolve(relPath string) (string, error) {
	if relPath == "" || filepath.IsAbs(relPath) {
		return "", fmt.Errorf("content path %q: %w", relPath, domain.ErrInvalidInput)
	}
	cleaned := filepath.Clean(relPath)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("content path %q: %w", relPath, domain.ErrInvalidInput)
	}
	return filepath.Join(s.root, cleaned), nil
}

// Read returns the file's content. A missing file is a not-found condition,
// distinct from other I/O failures.
func (s *Store) Read(ctx context.Context, relPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.resolve(relPath)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("content file %s: %w", relPath, domain.ErrNotFound)
		}
		return "", &domain.IOError{Op: "read content", Path: relPath, Err: err}
	}
	return string(data), nil
}

// Write stores content at the path, creating parent directories as needed.
// The content lands in a temp file first and is renamed into place, so a
// reader never observes a half-written file.
func (s *Store) Write(ctx context.Context, relPath, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.IOError{Op: "create content dir", Path: relPath, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return &domain.IOError{Op: "create temp file", Path: relPath, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &domain.IOError{Op: "write content", Path: relPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.IOError{Op: "close content", Path: relPath, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &domain.IOError{Op: "rename content", Path: relPath, Err: err}
	}
	return nil
}

// Delete removes the file. Deleting a path that does not exist is not an
// error.
func (s *Store) Delete(ctx context.Context, relPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.resolve(relPath)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.IOError{Op: "delete content", Path: relPath, Err: err}
	}
	return nil
}
