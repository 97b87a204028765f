package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Filename is the hidden marker holding the installed tag as its entire
// contents. It lives at the root of the installation directory, so removing
// the installation removes the record with it.
const Filename = ".trueasync-version"

// filePermissions for the marker; the tag is not a secret.
const filePermissions = 0o644

// ErrNotFound is returned when no installation record exists.
var ErrNotFound = errors.New("installation record not found")

// Record describes what is currently installed at a target directory.
type Record struct {
	// Version is the installed release tag, e.g. "v0.6.0".
	Version string
	// InstallDir is the absolute root of the installed tree.
	InstallDir string
}

// Repository defines persistence operations for the installation record.
type Repository interface {
	Load(ctx context.Context) (*Record, error)
	Save(ctx context.Context, version string) error
	Remove(ctx context.Context) error
}

// FileRepository persists the record as a plain-text marker file.
type FileRepository struct {
	installDir string
}

// NewFileRepository creates a repository rooted at the installation directory.
func NewFileRepository(installDir string) *FileRepository {
	return &FileRepository{
		installDir: filepath.Clean(installDir),
	}
}

// Path returns the marker file location.
func (r *FileRepository) Path() string {
	return filepath.Join(r.installDir, Filename)
}

// Load reads the record. Whitespace around the tag is trimmed; an absent or
// empty marker yields ErrNotFound, never a hard error.
func (r *FileRepository) Load(_ context.Context) (*Record, error) {
	contents, err := os.ReadFile(r.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read installation record: %w", err)
	}

	version := strings.TrimSpace(string(contents))
	if version == "" {
		return nil, ErrNotFound
	}

	return &Record{
		Version:    version,
		InstallDir: r.installDir,
	}, nil
}

// Save writes the record. Called only after extraction and replacement
// succeed, so the marker always matches the tree next to it.
func (r *FileRepository) Save(_ context.Context, version string) error {
	data := []byte(strings.TrimSpace(version) + "\n")
	if err := os.WriteFile(r.Path(), data, filePermissions); err != nil {
		return fmt.Errorf("write installation record: %w", err)
	}

	return nil
}

// Remove deletes the marker. A missing marker is not an error.
func (r *FileRepository) Remove(_ context.Context) error {
	if err := os.Remove(r.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove installation record: %w", err)
	}

	return nil
}
