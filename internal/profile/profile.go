package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/trueasync/trueasync-setup/internal/logger"
)

// Marker lines delimiting the block this tool owns inside a profile file.
// Removal is textual: everything between the markers goes, nothing else.
const (
	blockStart = "# >>> trueasync-setup >>>"
	blockEnd   = "# <<< trueasync-setup <<<"
)

const filePermissions = 0o644

// profileNames is the static set of shell-profile files that are scanned.
// It is a fixed constant, not discovered.
//
//nolint:gochecknoglobals // Static configuration list.
var profileNames = []string{".bashrc", ".bash_profile", ".zshrc", ".profile"}

// Manager edits a fixed list of shell profile files to expose or hide the
// installation's bin directory on PATH.
type Manager struct {
	files []string
}

// NewManager builds a manager over an explicit profile file list, or over
// DefaultProfileFiles when none are given.
func NewManager(files ...string) *Manager {
	if len(files) == 0 {
		files = DefaultProfileFiles()
	}

	return &Manager{files: files}
}

// DefaultProfileFiles returns the candidate profile paths for this host.
// Windows has no shell profiles to edit, so the list is empty there.
func DefaultProfileFiles() []string {
	if runtime.GOOS == "windows" {
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	files := make([]string, 0, len(profileNames))
	for _, name := range profileNames {
		files = append(files, filepath.Join(home, name))
	}

	return files
}

// AppendPathEntry adds the PATH block for dir to every existing profile
// file, replacing any previous block. Files that do not exist are silently
// skipped.
func (m *Manager) AppendPathEntry(ctx context.Context, dir string) error {
	touched := false

	for _, file := range m.files {
		ok, err := AppendPathEntry(file, dir)
		if err != nil {
			return err
		}

		if ok {
			logger.DebugKV(ctx, "Added PATH entry", "profile", file, "directory", dir)

			touched = true
		}
	}

	if !touched {
		logger.Debug(ctx, "No shell profile files found, PATH left untouched")
	}

	return nil
}

// RemovePathEntries strips the owned block from every existing profile file.
func (m *Manager) RemovePathEntries(ctx context.Context) error {
	for _, file := range m.files {
		ok, err := RemovePathEntries(file)
		if err != nil {
			return err
		}

		if ok {
			logger.DebugKV(ctx, "Removed PATH entries", "profile", file)
		}
	}

	return nil
}

// AppendPathEntry rewrites one profile file with the PATH block for dir.
// It reports false when the file does not exist.
func AppendPathEntry(profileFile, dir string) (bool, error) {
	existing, err := os.ReadFile(filepath.Clean(profileFile))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("read profile %s: %w", profileFile, err)
	}

	merged := mergeBlock(string(existing), buildBlock(dir))
	if err = os.WriteFile(filepath.Clean(profileFile), []byte(merged), filePermissions); err != nil {
		return false, fmt.Errorf("write profile %s: %w", profileFile, err)
	}

	return true, nil
}

// RemovePathEntries strips the owned block from one profile file.
// It reports false when the file does not exist or carried no block.
func RemovePathEntries(profileFile string) (bool, error) {
	existing, err := os.ReadFile(filepath.Clean(profileFile))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("read profile %s: %w", profileFile, err)
	}

	if !strings.Contains(string(existing), blockStart) {
		return false, nil
	}

	cleaned := removeBlock(string(existing))
	if err = os.WriteFile(filepath.Clean(profileFile), []byte(cleaned), filePermissions); err != nil {
		return false, fmt.Errorf("write profile %s: %w", profileFile, err)
	}

	return true, nil
}

// buildBlock renders the owned block exporting the installation bin directory.
func buildBlock(dir string) string {
	return strings.Join([]string{
		blockStart,
		fmt.Sprintf("export PATH=%q:$PATH", filepath.Join(dir, "bin")),
		blockEnd,
	}, "\n")
}

// mergeBlock replaces any previous owned block and appends the new one.
func mergeBlock(existing, block string) string {
	cleaned := strings.TrimRight(removeBlock(existing), "\n")
	if strings.TrimSpace(cleaned) == "" {
		return block + "\n"
	}

	return cleaned + "\n\n" + block + "\n"
}

// removeBlock drops every line between (and including) the marker lines.
func removeBlock(content string) string {
	var builder strings.Builder

	skipping := false

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == blockStart {
			skipping = true
			continue
		}

		if trimmed == blockEnd {
			skipping = false
			continue
		}

		if skipping {
			continue
		}

		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	return strings.TrimRight(builder.String(), "\n") + "\n"
}
