package platform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/trueasync/trueasync-setup/internal/logger"
)

const (
	// removalAttempts bounds the delete retries on a locked target directory.
	removalAttempts = 5
	// removalDelay separates consecutive delete attempts.
	removalDelay = 500 * time.Millisecond
)

// ErrLocked is returned when the target directory still cannot be removed
// after terminating resident processes and exhausting the retry budget.
var ErrLocked = errors.New("installation directory is locked")

// replaceDirectory swaps targetDir for stagedDir. The previous tree is
// deleted first because the target path is fixed; deletion tolerates
// transient locks from still-running binaries of the previous installation.
func replaceDirectory(ctx context.Context, stagedDir, targetDir string) error {
	if err := RemoveDirWithRetry(ctx, targetDir); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(targetDir), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	if err := os.Rename(stagedDir, targetDir); err != nil {
		return fmt.Errorf("move staged tree into place: %w", err)
	}

	return nil
}

// RemoveDirWithRetry deletes dir, retrying up to removalAttempts times.
// Before each retry it terminates processes whose executable appears to
// live under dir, since a running binary is the usual cause of a lock.
// A missing directory is not an error.
func RemoveDirWithRetry(ctx context.Context, dir string) error {
	var lastErr error

	for attempt := 1; attempt <= removalAttempts; attempt++ {
		lastErr = os.RemoveAll(dir)
		if lastErr == nil {
			return nil
		}

		logger.WarnKV(ctx, "Installation directory is busy, retrying removal",
			"directory", dir, "attempt", attempt, "error", lastErr)

		if err := TerminateProcessesUnder(ctx, dir); err != nil {
			logger.WarnKV(ctx, "Unable to terminate resident processes", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(removalDelay):
		}
	}

	return fmt.Errorf("%w: %s: %s", ErrLocked, dir, lastErr)
}

// TerminateProcessesUnder kills processes whose executable name matches a
// regular file inside dir. Process listings only expose base names, so the
// match is by name against the set of files shipped in the installation.
func TerminateProcessesUnder(ctx context.Context, dir string) error {
	residents, err := executableNamesIn(dir)
	if err != nil {
		return err
	}

	if len(residents) == 0 {
		return nil
	}

	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if _, found := residents[process.Executable()]; !found {
			continue
		}

		runningProcess, findErr := os.FindProcess(process.Pid())
		if findErr != nil {
			return findErr
		}

		logger.InfoKV(ctx, "Terminating resident process",
			"pid", process.Pid(), "executable", process.Executable())

		if killErr := runningProcess.Kill(); killErr != nil {
			return killErr
		}
	}

	return nil
}

// executableNamesIn collects base names of regular files in dir for
// matching against the process list.
func executableNamesIn(dir string) (map[string]struct{}, error) {
	names := make(map[string]struct{})

	err := filepath.WalkDir(dir, func(_ string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Partially unreadable trees still yield the names we could see.
			return nil //nolint:nilerr // Best-effort collection.
		}

		if entry.Type().IsRegular() {
			names[entry.Name()] = struct{}{}
		}

		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return names, nil
}
