package uninstaller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/trueasync/trueasync-setup/internal/config"
	"github.com/trueasync/trueasync-setup/internal/logger"
	"github.com/trueasync/trueasync-setup/internal/platform"
	"github.com/trueasync/trueasync-setup/internal/profile"
	"github.com/trueasync/trueasync-setup/internal/repository/record"
)

// Options are inputs accepted by the uninstaller entry point.
type Options struct {
	// Config carries the validated uninstall inputs.
	Config *config.Config
	// ProfileFiles overrides the static shell-profile list; defaults apply when empty.
	ProfileFiles []string
}

// Run removes the installation directory and reverses the shell-profile
// edits. Uninstalling an absent installation is a warning, not an error,
// so the operation is idempotent.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "uninstall")

	cfg := opts.Config
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Profile edits are reversed even when the directory is already gone,
	// so a half-finished uninstall can be rerun to completion.
	if err := profile.NewManager(opts.ProfileFiles...).RemovePathEntries(ctx); err != nil {
		return err
	}

	if _, err := os.Stat(cfg.InstallDir); errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Installation directory does not exist, nothing to remove",
			"directory", cfg.InstallDir)

		return nil
	}

	if installed, err := record.NewFileRepository(cfg.InstallDir).Load(ctx); err == nil {
		logger.InfoKV(ctx, "Uninstalling",
			"version", installed.Version, "directory", cfg.InstallDir)
	} else {
		logger.InfoKV(ctx, "Uninstalling", "directory", cfg.InstallDir)
	}

	if runtime.GOOS == "windows" && selfInside(cfg.InstallDir) {
		return scheduleDeferredRemoval(ctx, cfg.InstallDir)
	}

	if err := platform.RemoveDirWithRetry(ctx, cfg.InstallDir); err != nil {
		return err
	}

	logger.Info(ctx, "Uninstalled")

	return nil
}

// selfInside reports whether the running executable lives under dir.
func selfInside(dir string) bool {
	executable, err := os.Executable()
	if err != nil {
		return false
	}

	if resolved, resolveErr := filepath.EvalSymlinks(executable); resolveErr == nil {
		executable = resolved
	}

	rel, err := filepath.Rel(dir, executable)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// scheduleDeferredRemoval hands the deletion to a detached shell that waits
// for this process to exit first. Windows refuses to delete a running
// executable, so the directory containing it cannot go away synchronously.
func scheduleDeferredRemoval(ctx context.Context, dir string) error {
	logger.InfoKV(ctx, "Scheduling removal after exit", "directory", dir)

	script := fmt.Sprintf(`ping -n 3 127.0.0.1 > NUL & rmdir /S /Q "%s"`, dir)

	if err := exec.Command("cmd.exe", "/C", script).Start(); err != nil {
		return fmt.Errorf("schedule deferred removal: %w", err)
	}

	return nil
}
