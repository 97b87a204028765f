package installer

import (
	"bytes"
	"context"
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/trueasync/trueasync-setup/internal/checksum"
	"github.com/trueasync/trueasync-setup/internal/logger"
)

// ManagementBinaryName is the base name the management tool is installed
// under so an installed runtime can update itself later.
const ManagementBinaryName = "trueasync-setup"

// managementBinaryMode makes the placed copy executable for everyone.
const managementBinaryMode = 0o755

// placeManagementBinary copies the currently running executable into the
// installation's bin directory using go-update, which handles replacing a
// binary that is currently in use.
func (r *runner) placeManagementBinary(ctx context.Context) error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate running executable: %w", err)
	}

	data, err := os.ReadFile(self)
	if err != nil && r.selfAside != "" {
		// The reported path can go stale after the executable was renamed
		// aside; the renamed copy holds the same bytes.
		self = r.selfAside
		data, err = os.ReadFile(self)
	}

	if err != nil {
		return fmt.Errorf("read running executable: %w", err)
	}

	targetPath := filepath.Join(r.cfg.InstallDir, "bin",
		ManagementBinaryName+r.plat.ExecutableExt())

	if samePath(self, targetPath) {
		logger.Debug(ctx, "Already running from the installation directory")
		return nil
	}

	logger.InfoKV(ctx, "Placing management binary", "path", targetPath)

	if err = os.MkdirAll(filepath.Dir(targetPath), managementBinaryMode); err != nil {
		return fmt.Errorf("create bin directory: %w", err)
	}

	if _, err = os.Stat(targetPath); errors.Is(err, os.ErrNotExist) {
		var f *os.File
		if f, err = os.Create(targetPath); err != nil {
			return fmt.Errorf("create management binary: %w", err)
		}

		_ = f.Close()
	}

	digest, err := checksum.FileDigest(self)
	if err != nil {
		return fmt.Errorf("digest running executable: %w", err)
	}

	rawDigest, err := hex.DecodeString(digest)
	if err != nil {
		return fmt.Errorf("decode executable digest: %w", err)
	}

	options := goupdate.Options{
		TargetPath: targetPath,
		TargetMode: managementBinaryMode,
		Checksum:   rawDigest,
		Hash:       crypto.SHA256,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return fmt.Errorf("place management binary: %w", err)
	}

	oldPath := targetPath + ".old"
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}

// moveSelfAside renames the running executable out of the installation
// directory before the swap. Updating from the installed copy would
// otherwise lock the directory on Windows, where a running executable
// cannot be deleted but can be renamed. The rename stays on the target's
// volume; the leftover file is removed on the next successful placement.
func (r *runner) moveSelfAside(ctx context.Context) error {
	if runtime.GOOS != "windows" {
		return nil
	}

	self, err := os.Executable()
	if err != nil || !insideDir(r.cfg.InstallDir, self) {
		return nil
	}

	aside := filepath.Join(filepath.Dir(r.cfg.InstallDir),
		"."+ManagementBinaryName+"-prev"+r.plat.ExecutableExt())
	_ = os.Remove(aside)

	if err = os.Rename(self, aside); err != nil {
		return fmt.Errorf("move running executable aside: %w", err)
	}

	r.selfAside = aside

	logger.DebugKV(ctx, "Moved running executable aside", "path", aside)

	return nil
}

// insideDir reports whether path lives under dir.
func insideDir(dir, path string) bool {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)

	return errA == nil && errB == nil && absA == absB
}
