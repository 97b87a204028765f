package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"
)

// Platform captures the OS-family-specific behavior of the install pipeline:
// asset naming key, archive format, extraction and directory replacement.
// The rest of the pipeline is OS-agnostic.
type Platform interface {
	// Key is the normalized platform token used in asset names, e.g. "linux-x86_64".
	Key() string
	// ArchiveExt is the archive extension without leading dot: "tar.gz" or "zip".
	ArchiveExt() string
	// ExecutableExt is ".exe" on Windows and "" elsewhere.
	ExecutableExt() string
	// Extract unpacks the archive into destDir, stripping the single
	// top-level directory component so contents land directly in destDir.
	Extract(ctx context.Context, archivePath, destDir string) error
	// ReplaceDirectory removes targetDir (tolerating transient locks)
	// and moves stagedDir into its place.
	ReplaceDirectory(ctx context.Context, stagedDir, targetDir string) error
}

// ErrUnsupported is returned when the host OS/architecture pair is not
// in the supported set. The check runs before any network call.
var ErrUnsupported = errors.New("unsupported platform")

// keys maps "goos/goarch" to the platform token used in asset names.
//
//nolint:gochecknoglobals // Static support matrix.
var keys = map[string]string{
	"linux/amd64":   "linux-x86_64",
	"linux/arm64":   "linux-aarch64",
	"darwin/amd64":  "macos-x86_64",
	"darwin/arm64":  "macos-aarch64",
	"windows/amd64": "windows-x64",
}

// Detect resolves the capability set for the current host.
func Detect() (Platform, error) {
	return ForHost(runtime.GOOS, runtime.GOARCH)
}

// ForHost resolves the capability set for an explicit OS/architecture pair.
func ForHost(goos, goarch string) (Platform, error) {
	key, ok := keys[goos+"/"+goarch]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnsupported, goos, goarch)
	}

	if goos == "windows" {
		return &windowsPlatform{key: key}, nil
	}

	return &unixPlatform{key: key}, nil
}

// unixPlatform implements Platform for Linux and macOS hosts.
type unixPlatform struct {
	key string
}

func (p *unixPlatform) Key() string { return p.key }

func (p *unixPlatform) ArchiveExt() string { return "tar.gz" }

func (p *unixPlatform) ExecutableExt() string { return "" }

func (p *unixPlatform) Extract(ctx context.Context, archivePath, destDir string) error {
	return extractTarGz(ctx, archivePath, destDir)
}

func (p *unixPlatform) ReplaceDirectory(ctx context.Context, stagedDir, targetDir string) error {
	return replaceDirectory(ctx, stagedDir, targetDir)
}

// windowsPlatform implements Platform for Windows hosts, where archives
// are zip files and open files hold mandatory locks.
type windowsPlatform struct {
	key string
}

func (p *windowsPlatform) Key() string { return p.key }

func (p *windowsPlatform) ArchiveExt() string { return "zip" }

func (p *windowsPlatform) ExecutableExt() string { return ".exe" }

func (p *windowsPlatform) Extract(ctx context.Context, archivePath, destDir string) error {
	return extractZip(ctx, archivePath, destDir)
}

func (p *windowsPlatform) ReplaceDirectory(ctx context.Context, stagedDir, targetDir string) error {
	return replaceDirectory(ctx, stagedDir, targetDir)
}
