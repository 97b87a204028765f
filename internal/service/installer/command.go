package installer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/trueasync/trueasync-setup/internal/checksum"
	"github.com/trueasync/trueasync-setup/internal/config"
	"github.com/trueasync/trueasync-setup/internal/download"
	"github.com/trueasync/trueasync-setup/internal/github"
	"github.com/trueasync/trueasync-setup/internal/logger"
	"github.com/trueasync/trueasync-setup/internal/platform"
	"github.com/trueasync/trueasync-setup/internal/profile"
	"github.com/trueasync/trueasync-setup/internal/release"
	"github.com/trueasync/trueasync-setup/internal/repository/record"
)

// ErrCancelled is returned when the user declines to replace an existing
// installation at the interactive prompt.
var ErrCancelled = errors.New("installation cancelled")

// detectPlatform is the host capability probe; a variable so tests can
// exercise the gate with unsupported hosts.
//
var detectPlatform = platform.Detect

// Options are inputs accepted by the installer entry point.
type Options struct {
	// Config carries the validated installation inputs.
	Config *config.Config
	// Client overrides the releases API client; built from Config.Repository when nil.
	Client github.Client
	// ProfileFiles overrides the static shell-profile list; defaults apply when empty.
	ProfileFiles []string
	// Interactive enables confirmation prompts. Resolved once at startup
	// from TTY detection by the command layer; when false, prompts fall
	// back to their defaults.
	Interactive bool
	// promptInput feeds the confirmation prompt; os.Stdin when nil.
	promptInput io.Reader
}

// Run executes the install pipeline and is the public entry point for the CLI.
// The pipeline is Absent -> Staged -> Installed: everything up to directory
// replacement is reversible and leaves the target untouched on failure.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "install")

	r, err := newRunner(opts)
	if err != nil {
		return err
	}

	if err = r.run(ctx); err != nil {
		logger.ErrorKV(ctx, "Installation failed", "error", err)
		return err
	}

	return nil
}

// runner holds the collaborators for a single install execution.
type runner struct {
	cfg         *config.Config
	client      github.Client
	plat        platform.Platform
	resolver    *release.Resolver
	locator     *release.Locator
	records     record.Repository
	downloader  *download.Downloader
	profiles    *profile.Manager
	interactive bool
	in          io.Reader
	// selfAside is where the running executable was renamed to when it
	// lived inside the target directory; empty otherwise.
	selfAside string
}

// newRunner validates inputs and rejects unsupported hosts before any
// network access happens.
func newRunner(opts *Options) (*runner, error) {
	cfg := opts.Config
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	plat, err := detectPlatform()
	if err != nil {
		return nil, err
	}

	client := opts.Client
	if client == nil {
		if client, err = github.NewClient(cfg.Repository); err != nil {
			return nil, err
		}
	}

	in := opts.promptInput
	if in == nil {
		in = os.Stdin
	}

	return &runner{
		cfg:         cfg,
		client:      client,
		plat:        plat,
		resolver:    release.NewResolver(client),
		locator:     release.NewLocator(plat, cfg.DebugBuild, cfg.PHPVersion),
		records:     record.NewFileRepository(cfg.InstallDir),
		downloader:  download.NewDownloader(cfg.Timeout),
		profiles:    profile.NewManager(opts.ProfileFiles...),
		interactive: opts.Interactive,
		in:          in,
	}, nil
}

// run walks the pipeline. Progress is logged before each slow step so a
// hang is attributable to a specific one.
func (r *runner) run(ctx context.Context) error {
	logger.InfoKV(ctx, "Resolving release version",
		"selector", r.cfg.Version, "repository", r.cfg.Repository)

	tag, err := r.resolver.Resolve(ctx, r.cfg.Version)
	if err != nil {
		return err
	}

	asset, err := r.locateAsset(ctx, tag)
	if err != nil {
		return err
	}

	scratchDir, cleanupScratch, err := download.NewScratchDir()
	if err != nil {
		return err
	}

	defer cleanupScratch()

	archivePath := filepath.Join(scratchDir, asset.name)

	logger.InfoKV(ctx, "Downloading release archive", "asset", asset.name)

	if err = r.downloader.ToFile(ctx, asset.url, archivePath); err != nil {
		return err
	}

	if err = r.verifyArchive(ctx, asset, archivePath); err != nil {
		return err
	}

	stagedDir, err := r.stage(ctx, archivePath)
	if err != nil {
		return err
	}

	defer func() {
		// Gone already when the commit succeeded.
		_ = os.RemoveAll(stagedDir)
	}()

	if err = r.confirmReplace(ctx); err != nil {
		return err
	}

	if err = r.moveSelfAside(ctx); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Installing runtime", "directory", r.cfg.InstallDir)

	if err = r.plat.ReplaceDirectory(ctx, stagedDir, r.cfg.InstallDir); err != nil {
		return err
	}

	// The record is written immediately after content replacement, with no
	// fallible step in between, to keep the ambiguous window minimal.
	if err = r.records.Save(ctx, tag); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Installed", "version", tag, "directory", r.cfg.InstallDir)

	if r.cfg.NoPath {
		return nil
	}

	if err = r.placeManagementBinary(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Updating shell profiles")

	return r.profiles.AppendPathEntry(ctx, r.cfg.InstallDir)
}

// assetRef names one downloadable archive and where its manifest lives.
type assetRef struct {
	name        string
	url         string
	manifestURL string
}

// locateAsset picks the archive either by the deterministic template
// (PHP axis pinned) or by pattern-matching the remote asset list.
func (r *runner) locateAsset(ctx context.Context, tag string) (assetRef, error) {
	if name, ok := r.locator.AssetName(tag); ok {
		return assetRef{
			name:        name,
			url:         release.DownloadURL(r.cfg.Repository, tag, name),
			manifestURL: release.DownloadURL(r.cfg.Repository, tag, release.ChecksumManifestName),
		}, nil
	}

	logger.InfoKV(ctx, "Looking up release assets", "tag", tag)

	rel, err := r.client.ReleaseByTag(ctx, tag)
	if err != nil {
		return assetRef{}, err
	}

	selected, err := r.locator.Select(rel.Assets)
	if err != nil {
		return assetRef{}, err
	}

	result := assetRef{
		name: selected.Name,
		url:  selected.BrowserDownloadURL,
	}

	for _, candidate := range rel.Assets {
		if candidate.Name == release.ChecksumManifestName {
			result.manifestURL = candidate.BrowserDownloadURL
			break
		}
	}

	return result, nil
}

// verifyArchive enforces the integrity gate. A missing manifest or missing
// entry is a warning by design; only a digest mismatch is fatal.
func (r *runner) verifyArchive(ctx context.Context, asset assetRef, archivePath string) error {
	if r.cfg.SkipVerify {
		logger.Warn(ctx, "Checksum verification skipped by configuration")
		return nil
	}

	if asset.manifestURL == "" {
		logger.WarnKV(ctx, "Release publishes no checksum manifest, proceeding unverified",
			"manifest", release.ChecksumManifestName)

		return nil
	}

	logger.Info(ctx, "Downloading checksum manifest")

	content, err := r.downloader.ToString(ctx, asset.manifestURL)
	if errors.Is(err, download.ErrNotFound) {
		// Same remote state as the manifest asset being absent from the
		// release listing; transport failures stay fatal.
		logger.WarnKV(ctx, "Release publishes no checksum manifest, proceeding unverified",
			"manifest", release.ChecksumManifestName)

		return nil
	}

	if err != nil {
		return err
	}

	expected, ok := checksum.ParseManifest(content)[asset.name]
	if !ok {
		logger.WarnKV(ctx, "Manifest has no entry for asset, proceeding unverified",
			"asset", asset.name)

		return nil
	}

	logger.Info(ctx, "Verifying archive checksum")

	return checksum.VerifyFile(archivePath, expected)
}

// stage extracts the archive into a parallel path next to the target so
// the final commit is a same-volume rename.
func (r *runner) stage(ctx context.Context, archivePath string) (string, error) {
	parent := filepath.Dir(r.cfg.InstallDir)
	if err := os.MkdirAll(parent, config.DefaultDirPermissions); err != nil {
		return "", fmt.Errorf("create parent directory: %w", err)
	}

	stagedDir, err := os.MkdirTemp(parent, ".trueasync-staged-")
	if err != nil {
		return "", fmt.Errorf("create staging directory: %w", err)
	}

	logger.Info(ctx, "Extracting archive")

	if err = r.plat.Extract(ctx, archivePath, stagedDir); err != nil {
		_ = os.RemoveAll(stagedDir)

		return "", err
	}

	return stagedDir, nil
}

// confirmReplace asks before overwriting an existing installation. The
// default answer is yes, and non-interactive runs never prompt.
func (r *runner) confirmReplace(ctx context.Context) error {
	current, err := r.records.Load(ctx)
	if errors.Is(err, record.ErrNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	if !r.interactive {
		logger.InfoKV(ctx, "Replacing existing installation", "current", current.Version)
		return nil
	}

	fmt.Printf("Replace existing installation %s at %s? [Y/n] ",
		current.Version, r.cfg.InstallDir)

	line, _ := bufio.NewReader(r.in).ReadString('\n')

	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "n" || answer == "no" {
		return ErrCancelled
	}

	return nil
}
