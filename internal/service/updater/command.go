package updater

import (
	"context"
	"errors"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/trueasync/trueasync-setup/internal/config"
	"github.com/trueasync/trueasync-setup/internal/github"
	"github.com/trueasync/trueasync-setup/internal/logger"
	"github.com/trueasync/trueasync-setup/internal/platform"
	"github.com/trueasync/trueasync-setup/internal/release"
	"github.com/trueasync/trueasync-setup/internal/repository/record"
	"github.com/trueasync/trueasync-setup/internal/service/installer"
)

// detectPlatform is a variable so tests can exercise the host gate.
var detectPlatform = platform.Detect

// Options are inputs accepted by the updater entry point.
type Options struct {
	// Config carries the validated update inputs.
	Config *config.Config
	// Client overrides the releases API client; built from Config.Repository when nil.
	Client github.Client
	// ProfileFiles overrides the static shell-profile list; defaults apply when empty.
	ProfileFiles []string
	// Interactive enables confirmation prompts.
	Interactive bool
}

// Run checks the installed version against the resolved selector and
// reinstalls when they differ. Equality is exact tag comparison, so an
// explicit older tag reinstalls that tag; only a warning flags the downgrade.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "update")

	cfg := opts.Config
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if _, err := detectPlatform(); err != nil {
		return err
	}

	client := opts.Client
	if client == nil {
		var err error
		if client, err = github.NewClient(cfg.Repository); err != nil {
			return err
		}
	}

	records := record.NewFileRepository(cfg.InstallDir)

	current, err := records.Load(ctx)

	fresh := errors.Is(err, record.ErrNotFound)
	if err != nil && !fresh {
		return err
	}

	logger.InfoKV(ctx, "Checking for updates",
		"selector", cfg.Version, "repository", cfg.Repository)

	tag, err := release.NewResolver(client).Resolve(ctx, cfg.Version)
	if err != nil {
		return err
	}

	if !fresh && current.Version == tag {
		logger.InfoKV(ctx, "Already up to date", "version", tag)
		return nil
	}

	if fresh {
		logger.Info(ctx, "No installation found, performing a fresh install")
	} else {
		warnOnApparentDowngrade(ctx, current.Version, tag)
		logger.InfoKV(ctx, "Updating installation", "from", current.Version, "to", tag)
	}

	installCfg := *cfg
	installCfg.Version = tag

	return installer.Run(ctx, &installer.Options{
		Config:       &installCfg,
		Client:       client,
		ProfileFiles: opts.ProfileFiles,
		Interactive:  opts.Interactive,
	})
}

// warnOnApparentDowngrade flags a semantically older target. Tags that do
// not parse as semver stay silent; the comparison never changes behavior.
func warnOnApparentDowngrade(ctx context.Context, currentTag, resolvedTag string) {
	current, err := semver.NewVersion(strings.TrimPrefix(currentTag, "v"))
	if err != nil {
		return
	}

	resolved, err := semver.NewVersion(strings.TrimPrefix(resolvedTag, "v"))
	if err != nil {
		return
	}

	if resolved.LessThan(current) {
		logger.WarnKV(ctx, "Resolved version is older than the installed one",
			"installed", currentTag, "resolved", resolvedTag)
	}
}
