package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trueasync/trueasync-setup/internal/config"
	"github.com/trueasync/trueasync-setup/internal/logger"
	"github.com/trueasync/trueasync-setup/internal/service/installer"
)

var (
	// configPath to the optional settings YAML file.
	configPath string
	// installDir overrides the installation root.
	installDir string
	// versionSelector is "latest" or an explicit release tag.
	versionSelector string
	// phpVersion pins the embedded PHP version axis of the archive name.
	phpVersion string
	// repository is the GitHub "owner/name" publishing the releases.
	repository string
	// skipVerify disables checksum verification.
	skipVerify bool
	// debugBuild selects the debug build variant.
	debugBuild bool
	// noPath disables shell-profile edits and management-binary placement.
	noPath bool
	// logLevel sets the logging verbosity.
	logLevel string

	// rootCmd installs the runtime; management operations are subcommands.
	rootCmd = &cobra.Command{
		Use:   "trueasync-setup",
		Short: "Install the TrueAsync PHP runtime from published releases",
		Long: `Downloads a prebuilt TrueAsync PHP runtime archive for this machine,
verifies it against the release checksum manifest, and installs it atomically.

Running without a subcommand installs the requested version. Settings come
from an optional YAML file, a .env file, environment variables, and flags,
in increasing order of precedence.`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: setupLogging,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			return installer.Run(ctx, &installer.Options{
				Config:      cfg,
				Interactive: interactiveMode(),
			})
		},
	}
)

// Execute runs the trueasync-setup CLI and exits with non-zero status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "path to settings file")
	flags.StringVarP(&installDir, "install-dir", "d", "", "installation directory (default ~/.trueasync)")
	flags.StringVar(&versionSelector, "version", "", `release tag to install, or "latest"`)
	flags.StringVar(&phpVersion, "php-version", "", "embedded PHP version, e.g. 8.4")
	flags.StringVar(&repository, "repository", "", "GitHub owner/name hosting the releases")
	flags.BoolVar(&skipVerify, "skip-verify", false, "skip checksum verification")
	flags.BoolVar(&debugBuild, "debug-build", false, "install the debug build variant")
	flags.BoolVar(&noPath, "no-path", false, "do not edit shell profiles or place the management binary")
	flags.StringVar(&logLevel, "log-level", "info", "logging level: debug, info, warn, error")

	rootCmd.AddCommand(updateCmd, uninstallCmd, versionCmd)
}

// setupLogging applies --log-level before any command logic runs.
func setupLogging(_ *cobra.Command, _ []string) error {
	if level, ok := logger.ParseLogLevel(logLevel); ok {
		logger.SetLevel(level)
	}

	return nil
}

// signalContext cancels on SIGTERM or SIGINT for graceful shutdown.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// loadConfig builds the effective configuration: the settings file and
// environment first, then only the flags the user actually set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flag("install-dir").Changed {
		cfg.InstallDir = installDir
	}

	if cmd.Flag("version").Changed {
		cfg.Version = versionSelector
	}

	if cmd.Flag("php-version").Changed {
		cfg.PHPVersion = phpVersion
	}

	if cmd.Flag("repository").Changed {
		cfg.Repository = repository
	}

	if cmd.Flag("skip-verify").Changed {
		cfg.SkipVerify = skipVerify
	}

	if cmd.Flag("debug-build").Changed {
		cfg.DebugBuild = debugBuild
	}

	if cmd.Flag("no-path").Changed {
		cfg.NoPath = noPath
	}

	if err = config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// interactiveMode reports whether prompts can be answered. Resolved once
// here so piped and scripted runs never block on a question.
func interactiveMode() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
