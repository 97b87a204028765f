package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trueasync/trueasync-setup/internal/logger"
	"github.com/trueasync/trueasync-setup/internal/service/packager"
	"github.com/trueasync/trueasync-setup/internal/version"
)

var (
	// outputPath overrides the manifest location.
	outputPath string
	// logLevel sets the logging verbosity.
	logLevel string

	// rootCmd generates the checksum manifest for a directory of release archives.
	rootCmd = &cobra.Command{
		Use:   "trueasync-checksums [artifacts-dir]",
		Short: "Generate the sha256sums.txt manifest for release archives",
		Long: `Hashes every archive in the artifacts directory and writes a sha256sums.txt
manifest in the format trueasync-setup verifies downloads against.
The manifest is uploaded as a release asset next to the archives.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			return packager.Run(ctx, &packager.Options{
				ArtifactsDir: args[0],
				OutputPath:   outputPath,
			})
		},
	}
)

// Execute runs the trueasync-checksums CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "manifest path (default sha256sums.txt in the artifacts directory)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "logging level: debug, info, warn, error")
}
