package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trueasync/trueasync-setup/internal/repository/record"
	"github.com/trueasync/trueasync-setup/internal/version"
)

// versionCmd reports what is installed. An absent installation is an
// answer, not a failure, so the command always exits zero.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the installed runtime version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		installed, err := record.NewFileRepository(cfg.InstallDir).Load(cmd.Context())
		switch {
		case err == nil:
			fmt.Printf("trueasync %s (%s)\n", installed.Version, installed.InstallDir)
		case errors.Is(err, record.ErrNotFound):
			fmt.Printf("trueasync not installed (%s)\n", cfg.InstallDir)
		default:
			return err
		}

		fmt.Printf("trueasync-setup %s\n", version.Full())

		return nil
	},
}
