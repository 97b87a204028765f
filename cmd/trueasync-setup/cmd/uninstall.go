package cmd

import (
	"github.com/spf13/cobra"

	"github.com/trueasync/trueasync-setup/internal/service/uninstaller"
)

// uninstallCmd removes the installation and reverses shell-profile edits.
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the installed runtime and its PATH entries",
	Long: `Removes the installation directory and the PATH entries this tool added
to shell profiles. Uninstalling when nothing is installed succeeds with a
warning, so the command can be retried safely.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		return uninstaller.Run(ctx, &uninstaller.Options{Config: cfg})
	},
}
