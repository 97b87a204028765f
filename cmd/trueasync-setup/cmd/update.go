package cmd

import (
	"github.com/spf13/cobra"

	"github.com/trueasync/trueasync-setup/internal/service/updater"
)

// updateCmd reinstalls only when the installed tag differs from the
// resolved selector. "rebuild" is kept as an alias because forcing an
// explicit tag over the same installed tag goes through update too.
var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"rebuild"},
	Short:   "Update the installed runtime to the requested version",
	Long: `Compares the installed version against the requested one and reinstalls
when they differ. With no installation present this performs a fresh install.

Versions are compared by exact tag: requesting an explicit older tag
installs that tag and logs a downgrade warning.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		return updater.Run(ctx, &updater.Options{
			Config:      cfg,
			Interactive: interactiveMode(),
		})
	},
}
