package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand adds a `version` subcommand printing the tool's
// build metadata. Used by binaries that have no richer version report of
// their own.
func AttachCobraVersionCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), Full())
		},
	})
}
